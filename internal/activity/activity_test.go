package activity

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/cinedex/apiserver/internal/mq"
	"github.com/cinedex/apiserver/internal/storage"
	"github.com/cinedex/apiserver/types"
)

// loopback delivers published messages to the subscribed handler.
type loopback struct {
	mu       sync.Mutex
	messages []mq.Message
	fail     error
}

func (l *loopback) Publish(_ context.Context, _ string, data []byte, attrs map[string]string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail != nil {
		return "", l.fail
	}
	id := attrs["type"]
	l.messages = append(l.messages, mq.Message{ID: id, Data: data, Attributes: attrs})
	return id, nil
}

func (l *loopback) Subscribe(ctx context.Context, _ string, handler mq.Handler) error {
	l.mu.Lock()
	messages := append([]mq.Message(nil), l.messages...)
	l.mu.Unlock()
	for _, msg := range messages {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (l *loopback) Close() error { return nil }

type memStore struct {
	objects map[string][]byte
	err     error
	ensured bool
}

func (m *memStore) EnsureBucket(context.Context) error {
	m.ensured = true
	return nil
}

func (m *memStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memStore) Bucket() string { return "activity" }

func TestPublishThenArchive(t *testing.T) {
	bus := &loopback{}
	publisher := NewPublisher(mq.New(bus, "media-activity"))
	publisher.now = func() time.Time { return time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("X", -2*3600)) }

	publisher.Publish(context.Background(), types.ActivityEvent{
		Type:       types.ActivityFavoriteAdded,
		UserID:     7,
		ResourceID: 3,
		MediaType:  types.MediaTypeMovie,
		MediaID:    "27205",
	})
	if len(bus.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(bus.messages))
	}

	var sent types.ActivityEvent
	if err := json.Unmarshal(bus.messages[0].Data, &sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sent.ID == "" || sent.MediaID != "27205" || sent.UserID != 7 {
		t.Errorf("event = %+v", sent)
	}
	if bus.messages[0].Attributes["type"] != "favorite.added" {
		t.Errorf("attributes = %v", bus.messages[0].Attributes)
	}

	store := &memStore{objects: map[string][]byte{}}
	archiver := NewArchiver(storage.NewStorage(store))
	if err := archiver.Run(context.Background(), mq.New(bus, "media-activity")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !store.ensured {
		t.Error("bucket not ensured")
	}

	key := "activity/2024/03/10/favorite.added/" + sent.ID + ".json"
	if _, ok := store.objects[key]; !ok {
		t.Errorf("objects = %v, want key %s", keys(store.objects), key)
	}
}

func TestPublishKeepsGivenIdentity(t *testing.T) {
	bus := &loopback{}
	publisher := NewPublisher(mq.New(bus, "c"))
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	publisher.Publish(context.Background(), types.ActivityEvent{ID: "fixed", Type: types.ActivityUserCreated, OccurredAt: at})

	var sent types.ActivityEvent
	if err := json.Unmarshal(bus.messages[0].Data, &sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sent.ID != "fixed" || !sent.OccurredAt.Equal(at) {
		t.Errorf("event = %+v", sent)
	}
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	bus := &loopback{fail: errors.New("broker down")}
	publisher := NewPublisher(mq.New(bus, "c"))

	publisher.Publish(context.Background(), types.ActivityEvent{Type: types.ActivityReviewDeleted})
	if len(bus.messages) != 0 {
		t.Errorf("messages = %d, want 0", len(bus.messages))
	}
}

func TestHandle(t *testing.T) {
	valid := `{"id":"e1","type":"review.created","userId":1,"occurredAt":"2024-05-01T10:00:00Z"}`

	tests := []struct {
		name     string
		data     string
		storeErr error
		wantErr  bool
		wantKey  string
	}{
		{name: "stored", data: valid, wantKey: "activity/2024/05/01/review.created/e1.json"},
		{name: "malformed json dropped", data: `{nope`},
		{name: "missing id dropped", data: `{"type":"review.created","occurredAt":"2024-05-01T10:00:00Z"}`},
		{name: "storage failure nacked", data: valid, storeErr: errors.New("disk full"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{objects: map[string][]byte{}, err: tt.storeErr}
			archiver := NewArchiver(storage.NewStorage(store))

			err := archiver.Handle(context.Background(), mq.Message{ID: "m", Data: []byte(tt.data)})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Handle error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantKey == "" {
				if len(store.objects) != 0 {
					t.Errorf("objects = %v, want none", keys(store.objects))
				}
				return
			}
			if string(store.objects[tt.wantKey]) != tt.data {
				t.Errorf("object %s = %q", tt.wantKey, store.objects[tt.wantKey])
			}
		})
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
