package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cinedex/apiserver/config"
)

type recordingBackend struct {
	channels []string
	data     [][]byte
}

func (b *recordingBackend) Publish(_ context.Context, channel string, data []byte, _ map[string]string) (string, error) {
	b.channels = append(b.channels, channel)
	b.data = append(b.data, data)
	return "id-1", nil
}

func (b *recordingBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	b.channels = append(b.channels, channel)
	for i, d := range b.data {
		if err := handler(ctx, Message{ID: string(rune('a' + i)), Data: d}); err != nil {
			return err
		}
	}
	return nil
}

func (b *recordingBackend) Close() error { return nil }

func TestMQBindsChannel(t *testing.T) {
	backend := &recordingBackend{}
	bus := New(backend, "media-activity")

	id, err := bus.Publish(context.Background(), []byte(`{}`), nil)
	if err != nil || id != "id-1" {
		t.Fatalf("Publish = %q, %v", id, err)
	}

	var got int
	err = bus.Subscribe(context.Background(), func(_ context.Context, msg Message) error {
		got++
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if got != 1 {
		t.Errorf("handled %d messages, want 1", got)
	}
	for _, ch := range backend.channels {
		if ch != "media-activity" {
			t.Errorf("channel = %q, want media-activity", ch)
		}
	}
}

func TestOpen(t *testing.T) {
	bus, err := Open(context.Background(), config.MQConfig{Backend: config.BackendNone})
	if err != nil || bus != nil {
		t.Errorf("Open(none) = %v, %v; want nil, nil", bus, err)
	}
	if _, err := Open(context.Background(), config.MQConfig{Backend: "kafka"}); err == nil {
		t.Error("Open(kafka) succeeded, want error")
	}
	if _, err := Open(context.Background(), config.MQConfig{Backend: config.BackendRabbitMQ}); err == nil {
		t.Error("Open(rabbitmq) without url succeeded, want error")
	}
}

func TestHeadersToAttributes(t *testing.T) {
	attrs := headersToAttributes(amqp.Table{"type": "review.created", "raw": []byte("x"), "n": int32(3)})
	want := map[string]string{"type": "review.created", "raw": "x", "n": "3"}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attrs[%q] = %q, want %q", k, attrs[k], v)
		}
	}
	if headersToAttributes(nil) != nil {
		t.Error("empty headers should map to nil")
	}
}

func TestNewMessage(t *testing.T) {
	attrs := map[string]string{"type": "favorite.added"}
	msg := newMessage([]byte(`{}`), attrs)
	if msg.OrderingKey != "favorite.added" {
		t.Errorf("OrderingKey = %q, want favorite.added", msg.OrderingKey)
	}
	if msg.Attributes["content-type"] != "application/json" || msg.Attributes["type"] != "favorite.added" {
		t.Errorf("Attributes = %v", msg.Attributes)
	}
	if _, ok := attrs["content-type"]; ok {
		t.Error("newMessage mutated the caller's attributes")
	}

	if msg := newMessage(nil, nil); msg.OrderingKey != "" || len(msg.Attributes) != 1 {
		t.Errorf("untyped message = %+v", msg)
	}
}
