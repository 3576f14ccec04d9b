// Package testutil holds in-memory stand-ins for repositories, the password
// hasher, the activity publisher and the media gateway.
package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/cinedex/apiserver/internal/password"
	"github.com/cinedex/apiserver/internal/store"
	"github.com/cinedex/apiserver/types"
)

// Hasher is a deterministic password hasher.
type Hasher struct {
	mu          sync.Mutex
	verifyCalls int
}

func (h *Hasher) Hash(plain string) (string, error) {
	return "hashed:" + plain, nil
}

func (h *Hasher) Verify(hash, plain string) error {
	h.mu.Lock()
	h.verifyCalls++
	h.mu.Unlock()
	if !strings.HasPrefix(hash, "hashed:") {
		return password.ErrInvalidHash
	}
	if hash != "hashed:"+plain {
		return password.ErrMismatch
	}
	return nil
}

func (h *Hasher) VerifyCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifyCalls
}

type UserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[int]types.User{}}
}

func (r *UserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return types.User{}, store.ErrConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r *UserRepo) UpdatePasswordHash(_ context.Context, id int, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	r.users[id] = u
	return nil
}

// FavoriteRepo enforces the same (user, media type, media id) uniqueness as the database.
type FavoriteRepo struct {
	mu        sync.Mutex
	nextID    int
	favorites []types.Favorite
}

func (r *FavoriteRepo) Create(_ context.Context, fav types.Favorite) (types.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.favorites {
		if f.UserID == fav.UserID && f.MediaType == fav.MediaType && f.MediaID == fav.MediaID {
			return types.Favorite{}, store.ErrConflict
		}
	}
	r.nextID++
	fav.ID = r.nextID
	fav.CreatedAt = time.Now()
	r.favorites = append(r.favorites, fav)
	return fav, nil
}

func (r *FavoriteRepo) GetByIDAndUser(_ context.Context, id, userID int) (types.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.favorites {
		if f.ID == id && f.UserID == userID {
			return f, nil
		}
	}
	return types.Favorite{}, store.ErrNotFound
}

func (r *FavoriteRepo) ListByUser(_ context.Context, userID int) ([]types.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []types.Favorite{}
	for i := len(r.favorites) - 1; i >= 0; i-- {
		if r.favorites[i].UserID == userID {
			out = append(out, r.favorites[i])
		}
	}
	return out, nil
}

func (r *FavoriteRepo) Exists(_ context.Context, userID int, mediaType types.MediaType, mediaID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.favorites {
		if f.UserID == userID && f.MediaType == mediaType && f.MediaID == mediaID {
			return true, nil
		}
	}
	return false, nil
}

func (r *FavoriteRepo) DeleteByIDAndUser(_ context.Context, id, userID int) (types.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.favorites {
		if f.ID == id && f.UserID == userID {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return f, nil
		}
	}
	return types.Favorite{}, store.ErrNotFound
}

// ReviewRepo assigns creation times from a clock that advances one minute per review.
type ReviewRepo struct {
	mu      sync.Mutex
	nextID  int
	users   *UserRepo
	reviews []types.Review
	clock   time.Time
}

func NewReviewRepo(users *UserRepo, start time.Time) *ReviewRepo {
	return &ReviewRepo{users: users, clock: start}
}

func (r *ReviewRepo) Create(_ context.Context, review types.Review) (types.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.clock = r.clock.Add(time.Minute)
	review.ID = r.nextID
	review.CreatedAt = r.clock
	review.User.ID = review.UserID
	r.reviews = append(r.reviews, review)
	return review, nil
}

func (r *ReviewRepo) ListByUser(_ context.Context, userID int) ([]types.Review, error) {
	return r.filter(func(rv types.Review) bool { return rv.UserID == userID }), nil
}

func (r *ReviewRepo) ListByMedia(_ context.Context, mediaType types.MediaType, mediaID string) ([]types.Review, error) {
	return r.filter(func(rv types.Review) bool { return rv.MediaType == mediaType && rv.MediaID == mediaID }), nil
}

func (r *ReviewRepo) DeleteByIDAndUser(_ context.Context, id, userID int) (types.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rv := range r.reviews {
		if rv.ID == id && rv.UserID == userID {
			r.reviews = append(r.reviews[:i], r.reviews[i+1:]...)
			return rv, nil
		}
	}
	return types.Review{}, store.ErrNotFound
}

// filter returns matching reviews newest first with the author name filled in.
func (r *ReviewRepo) filter(match func(types.Review) bool) []types.Review {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []types.Review{}
	for i := len(r.reviews) - 1; i >= 0; i-- {
		rv := r.reviews[i]
		if !match(rv) {
			continue
		}
		if u, err := r.users.GetByID(context.Background(), rv.UserID); err == nil {
			rv.User.Name = u.DisplayName
		}
		out = append(out, rv)
	}
	return out
}

// Publisher records published activity events.
type Publisher struct {
	mu     sync.Mutex
	events []types.ActivityEvent
}

func (p *Publisher) Publish(_ context.Context, event types.ActivityEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *Publisher) Events() []types.ActivityEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.ActivityEvent(nil), p.events...)
}

func (p *Publisher) Types() []types.ActivityType {
	events := p.Events()
	out := make([]types.ActivityType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

// ErrUpstream is returned by Gateway for calls listed in Fail.
var ErrUpstream = errors.New("upstream down")

// Gateway answers media calls from Bodies, keyed by call name such as
// "detail" or "search:person". Unlisted calls return {"name":<call>}.
type Gateway struct {
	mu     sync.Mutex
	calls  []string
	Fail   map[string]bool
	Bodies map[string]string
}

func NewGateway() *Gateway {
	return &Gateway{Fail: map[string]bool{}, Bodies: map[string]string{}}
}

func (g *Gateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *Gateway) respond(name string) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, name)
	if g.Fail[name] {
		return nil, ErrUpstream
	}
	if body, ok := g.Bodies[name]; ok {
		return json.RawMessage(body), nil
	}
	return json.RawMessage(`{"name":"` + name + `"}`), nil
}

func (g *Gateway) MediaList(_ context.Context, mediaType, category string, _ int) (json.RawMessage, error) {
	return g.respond("list:" + mediaType + "/" + category)
}

func (g *Gateway) MediaDetail(context.Context, string, string) (json.RawMessage, error) {
	return g.respond("detail")
}

func (g *Gateway) MediaGenres(_ context.Context, mediaType string) (json.RawMessage, error) {
	return g.respond("genres:" + mediaType)
}

func (g *Gateway) MediaCredits(context.Context, string, string) (json.RawMessage, error) {
	return g.respond("credits")
}

func (g *Gateway) MediaVideos(context.Context, string, string) (json.RawMessage, error) {
	return g.respond("videos")
}

func (g *Gateway) MediaImages(context.Context, string, string) (json.RawMessage, error) {
	return g.respond("images")
}

func (g *Gateway) MediaRecommendations(context.Context, string, string) (json.RawMessage, error) {
	return g.respond("recommendations")
}

func (g *Gateway) MediaSearch(_ context.Context, mediaType, _ string, _ int) (json.RawMessage, error) {
	return g.respond("search:" + mediaType)
}

func (g *Gateway) PersonDetail(_ context.Context, personID string) (json.RawMessage, error) {
	return g.respond("person:" + personID)
}

func (g *Gateway) PersonMedias(_ context.Context, personID string) (json.RawMessage, error) {
	return g.respond("person-medias:" + personID)
}
