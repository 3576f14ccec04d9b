package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cinedex/apiserver/internal/logging"
	"github.com/cinedex/apiserver/internal/password"
	"github.com/cinedex/apiserver/internal/store"
	"github.com/cinedex/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdatePasswordHash(ctx context.Context, id int, hash string) error
}

// PasswordHasher hashes new passwords and verifies stored hashes.
// Verify returns nil only when plain matches hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) error
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo   UserRepository
	hasher PasswordHasher
	events ActivityPublisher

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(repo UserRepository, hasher PasswordHasher, events ActivityPublisher) *UserService {
	return &UserService{repo: repo, hasher: hasher, events: publisherOrNoop(events)}
}

// CreateUser stores a new account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, username, plainPassword, displayName string) (types.User, error) {
	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, ErrUsernameTaken
		}
		return types.User{}, err
	}

	s.events.Publish(ctx, types.ActivityEvent{
		Type:       types.ActivityUserCreated,
		UserID:     user.ID,
		ResourceID: user.ID,
	})
	return user, nil
}

// Authenticate returns the user when the credentials match. Unknown usernames
// and wrong passwords both yield ErrAuthenticationFailed.
func (s *UserService) Authenticate(ctx context.Context, username, plainPassword string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.hasher.Verify(s.dummy(), plainPassword)
			return types.User{}, ErrAuthenticationFailed
		}
		return types.User{}, err
	}

	if err := s.hasher.Verify(user.PasswordHash, plainPassword); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			logging.Ctx(ctx).Warn().Err(err).Int("user_id", user.ID).Msg("stored password hash unusable")
		}
		return types.User{}, ErrAuthenticationFailed
	}
	return user, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Verify(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCurrentPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.events.Publish(ctx, types.ActivityEvent{
		Type:       types.ActivityPasswordUpdated,
		UserID:     userID,
		ResourceID: userID,
	})
	return nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// dummy returns a hash that unknown usernames are verified against so the
// failure path costs the same as a wrong password.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
