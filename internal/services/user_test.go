package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cinedex/apiserver/internal/testutil"
	"github.com/cinedex/apiserver/types"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	events := &testutil.Publisher{}
	svc := NewUserService(testutil.NewUserRepo(), &testutil.Hasher{}, events)

	user, err := svc.CreateUser(ctx, "alice123", "secret12", "Alice Alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "alice123" || user.DisplayName != "Alice Alice" {
		t.Errorf("CreateUser = %+v", user)
	}
	if user.PasswordHash == "secret12" {
		t.Error("password stored in plaintext")
	}

	if _, err := svc.CreateUser(ctx, "alice123", "other123", "Someone Else"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate CreateUser err = %v, want ErrUsernameTaken", err)
	}

	want := []types.ActivityType{types.ActivityUserCreated}
	if got := events.Types(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	hasher := &testutil.Hasher{}
	svc := NewUserService(testutil.NewUserRepo(), hasher, nil)
	created, err := svc.CreateUser(ctx, "alice123", "secret12", "Alice Alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	user, err := svc.Authenticate(ctx, "alice123", "secret12")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("Authenticate user id = %d, want %d", user.ID, created.ID)
	}

	_, wrongPassword := svc.Authenticate(ctx, "alice123", "wrongpass")
	before := hasher.VerifyCalls()
	_, unknownUser := svc.Authenticate(ctx, "nobody99", "secret12")

	if !errors.Is(wrongPassword, ErrAuthenticationFailed) || !errors.Is(unknownUser, ErrAuthenticationFailed) {
		t.Fatalf("errors = %v, %v; want ErrAuthenticationFailed for both", wrongPassword, unknownUser)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPassword, unknownUser)
	}
	if hasher.VerifyCalls() != before+1 {
		t.Error("unknown username skipped password verification")
	}
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	events := &testutil.Publisher{}
	svc := NewUserService(testutil.NewUserRepo(), &testutil.Hasher{}, events)
	user, err := svc.CreateUser(ctx, "alice123", "secret12", "Alice Alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := svc.UpdatePassword(ctx, user.ID, "wrongpass", "newsecret"); !errors.Is(err, ErrInvalidCurrentPassword) {
		t.Fatalf("UpdatePassword(wrong current) = %v, want ErrInvalidCurrentPassword", err)
	}
	if err := svc.UpdatePassword(ctx, user.ID, "secret12", "newsecret"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice123", "newsecret"); err != nil {
		t.Errorf("Authenticate with new password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice123", "secret12"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("Authenticate with old password err = %v, want ErrAuthenticationFailed", err)
	}
	if err := svc.UpdatePassword(ctx, 999, "secret12", "newsecret"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdatePassword(unknown user) = %v, want ErrUserNotFound", err)
	}

	want := []types.ActivityType{types.ActivityUserCreated, types.ActivityPasswordUpdated}
	if got := events.Types(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestGetUser(t *testing.T) {
	svc := NewUserService(testutil.NewUserRepo(), &testutil.Hasher{}, nil)
	if _, err := svc.GetUser(context.Background(), 1); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUser(missing) = %v, want ErrUserNotFound", err)
	}
}
