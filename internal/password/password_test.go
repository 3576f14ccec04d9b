package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

var testParams = Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(testParams)

	hash, err := h.Hash("secret12")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("hash = %q, want argon2id PHC prefix", hash)
	}
	if strings.Contains(hash, "secret12") {
		t.Fatal("hash contains plaintext")
	}

	if err := h.Verify(hash, "secret12"); err != nil {
		t.Errorf("Verify(correct) = %v, want nil", err)
	}
	if err := h.Verify(hash, "secret13"); !errors.Is(err, ErrMismatch) {
		t.Errorf("Verify(wrong) = %v, want ErrMismatch", err)
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(testParams)

	a, err := h.Hash("secret12")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("secret12")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}

func TestVerifyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret12"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	h := NewHasher(testParams)
	if err := h.Verify(string(legacy), "secret12"); err != nil {
		t.Errorf("Verify(bcrypt correct) = %v, want nil", err)
	}
	if err := h.Verify(string(legacy), "nope1234"); !errors.Is(err, ErrMismatch) {
		t.Errorf("Verify(bcrypt wrong) = %v, want ErrMismatch", err)
	}
}

func TestVerifyInvalidHash(t *testing.T) {
	h := NewHasher(testParams)

	tests := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=1,t=1$bad",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
	}
	for _, hash := range tests {
		if err := h.Verify(hash, "secret12"); !errors.Is(err, ErrInvalidHash) {
			t.Errorf("Verify(%q) = %v, want ErrInvalidHash", hash, err)
		}
	}
}
