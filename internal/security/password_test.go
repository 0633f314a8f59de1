package security

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if hash == "secret123" || strings.Contains(hash, "secret123") {
		t.Fatalf("hash must not contain the plaintext, got %q", hash)
	}

	ok, err := VerifyPassword("secret123", hash)

	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if !ok {
		t.Fatalf("expected correct password to verify")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hash, err := HashPassword("secret123")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	ok, err := VerifyPassword("not-the-password", hash)

	if err != nil {
		t.Fatalf("mismatch must not be an error, got %v", err)
	}

	if ok {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	h2, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("two hashes of the same password must differ (random salt)")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	_, err := VerifyPassword("whatever", "not-a-bcrypt-hash")

	if !errors.Is(err, ErrMalformedHash) {
		t.Fatalf("expected ErrMalformedHash, got %v", err)
	}
}
