package authn

import "testing"

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	ok, err := VerifyPassword(hash, "correct-horse")
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify")
	}

	ok, err = VerifyPassword(hash, "wrong-password")
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatal("did not expect wrong password to verify")
	}
}

func TestHashUniqueSalt(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatal("expected distinct salts to produce distinct hashes")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("not-a-hash", "x"); err != ErrMalformedHash {
		t.Fatalf("expected ErrMalformedHash, got %v", err)
	}
	if _, err := VerifyPassword("$argon2id$v=19$m=bogus$salt$sum", "x"); err != ErrMalformedHash {
		t.Fatalf("expected ErrMalformedHash, got %v", err)
	}
}

func TestDummyHashVerifiesFalse(t *testing.T) {
	ok, err := VerifyPassword(DummyHash, "anything-an-attacker-might-guess")
	if err != nil {
		t.Fatalf("VerifyPassword against DummyHash: %v", err)
	}
	if ok {
		t.Fatal("DummyHash must never verify successfully")
	}
}
