package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("supersecret")

	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if hash == "supersecret" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "supersecret") {
		t.Fatal("correct password must verify")
	}

	if CheckPassword(hash, "wrong-password") {
		t.Fatal("wrong password must not verify")
	}
}

func TestCheckPasswordAgainstGarbageHash(t *testing.T) {
	if CheckPassword("not-a-bcrypt-hash", "anything") {
		t.Fatal("garbage hash must never verify")
	}
}
