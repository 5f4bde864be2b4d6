package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash([]byte("hunter42"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "hunter42" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := h.Compare(hash, []byte("hunter42")); err != nil {
		t.Errorf("Compare with correct password: %v", err)
	}
	if err := h.Compare(hash, []byte("wrong")); err == nil {
		t.Error("Compare with wrong password should fail")
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	if got := NewHasher(0).Cost; got != bcrypt.DefaultCost {
		t.Errorf("cost for 0 = %d, want default %d", got, bcrypt.DefaultCost)
	}
	if got := NewHasher(1).Cost; got != bcrypt.MinCost {
		t.Errorf("cost for 1 = %d, want min %d", got, bcrypt.MinCost)
	}
	if got := NewHasher(99).Cost; got != bcrypt.MaxCost {
		t.Errorf("cost for 99 = %d, want max %d", got, bcrypt.MaxCost)
	}
}
