package signer

import "testing"

const testPrivateKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestNewECDSASignerAddress(t *testing.T) {
	s, err := NewECDSASigner(testPrivateKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Address().Hex() == "" {
		t.Fatal("expected a derived address")
	}
}

func TestNewECDSASignerRejectsGarbage(t *testing.T) {
	if _, err := NewECDSASigner("not-a-key"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestSignProducesRecoverableSignature(t *testing.T) {
	s, err := NewECDSASigner(testPrivateKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload := OrderPayload{TokenID: "123", Price: "0.55", Size: "10", Side: "BUY", Nonce: 1}
	sig, err := s.Sign(payload.Hash())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("expected a 65-byte signature, got %d bytes", len(sig))
	}
}

func TestHashIsDeterministic(t *testing.T) {
	p := OrderPayload{TokenID: "123", Price: "0.55", Size: "10", Side: "BUY", Nonce: 1}
	if string(p.Hash()) != string(p.Hash()) {
		t.Fatal("expected hash to be deterministic")
	}
	other := p
	other.Nonce = 2
	if string(p.Hash()) == string(other.Hash()) {
		t.Fatal("expected different nonce to change the hash")
	}
}
