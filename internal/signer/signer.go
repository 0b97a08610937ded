// Package signer provides the order-signing capability the Execution Module
// calls before submitting any non-simulated order, per §4.5 and Open
// Question (c). It is explicitly NOT venue-certified: OrderPayload.Hash is a
// keccak256 digest of the order fields joined with '|', not an EIP-712
// typed-data hash with a venue domain separator, so a venue that verifies
// EIP-712 signatures will not accept these signatures.
package signer

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// OrderSigner is the capability the Execution Module depends on. A nil
// OrderSigner (no configured private key) is how the module recognizes
// "no credentials" and falls back to simulated orders.
type OrderSigner interface {
	Address() common.Address
	Sign(orderHash []byte) ([]byte, error)
}

// ECDSASigner signs order hashes with a raw secp256k1 key, grounded on the
// `privateKey *ecdsa.PrivateKey` / `common.Address` shape ChoSanghyuk-
// blackholedex uses for its own on-chain signing.
type ECDSASigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewECDSASigner(hexKey string) (*ECDSASigner, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &ECDSASigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *ECDSASigner) Address() common.Address { return s.address }

// Sign produces a recoverable secp256k1 signature over orderHash, which the
// caller must already have reduced to a 32-byte digest (see
// OrderPayload.Hash).
func (s *ECDSASigner) Sign(orderHash []byte) ([]byte, error) {
	return crypto.Sign(orderHash, s.key)
}
