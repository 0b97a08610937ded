package signer

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// OrderPayload is the wire shape signed before submission, matching the
// fields named in §4.5: tokenID, price, size, side, feeRateBps, nonce,
// expiration.
type OrderPayload struct {
	TokenID     string
	Price       string
	Size        string
	Side        string
	FeeRateBps  int
	Nonce       int64
	Expiration  int64
}

// Hash reduces an OrderPayload to the 32-byte digest Sign expects. Field
// ordering and encoding here are a placeholder consistent with the rest of
// the payload's shape, not a certified venue domain separator — see the
// package doc comment.
func (p OrderPayload) Hash() []byte {
	packed := fmt.Sprintf("%s|%s|%s|%s|%d|%d|%d",
		p.TokenID, p.Price, p.Size, p.Side, p.FeeRateBps, p.Nonce, p.Expiration)
	return crypto.Keccak256([]byte(packed))
}
