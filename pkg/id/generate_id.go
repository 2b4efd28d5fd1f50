package id

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// NewID32 returns 32 lowercase hex characters. It is also a valid Ax-Request-Id.
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

var accountSpace = big.NewInt(900_000_000)

// NewAccountNumber returns a random 9-digit account number without a leading zero.
func NewAccountNumber() string {
	n, err := rand.Int(rand.Reader, accountSpace)
	if err != nil {
		panic("id: crypto/rand unavailable: " + err.Error())
	}
	return n.Add(n, big.NewInt(100_000_000)).String()
}
