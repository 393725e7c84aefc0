// Package nonce generates the random values correlating a login request
// with its callback.
package nonce

import (
	"crypto/rand"
	"math/big"
)

const (
	stateLength = 64
	letters     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"
)

// Generator produces CSRF nonces. Tests replace it with a fixed value.
type Generator interface {
	State() string
}

type Source struct{}

var _ Generator = Source{}

func (p Source) randString(n int) string {
	ret := make([]byte, n)
	for i := range n {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		ret[i] = letters[num.Int64()]
	}

	return string(ret)
}

// State returns a fresh nonce for the OAuth state parameter.
func (p Source) State() string {
	return p.randString(stateLength) // Entropy E = 64 * log2(63) = 382.5 bits
}
