package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Revoker keeps a denylist of logged out access tokens. Tokens are never
// stored in clear; backends key entries by TokenKey.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// TokenKey returns the hex encoded SHA-256 of the token.
func TokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NopRevoker is used when no denylist backend is configured.
type NopRevoker struct{}

var _ Revoker = NopRevoker{}

func (NopRevoker) Revoke(context.Context, string, time.Duration) error { return nil }

func (NopRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }
