package sessionmock

import (
	"context"
	"sync"
	"time"

	"github.com/openkcm/comment-gateway/internal/session"
)

type RevokerOption func(*Revoker)

// Revoker is an in-memory session.Revoker with injectable failures.
type Revoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration

	revokeErr, isRevokedErr error
}

func WithRevoked(token string) RevokerOption {
	return func(r *Revoker) { r.revoked[session.TokenKey(token)] = 0 }
}
func WithRevokeError(err error) RevokerOption {
	return func(r *Revoker) { r.revokeErr = err }
}
func WithIsRevokedError(err error) RevokerOption {
	return func(r *Revoker) { r.isRevokedErr = err }
}

var _ = session.Revoker(&Revoker{})

func NewRevoker(opts ...RevokerOption) *Revoker {
	r := &Revoker{
		revoked: make(map[string]time.Duration),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Revoker) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if r.revokeErr != nil {
		return r.revokeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[session.TokenKey(token)] = ttl
	return nil
}

func (r *Revoker) IsRevoked(_ context.Context, token string) (bool, error) {
	if r.isRevokedErr != nil {
		return false, r.isRevokedErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[session.TokenKey(token)]
	return ok, nil
}

// TTL returns the lifetime a token was revoked with.
func (r *Revoker) TTL(token string) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ttl, ok := r.revoked[session.TokenKey(token)]
	return ttl, ok
}
