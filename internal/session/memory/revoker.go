// Package sessionmemory keeps the revocation list in process memory. It is
// meant for single-replica deployments.
package sessionmemory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/openkcm/comment-gateway/internal/session"
)

const cleanupInterval = 10 * time.Minute

type Revoker struct {
	cache *cache.Cache
}

var _ = session.Revoker(&Revoker{})

func NewRevoker() *Revoker {
	return &Revoker{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

func (r *Revoker) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	r.cache.Set(session.TokenKey(token), struct{}{}, ttl)
	return nil
}

func (r *Revoker) IsRevoked(_ context.Context, token string) (bool, error) {
	_, ok := r.cache.Get(session.TokenKey(token))
	return ok, nil
}
