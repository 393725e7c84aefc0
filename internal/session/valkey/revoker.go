// Package sessionvalkey keeps the revocation list in ValKey so that every
// replica sees a logout.
package sessionvalkey

import (
	"context"
	"errors"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/openkcm/comment-gateway/internal/session"
)

const objectTypeRevoked = "revoked"

var (
	ErrRevoke      = errors.New("storing revoked token")
	ErrCheckRevoke = errors.New("checking revoked token")
)

type revocation struct {
	RevokedAt time.Time `json:"revokedAt"`
}

type Revoker struct {
	store *store
}

var _ = session.Revoker(&Revoker{})

func NewRevoker(valkeyClient valkey.Client, prefix string) *Revoker {
	return &Revoker{
		store: newStore(valkeyClient, prefix),
	}
}

func (r *Revoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if err := r.store.Set(ctx, objectTypeRevoked, session.TokenKey(token), revocation{RevokedAt: time.Now().UTC()}, ttl); err != nil {
		return errors.Join(ErrRevoke, err)
	}

	return nil
}

func (r *Revoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	ok, err := r.store.Exists(ctx, objectTypeRevoked, session.TokenKey(token))
	if err != nil {
		return false, errors.Join(ErrCheckRevoke, err)
	}

	return ok, nil
}
