package sessionvalkey_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/comment-gateway/internal/dbtest/valkeytest"
	"github.com/openkcm/comment-gateway/internal/session"
	sessionvalkey "github.com/openkcm/comment-gateway/internal/session/valkey"
)

func TestRevoker(t *testing.T) {
	ctx := t.Context()
	valkeyClient, _, terminate := valkeytest.Start(ctx)
	defer terminate(ctx)

	const prefix = "comment-gateway-revoker-test"
	r := sessionvalkey.NewRevoker(valkeyClient, prefix+":")

	revoked, err := r.IsRevoked(ctx, "gho_token")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "gho_token", time.Hour))

	revoked, err = r.IsRevoked(ctx, "gho_token")
	require.NoError(t, err)
	assert.True(t, revoked)

	t.Run("token is stored hashed", func(t *testing.T) {
		key := prefix + ":revoked:" + session.TokenKey("gho_token")
		n, err := valkeyClient.Do(ctx, valkeyClient.B().Exists().Key(key).Build()).AsInt64()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		keys, err := valkeyClient.Do(ctx, valkeyClient.B().Keys().Pattern("*gho_token*").Build()).AsStrSlice()
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("closed client fails", func(t *testing.T) {
		valkeyClient.Close()

		_, err := r.IsRevoked(ctx, "gho_token")
		require.ErrorIs(t, err, sessionvalkey.ErrCheckRevoke)

		err = r.Revoke(ctx, "gho_token", time.Hour)
		require.ErrorIs(t, err, sessionvalkey.ErrRevoke)
	})
}
