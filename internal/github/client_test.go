package github_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/comment-gateway/internal/github"
	"github.com/openkcm/comment-gateway/internal/github/githubtest"
)

func newClient(srv *githubtest.Server) *github.Client {
	return github.NewClient(&http.Client{Timeout: 5 * time.Second}, srv.GraphQLURL())
}

func TestClient_Viewer(t *testing.T) {
	srv := githubtest.NewServer(t)
	client := newClient(srv)

	t.Run("valid token", func(t *testing.T) {
		viewer, err := client.Viewer(t.Context(), githubtest.AccessToken)
		require.NoError(t, err)
		require.NotNil(t, viewer)
		assert.Equal(t, "octocat", viewer.Login)

		_, _, bearer := srv.LastRequest()
		assert.Equal(t, githubtest.AccessToken, bearer)
	})

	t.Run("rejected token", func(t *testing.T) {
		_, err := client.Viewer(t.Context(), "gho_revoked")

		var statusErr *github.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
		assert.True(t, github.IsUnauthorized(err))
	})
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*githubtest.Server)
		assertErr func(t *testing.T, err error)
	}{
		{
			name:  "server error",
			setup: func(s *githubtest.Server) { s.GraphQLStatus = http.StatusBadGateway },
			assertErr: func(t *testing.T, err error) {
				t.Helper()
				var statusErr *github.StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
				assert.NotContains(t, err.Error(), "forced failure")
				assert.False(t, github.IsUnauthorized(err))
			},
		},
		{
			name: "graphql errors",
			setup: func(s *githubtest.Server) {
				s.GraphQLErrors = []github.ErrorEntry{{Type: "RATE_LIMITED", Message: "API rate limit exceeded"}}
			},
			assertErr: func(t *testing.T, err error) {
				t.Helper()
				var gqlErr *github.GraphQLError
				require.ErrorAs(t, err, &gqlErr)
				assert.Contains(t, err.Error(), "RATE_LIMITED")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := githubtest.NewServer(t)
			tt.setup(srv)

			_, err := newClient(srv).Viewer(t.Context(), githubtest.AccessToken)
			tt.assertErr(t, err)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := githubtest.NewServer(t)
	client := newClient(srv)
	srv.Close()

	_, err := client.Viewer(t.Context(), githubtest.AccessToken)
	require.Error(t, err)

	var statusErr *github.StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := githubtest.NewServer(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := newClient(srv).Viewer(ctx, githubtest.AccessToken)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_SearchDiscussion(t *testing.T) {
	srv := githubtest.NewServer(t)
	client := newClient(srv)

	query := github.SearchQuery("acme", "blog", "Hello World")
	assert.Equal(t, `repo:acme/blog in:title "Hello World"`, query)

	got, err := client.SearchDiscussion(t.Context(), githubtest.AccessToken, query)
	require.NoError(t, err)
	assert.Nil(t, got)

	srv.Discussion = &github.Discussion{ID: "D_1", URL: "https://github.com/acme/blog/discussions/1", Title: "Hello World"}
	got, err = client.SearchDiscussion(t.Context(), githubtest.AccessToken, query)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "D_1", got.ID)

	q, vars, _ := srv.LastRequest()
	assert.Contains(t, q, "type: DISCUSSION")
	assert.Contains(t, q, "first: 1")
	assert.Equal(t, query, vars["searchQuery"])
}

func TestClient_Mutations(t *testing.T) {
	srv := githubtest.NewServer(t)
	client := newClient(srv)
	ctx := t.Context()

	created, err := client.AddComment(ctx, githubtest.AccessToken, github.AddCommentInput{
		DiscussionID: "D_1",
		Body:         "hi",
		ReplyToID:    "DC_parent",
	})
	require.NoError(t, err)
	assert.Equal(t, "DC_new", created.ID)
	assert.Equal(t, "<p>hi</p>", created.BodyHTML)
	require.NotNil(t, created.ReplyTo)
	assert.Equal(t, "DC_parent", created.ReplyTo.ID)

	created, err = client.AddComment(ctx, githubtest.AccessToken, github.AddCommentInput{DiscussionID: "D_1", Body: "top"})
	require.NoError(t, err)
	assert.Nil(t, created.ReplyTo)
	_, vars, _ := srv.LastRequest()
	assert.NotContains(t, vars, "replyToId")

	updated, err := client.UpdateComment(ctx, githubtest.AccessToken, "DC_new", "edited")
	require.NoError(t, err)
	assert.Equal(t, "DC_new", updated.ID)
	assert.Equal(t, "<p>edited</p>", updated.BodyHTML)

	require.NoError(t, client.DeleteComment(ctx, githubtest.AccessToken, "DC_new"))
	_, vars, _ = srv.LastRequest()
	assert.Equal(t, "DC_new", vars["id"])
}
