package session_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openkcm/comment-gateway/internal/config"
	"github.com/openkcm/comment-gateway/internal/github"
	"github.com/openkcm/comment-gateway/internal/github/githubtest"
	"github.com/openkcm/comment-gateway/internal/session"
)

const fixedNonce = "Zm9vYmFyYmF6cXV4Zm9vYmFyYmF6cXV4Zm9vYmFyYmF6cXV4Zm9vYmFyYmF6cXV4"

type fixedGenerator string

func (g fixedGenerator) State() string { return string(g) }

func testConfig(srv *githubtest.Server) *config.Config {
	secureTemplate := config.CookieTemplate{Secure: true, HTTPOnly: true}
	return &config.Config{
		GitHub: config.GitHub{
			ClientID:           githubtest.ClientID,
			ClientSecretParsed: githubtest.ClientSecret,
			CallbackURL:        "https://api.example.com/callback",
			AuthorizeURL:       "https://github.com/login/oauth/authorize",
			TokenURL:           srv.TokenURL(),
			GraphQLURL:         srv.GraphQLURL(),
		},
		Redirect: config.Redirect{AllowedHosts: []string{"blog.example.com", "preview.example.com"}},
		Cookies: config.Cookies{
			Session:  secureTemplate,
			State:    secureTemplate,
			Redirect: secureTemplate,
		},
	}
}

func newManager(t *testing.T, srv *githubtest.Server, revoker session.Revoker) *session.Manager {
	t.Helper()

	httpClient := &http.Client{Timeout: 5 * time.Second}
	m, err := session.NewManager(testConfig(srv), github.NewClient(httpClient, srv.GraphQLURL()), revoker, httpClient)
	require.NoError(t, err)
	m.SetNonceGenerator(fixedGenerator(fixedNonce))

	return m
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
