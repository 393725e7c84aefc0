package business

import (
	"context"
	"fmt"
	"net/http"

	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/comment-gateway/internal/business/server"
	"github.com/openkcm/comment-gateway/internal/comment"
	"github.com/openkcm/comment-gateway/internal/config"
	"github.com/openkcm/comment-gateway/internal/discussion"
	"github.com/openkcm/comment-gateway/internal/github"
	"github.com/openkcm/comment-gateway/internal/session"
	sessionmemory "github.com/openkcm/comment-gateway/internal/session/memory"
	sessionvalkey "github.com/openkcm/comment-gateway/internal/session/valkey"
)

// Main starts the public HTTP API server.
func Main(ctx context.Context, cfg *config.Config) error {
	services, closeFn, err := initServices(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the services: %w", err)
	}

	defer closeFn()

	return server.StartHTTPServer(ctx, cfg, services)
}

func initServices(ctx context.Context, cfg *config.Config) (_ server.Services, closeFn func(), _ error) {
	if err := cfg.ResolveSecrets(); err != nil {
		return server.Services{}, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return server.Services{}, nil, fmt.Errorf("validating configuration: %w", err)
	}

	revoker, closeFn, err := initRevoker(ctx, cfg)
	if err != nil {
		return server.Services{}, nil, fmt.Errorf("initialising the revocation backend: %w", err)
	}

	httpClient := loadHTTPClient(cfg)
	githubClient := github.NewClient(httpClient, cfg.GitHub.GraphQLURL)

	sessManager, err := session.NewManager(cfg, githubClient, revoker, httpClient)
	if err != nil {
		closeFn()
		return server.Services{}, nil, fmt.Errorf("creating session manager: %w", err)
	}

	if cfg.GitHub.FallbackTokenParsed == "" {
		slogctx.Warn(ctx, "No fallback token configured, anonymous discussion reads will fail")
	}

	return server.Services{
		Sessions:    sessManager,
		Discussions: discussion.NewService(githubClient, cfg.GitHub.FallbackTokenParsed, cfg.Discussion.PublicCacheMaxAge),
		Comments:    comment.NewService(githubClient),
	}, closeFn, nil
}

func initRevoker(ctx context.Context, cfg *config.Config) (_ session.Revoker, closeFn func(), _ error) {
	switch cfg.Revocation.Backend {
	case config.RevocationBackendMemory:
		slogctx.Info(ctx, "Using an in-memory revocation list")
		return sessionmemory.NewRevoker(), func() {}, nil
	case config.RevocationBackendValKey:
		host, user, password, err := config.ValKeyCredentials(cfg.ValKey)
		if err != nil {
			return nil, nil, err
		}

		valkeyClient, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{host},
			Username:    user,
			Password:    password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("creating a new valkey client: %w", err)
		}

		slogctx.Info(ctx, "Using a valkey revocation list", "host", host, "prefix", cfg.ValKey.Prefix)
		return sessionvalkey.NewRevoker(valkeyClient, cfg.ValKey.Prefix), valkeyClient.Close, nil
	default:
		return session.NopRevoker{}, func() {}, nil
	}
}

func loadHTTPClient(cfg *config.Config) *http.Client {
	userAgent := "comment-gateway"
	if cfg.Application.Name != "" {
		userAgent = cfg.Application.Name
	}

	return &http.Client{
		Timeout: cfg.GitHub.RequestTimeout,
		Transport: &userAgentRoundTripper{
			userAgent: userAgent,
			next:      http.DefaultTransport,
		},
	}
}

// userAgentRoundTripper identifies the gateway to GitHub, which rejects API
// requests without a User-Agent.
type userAgentRoundTripper struct {
	userAgent string
	next      http.RoundTripper
}

func (t *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)

	return t.next.RoundTrip(req)
}
