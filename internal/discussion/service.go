// Package discussion reads a discussion and its comments on behalf of a
// visitor, with or without a session.
package discussion

import (
	"context"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/comment-gateway/internal/github"
	"github.com/openkcm/comment-gateway/internal/serviceerr"
)

const (
	privateCacheControl = "private, no-store"
	defaultPublicMaxAge = 30 * time.Second
)

var (
	ErrMissingParameters = serviceerr.ErrInvalidRequest.WithDescription("Owner, repo, and title are required.")
	ErrNotFound          = serviceerr.ErrNotFound.WithDescription("Discussion not found.")
	ErrFetchFailed       = serviceerr.ErrUpstreamFailure.WithDescription("Failed to fetch discussion.")
)

type Searcher interface {
	SearchDiscussion(ctx context.Context, token, searchQuery string) (*github.Discussion, error)
}

type Discussion struct {
	ID       string    `json:"id"`
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	Comments []Comment `json:"comments"`
}

type Query struct {
	Owner string
	Repo  string
	Title string
}

func (q Query) Validate() error {
	if q.Owner == "" || q.Repo == "" || q.Title == "" {
		return ErrMissingParameters
	}
	return nil
}

// Result is a discussion together with the Cache-Control value that suits
// the token it was read with.
type Result struct {
	Discussion   Discussion
	CacheControl string
}

type Service struct {
	searcher      Searcher
	fallbackToken string
	publicMaxAge  time.Duration
}

// NewService returns a Service. An empty fallbackToken disables anonymous
// reads.
func NewService(searcher Searcher, fallbackToken string, publicMaxAge time.Duration) *Service {
	if publicMaxAge <= 0 {
		publicMaxAge = defaultPublicMaxAge
	}
	return &Service{
		searcher:      searcher,
		fallbackToken: fallbackToken,
		publicMaxAge:  publicMaxAge,
	}
}

// Find looks the discussion up with the caller's token or, without one, the
// fallback token. Fallback reads carry no viewer permissions and may be
// cached publicly.
func (s *Service) Find(ctx context.Context, q Query, callerToken string) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	token, anonymous := callerToken, false
	if token == "" {
		if s.fallbackToken == "" {
			slogctx.Error(ctx, "No session and no fallback token configured for discussion reads")
			return Result{}, serviceerr.ErrConfiguration
		}
		token, anonymous = s.fallbackToken, true
	}

	ctx = slogctx.With(ctx, "owner", q.Owner, "repo", q.Repo, "anonymous", anonymous)

	node, err := s.searcher.SearchDiscussion(ctx, token, github.SearchQuery(q.Owner, q.Repo, q.Title))
	if err != nil {
		if !anonymous && github.IsUnauthorized(err) {
			slogctx.Info(ctx, "GitHub rejected the session token")
			return Result{}, serviceerr.ErrSessionExpired
		}
		slogctx.Error(ctx, "Failed to fetch discussion", "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if node == nil {
		slogctx.Debug(ctx, "Discussion not found", "title", q.Title)
		return Result{}, ErrNotFound
	}

	comments := Flatten(node.Comments.Nodes)
	res := Result{
		Discussion: Discussion{
			ID:       node.ID,
			URL:      node.URL,
			Title:    node.Title,
			Comments: comments,
		},
		CacheControl: privateCacheControl,
	}

	if anonymous {
		for i := range comments {
			comments[i].ViewerCanUpdate = false
			comments[i].ViewerCanDelete = false
		}
		res.CacheControl = fmt.Sprintf("public, max-age=%d, must-revalidate", int(s.publicMaxAge/time.Second))
	}

	return res, nil
}
