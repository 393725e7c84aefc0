// Package githubtest provides a fake GitHub OAuth and GraphQL endpoint for
// tests.
package githubtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openkcm/comment-gateway/internal/github"
)

const (
	TokenPath   = "/login/oauth/access_token"
	GraphQLPath = "/graphql"

	ClientID     = "test-client-id"
	ClientSecret = "test-client-secret"
	Code         = "valid-code"
	AccessToken  = "gho_user_token"
)

// Server answers the token exchange and the GraphQL operations the gateway
// issues. Fields may be changed between requests but not concurrently with
// them.
type Server struct {
	*httptest.Server

	// Tokens lists the bearer tokens accepted by the GraphQL endpoint.
	Tokens []string
	Viewer github.Actor
	// Discussion is returned for every search. Nil yields an empty result.
	Discussion *github.Discussion

	// GraphQLStatus forces a non-2xx GraphQL status when set.
	GraphQLStatus int
	// GraphQLErrors are returned in a 200 response when set.
	GraphQLErrors []github.ErrorEntry
	// TokenStatus forces a token endpoint status when set.
	TokenStatus int

	tokenCalls   atomic.Int32
	graphqlCalls atomic.Int32

	mu         sync.Mutex
	lastQuery  string
	lastVars   map[string]any
	lastBearer string
}

func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		Tokens: []string{AccessToken},
		Viewer: github.Actor{Login: "octocat", AvatarURL: "https://avatars.example.com/octocat"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(TokenPath, s.handleToken)
	mux.HandleFunc(GraphQLPath, s.handleGraphQL)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

func (s *Server) TokenURL() string   { return s.URL + TokenPath }
func (s *Server) GraphQLURL() string { return s.URL + GraphQLPath }

func (s *Server) TokenCalls() int   { return int(s.tokenCalls.Load()) }
func (s *Server) GraphQLCalls() int { return int(s.graphqlCalls.Load()) }

// LastRequest returns the query, variables and bearer token of the most
// recent GraphQL request.
func (s *Server) LastRequest() (string, map[string]any, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery, s.lastVars, s.lastBearer
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.tokenCalls.Add(1)

	if s.TokenStatus != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.TokenStatus)
		_, _ = w.Write([]byte(`{"error": "server_error"}`))
		return
	}

	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.PostForm.Get("client_id") != ClientID || r.PostForm.Get("client_secret") != ClientSecret {
		_, _ = w.Write([]byte(`{"error": "incorrect_client_credentials", "error_description": "The client_id and/or client_secret passed are incorrect."}`))
		return
	}
	// GitHub reports a bad code with status 200.
	if r.PostForm.Get("code") != Code {
		_, _ = w.Write([]byte(`{"error": "bad_verification_code", "error_description": "The code passed is incorrect or expired."}`))
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]string{
		"access_token": AccessToken,
		"token_type":   "bearer",
		"scope":        "read:user,public_repo,read:discussion",
	})
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	s.graphqlCalls.Add(1)

	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	s.lastQuery, s.lastVars, s.lastBearer = req.Query, req.Variables, bearer
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !slices.Contains(s.Tokens, bearer) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Bad credentials"}`))
		return
	}
	if s.GraphQLStatus != 0 {
		w.WriteHeader(s.GraphQLStatus)
		_, _ = w.Write([]byte(`{"message": "forced failure"}`))
		return
	}
	if len(s.GraphQLErrors) > 0 {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": nil, "errors": s.GraphQLErrors})
		return
	}

	var data any
	switch {
	case strings.Contains(req.Query, "addDiscussionComment"):
		comment := github.Comment{
			ID:              "DC_new",
			Author:          &s.Viewer,
			BodyHTML:        "<p>" + stringVar(req.Variables, "body") + "</p>",
			CreatedAt:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			ViewerCanUpdate: true,
			ViewerCanDelete: true,
		}
		if id := stringVar(req.Variables, "replyToId"); id != "" {
			comment.ReplyTo = &github.CommentRef{ID: id}
		}
		data = map[string]any{"addDiscussionComment": map[string]any{"comment": comment}}
	case strings.Contains(req.Query, "updateDiscussionComment"):
		data = map[string]any{"updateDiscussionComment": map[string]any{"comment": map[string]string{
			"id":       stringVar(req.Variables, "commentId"),
			"bodyHTML": "<p>" + stringVar(req.Variables, "body") + "</p>",
		}}}
	case strings.Contains(req.Query, "deleteDiscussionComment"):
		data = map[string]any{"deleteDiscussionComment": map[string]any{"comment": map[string]string{
			"id": stringVar(req.Variables, "id"),
		}}}
	case strings.Contains(req.Query, "search("):
		nodes := []any{}
		if s.Discussion != nil {
			nodes = append(nodes, s.Discussion)
		}
		data = map[string]any{"search": map[string]any{"nodes": nodes}}
	case strings.Contains(req.Query, "viewer {"):
		data = map[string]any{"viewer": s.Viewer}
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func stringVar(vars map[string]any, key string) string {
	v, _ := vars[key].(string)
	return v
}
