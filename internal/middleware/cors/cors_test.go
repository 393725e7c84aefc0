package cors_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkcm/comment-gateway/internal/config"
	"github.com/openkcm/comment-gateway/internal/middleware/cors"
)

func newPolicy() *cors.Policy {
	return cors.NewPolicy(config.CORS{
		AllowedOrigins: []string{"https://blog.example.com", "http://localhost:4321/"},
	})
}

func TestPolicy_Evaluate(t *testing.T) {
	p := newPolicy()

	tests := []struct {
		name   string
		origin string
		method string
		want   cors.Decision
	}{
		{
			name:   "allowed origin",
			origin: "https://blog.example.com",
			method: http.MethodGet,
			want:   cors.Decision{AllowedOrigin: "https://blog.example.com"},
		},
		{
			name:   "allowed origin with trailing slash in config",
			origin: "http://localhost:4321",
			method: http.MethodPost,
			want:   cors.Decision{AllowedOrigin: "http://localhost:4321"},
		},
		{
			name:   "preflight",
			origin: "https://blog.example.com",
			method: http.MethodOptions,
			want:   cors.Decision{AllowedOrigin: "https://blog.example.com", Preflight: true},
		},
		{
			name:   "unlisted origin",
			origin: "https://evil.example",
			method: http.MethodGet,
			want:   cors.Decision{},
		},
		{
			name:   "origin differs in scheme",
			origin: "http://blog.example.com",
			method: http.MethodGet,
			want:   cors.Decision{},
		},
		{
			name:   "no origin",
			method: http.MethodOptions,
			want:   cors.Decision{Preflight: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Evaluate(tt.origin, tt.method))
		})
	}
}

func TestPolicy_Middleware(t *testing.T) {
	tests := []struct {
		name        string
		origin      string
		method      string
		wantStatus  int
		wantCalled  bool
		wantOrigin  string
		wantCredsOn bool
	}{
		{
			name:        "allowed request",
			origin:      "https://blog.example.com",
			method:      http.MethodGet,
			wantStatus:  http.StatusTeapot,
			wantCalled:  true,
			wantOrigin:  "https://blog.example.com",
			wantCredsOn: true,
		},
		{
			name:        "allowed preflight",
			origin:      "https://blog.example.com",
			method:      http.MethodOptions,
			wantStatus:  http.StatusNoContent,
			wantOrigin:  "https://blog.example.com",
			wantCredsOn: true,
		},
		{
			name:       "unlisted preflight",
			origin:     "https://evil.example",
			method:     http.MethodOptions,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "unlisted request",
			origin:     "https://evil.example",
			method:     http.MethodPost,
			wantStatus: http.StatusTeapot,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusTeapot)
			})

			req := httptest.NewRequest(tt.method, "/discussion", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			newPolicy().Middleware(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.NotEqual(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "Origin", rec.Header().Get("Vary"))
			if tt.wantCredsOn {
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
				assert.Equal(t, "GET, POST, PATCH, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, "Content-Type, Accept, X-Requested-With", rec.Header().Get("Access-Control-Allow-Headers"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}
