// Package cors answers cross-origin requests from a static list of origins.
// Allowed origins are echoed back with credentials enabled; a wildcard is
// never sent as the session travels in a cookie.
package cors

import (
	"net/http"
	"strings"

	"github.com/openkcm/comment-gateway/internal/config"
)

var (
	defaultMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	defaultHeaders = []string{"Content-Type", "Accept", "X-Requested-With"}
)

type AllowedOrigins map[string]struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

type Policy struct {
	origins AllowedOrigins
	methods string
	headers string
}

func NewPolicy(cfg config.CORS) *Policy {
	origins := make(AllowedOrigins, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[strings.TrimSuffix(o, "/")] = struct{}{}
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = defaultMethods
	}
	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = defaultHeaders
	}

	return &Policy{
		origins: origins,
		methods: strings.Join(methods, ", "),
		headers: strings.Join(headers, ", "),
	}
}

// Decision is the outcome of evaluating one request. An empty AllowedOrigin
// means no CORS headers are sent.
type Decision struct {
	AllowedOrigin string
	Preflight     bool
}

func (p *Policy) Evaluate(origin, method string) Decision {
	d := Decision{Preflight: method == http.MethodOptions}
	if origin != "" && p.origins.IsAllowedOrigin(origin) {
		d.AllowedOrigin = origin
	}
	return d
}

// Middleware applies the policy and ends preflight requests with 204
// without calling next.
func (p *Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := p.Evaluate(r.Header.Get("Origin"), r.Method)

		h := w.Header()
		h.Add("Vary", "Origin")
		if d.AllowedOrigin != "" {
			h.Set("Access-Control-Allow-Origin", d.AllowedOrigin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", p.methods)
			h.Set("Access-Control-Allow-Headers", p.headers)
		}

		if d.Preflight {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
