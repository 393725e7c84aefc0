package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/comment-gateway/internal/comment"
	"github.com/openkcm/comment-gateway/internal/config"
	"github.com/openkcm/comment-gateway/internal/discussion"
	"github.com/openkcm/comment-gateway/internal/middleware/cors"
	"github.com/openkcm/comment-gateway/internal/serviceerr"
	"github.com/openkcm/comment-gateway/internal/session"
)

const maxBodyBytes = 1 << 20

// Services are the business components behind the public API.
type Services struct {
	Sessions    *session.Manager
	Discussions *discussion.Service
	Comments    *comment.Service
}

type apiServer struct {
	Services
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type messageBody struct {
	Message string `json:"message"`
}

func newRouter(cfg *config.Config, svc Services) http.Handler {
	s := &apiServer{Services: svc}
	traced := newTraceMiddleware(cfg)

	r := chi.NewRouter()
	r.Use(cors.NewPolicy(cfg.CORS).Middleware)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, serviceerr.ErrMethodNotAllowed)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, serviceerr.ErrNotFound)
	})

	r.Get("/ping", traced(pingHandlerFunc, "ping"))
	r.Get("/login", traced(s.login, "login"))
	r.Get("/callback", traced(s.callback, "callback"))
	r.Get("/logout", traced(s.logout, "logout"))
	r.Post("/logout", traced(s.logout, "logout"))
	r.Get("/user", traced(s.whoAmI, "user"))
	r.Get("/discussion", traced(s.findDiscussion, "discussion"))
	r.Post("/comment", traced(s.createComment, "createComment"))
	r.Patch("/comment", traced(s.editComment, "editComment"))
	r.Delete("/comment", traced(s.deleteComment, "deleteComment"))

	return r
}

func (s *apiServer) login(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := s.Sessions.Initiate(r.Context(), q.Get("redirect"), q.Get("callback_url"))

	setCookies(w, res.Cookies)
	http.Redirect(w, r, res.AuthURL, http.StatusFound)
}

func (s *apiServer) callback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	q := r.URL.Query()
	state, redirect := s.Sessions.PendingLogin(r)

	res, err := s.Sessions.Complete(r.Context(), session.CallbackRequest{
		Code:           q.Get("code"),
		State:          q.Get("state"),
		ProviderError:  q.Get("error"),
		StateCookie:    state,
		RedirectCookie: redirect,
	})
	setCookies(w, res.Cookies)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slogctx.Debug(r.Context(), "Redirecting user", "to", res.Location)
	http.Redirect(w, r, res.Location, http.StatusFound)
}

func (s *apiServer) logout(w http.ResponseWriter, r *http.Request) {
	setCookies(w, s.Sessions.Logout(r.Context(), s.Sessions.ReadCookie(r)))
	writeJSON(w, http.StatusOK, messageBody{Message: "Successfully logged out"})
}

func (s *apiServer) whoAmI(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Cache-Control", "private, no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")

	identity, err := s.Sessions.WhoAmI(r.Context(), s.Sessions.ReadCookie(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if identity.SessionExpired() {
		http.SetCookie(w, s.Sessions.ExpiredSessionCookie())
	}

	writeJSON(w, http.StatusOK, identity)
}

func (s *apiServer) findDiscussion(w http.ResponseWriter, r *http.Request) {
	token, revoked := s.Sessions.SessionToken(r)
	if revoked {
		http.SetCookie(w, s.Sessions.ExpiredSessionCookie())
	}

	q := r.URL.Query()
	res, err := s.Discussions.Find(r.Context(), discussion.Query{
		Owner: q.Get("owner"),
		Repo:  q.Get("repo"),
		Title: q.Get("title"),
	}, token)
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", res.CacheControl)
	writeJSON(w, http.StatusOK, res.Discussion)
}

func (s *apiServer) createComment(w http.ResponseWriter, r *http.Request) {
	token, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req comment.CreateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.Comments.Create(r.Context(), token, req)
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *apiServer) editComment(w http.ResponseWriter, r *http.Request) {
	token, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req comment.EditRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	edited, err := s.Comments.Edit(r.Context(), token, req)
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, edited)
}

func (s *apiServer) deleteComment(w http.ResponseWriter, r *http.Request) {
	token, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req comment.DeleteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.Comments.Delete(r.Context(), token, req); err != nil {
		s.writeSessionError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requireSession answers 401 before the body is read when the request has
// no usable session. A revoked cookie is cleared.
func (s *apiServer) requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, revoked := s.Sessions.SessionToken(r)
	if token != "" {
		return token, true
	}

	if revoked {
		http.SetCookie(w, s.Sessions.ExpiredSessionCookie())
	}
	writeError(w, r, serviceerr.ErrUnauthorized)
	return "", false
}

// writeSessionError clears the session cookie when GitHub rejected the
// token, then writes err.
func (s *apiServer) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, serviceerr.ErrSessionExpired) {
		http.SetCookie(w, s.Sessions.ExpiredSessionCookie())
	}
	writeError(w, r, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		slogctx.Debug(r.Context(), "Failed to decode request body", "error", err)
		return serviceerr.ErrInvalidRequest.WithDescription("Invalid JSON body.")
	}
	return nil
}

func setCookies(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as a service error. Anything else is reported as
// unknown so that no internal detail reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	serviceErr := serviceerr.From(err)
	status := serviceErr.HTTPStatus()

	if status >= http.StatusInternalServerError {
		slogctx.Error(ctx, "Request failed", "code", serviceErr.Err, "error", err)
	} else {
		slogctx.Info(ctx, "Request rejected", "code", serviceErr.Err, "status", status)
	}

	message := serviceErr.Description
	if message == "" {
		message = string(serviceErr.Err)
	}

	writeJSON(w, status, errorBody{Error: message, Code: string(serviceErr.Err)})
}
