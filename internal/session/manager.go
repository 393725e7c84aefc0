package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/comment-gateway/internal/config"
	"github.com/openkcm/comment-gateway/internal/github"
	"github.com/openkcm/comment-gateway/internal/nonce"
	"github.com/openkcm/comment-gateway/internal/serviceerr"
)

var defaultScopes = []string{"read:user", "public_repo", "read:discussion"}

// IdentityProvider resolves the user behind an access token.
type IdentityProvider interface {
	Viewer(ctx context.Context, token string) (*github.Actor, error)
}

// Manager drives the GitHub login flow and reads the session cookie. It
// keeps no per-session state; the access token itself is the session.
type Manager struct {
	oauth       *oauth2.Config
	callbackURL string
	allowList   AllowList
	nonce       nonce.Generator
	identity    IdentityProvider
	revoker     Revoker
	httpClient  *http.Client

	sessionCookieTemplate  config.CookieTemplate
	stateCookieTemplate    config.CookieTemplate
	redirectCookieTemplate config.CookieTemplate
}

func NewManager(
	cfg *config.Config,
	identity IdentityProvider,
	revoker Revoker,
	httpClient *http.Client,
) (*Manager, error) {
	if err := cfg.GitHub.Validate(); err != nil {
		return nil, fmt.Errorf("validating github configuration: %w", err)
	}

	cookies := cfg.Cookies.WithDefaults()
	if err := cookies.Validate(); err != nil {
		return nil, fmt.Errorf("validating cookie configuration: %w", err)
	}

	if revoker == nil {
		revoker = NopRevoker{}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.GitHub.RequestTimeout}
	}

	scopes := cfg.GitHub.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	return &Manager{
		// RedirectURL stays empty so the exchange does not send a
		// redirect_uri that could differ from the one used at login.
		oauth: &oauth2.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecretParsed,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.GitHub.AuthorizeURL,
				TokenURL:  cfg.GitHub.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: scopes,
		},
		callbackURL:            cfg.GitHub.CallbackURL,
		allowList:              NewAllowList(cfg.Redirect.AllowedHosts),
		nonce:                  nonce.Source{},
		identity:               identity,
		revoker:                revoker,
		httpClient:             httpClient,
		sessionCookieTemplate:  cookies.Session,
		stateCookieTemplate:    cookies.State,
		redirectCookieTemplate: cookies.Redirect,
	}, nil
}

type LoginResult struct {
	AuthURL string
	Cookies []*http.Cookie
}

// Initiate starts a login. The returned cookies carry the nonce and the
// post-login target until the callback.
func (m *Manager) Initiate(ctx context.Context, redirect, callbackOverride string) LoginResult {
	state := m.nonce.State()
	target := decodeRedirect(redirect)

	authURL := m.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("redirect_uri", m.redirectURI(ctx, callbackOverride)))

	slogctx.Debug(ctx, "Starting login", "redirect", target)

	return LoginResult{
		AuthURL: authURL,
		Cookies: []*http.Cookie{
			m.stateCookieTemplate.ToCookie(state),
			m.redirectCookieTemplate.ToCookie(url.QueryEscape(target)),
		},
	}
}

func (m *Manager) redirectURI(ctx context.Context, override string) string {
	if override == "" {
		return m.callbackURL
	}

	u, err := url.Parse(override)
	if err == nil && (u.Scheme == "https" || u.Scheme == "http") && m.allowList.Allows(u.Hostname()) {
		return override
	}

	slogctx.Warn(ctx, "Ignoring callback URL override on a host that is not allowed", "callbackURL", override)
	return m.callbackURL
}

func decodeRedirect(raw string) string {
	if raw == "" {
		return "/"
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

type CallbackRequest struct {
	Code          string
	State         string
	ProviderError string

	// StateCookie and RedirectCookie are the raw values of the pending
	// cookies, empty when absent.
	StateCookie    string
	RedirectCookie string
}

// CallbackResult carries the cookies to set for every outcome and the
// redirect location on success.
type CallbackResult struct {
	Location string
	Cookies  []*http.Cookie
}

// Complete finishes a login. The pending cookies are cleared whatever the
// outcome.
func (m *Manager) Complete(ctx context.Context, req CallbackRequest) (CallbackResult, error) {
	res := CallbackResult{
		Cookies: []*http.Cookie{
			m.stateCookieTemplate.ToExpiredCookie(),
			m.redirectCookieTemplate.ToExpiredCookie(),
		},
	}

	target := m.allowList.Normalize(m.storedRedirect(req.RedirectCookie))

	if req.ProviderError != "" {
		slogctx.Info(ctx, "Authorization was not granted", "providerError", req.ProviderError)
		res.Location = withQueryParam(target, "error", "access_denied")
		return res, nil
	}

	if req.State == "" || req.StateCookie == "" ||
		subtle.ConstantTimeCompare([]byte(req.State), []byte(req.StateCookie)) != 1 {
		slogctx.Warn(ctx, "OAuth state does not match the pending login")
		return res, serviceerr.ErrStateMismatch
	}

	if req.Code == "" {
		return res, serviceerr.ErrInvalidRequest.WithDescription("Missing authorization code.")
	}

	token, err := m.exchangeCode(ctx, req.Code)
	if err != nil {
		return res, err
	}

	slogctx.Info(ctx, "Exchanged the auth code for an access token")

	res.Cookies = append(res.Cookies, m.makeSessionCookie(ctx, token))
	res.Location = target

	return res, nil
}

func (m *Manager) storedRedirect(raw string) string {
	if raw == "" {
		return "/"
	}
	target, err := url.QueryUnescape(raw)
	if err != nil {
		return "/"
	}
	return target
}

func (m *Manager) exchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	token, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		slogctx.Error(ctx, "Failed to exchange the auth code", "error", err)
		return "", exchangeError(err)
	}

	return token.AccessToken, nil
}

// exchangeError maps a failed exchange to a client error unless GitHub
// could not be reached or failed itself.
func exchangeError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %w", serviceerr.ErrUpstreamFailure, err)
		}

		description := retrieveErr.ErrorDescription
		if description == "" {
			description = retrieveErr.ErrorCode
		}
		if description == "" {
			description = "Failed to obtain access token."
		}
		return fmt.Errorf("%w: %w", serviceerr.ErrInvalidRequest.WithDescription(description), err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", serviceerr.ErrUpstreamFailure, err)
	}

	return fmt.Errorf("%w: %w", serviceerr.ErrInvalidRequest.WithDescription("Failed to obtain access token."), err)
}

func (m *Manager) makeSessionCookie(ctx context.Context, token string) *http.Cookie {
	sessionCookie := m.sessionCookieTemplate.ToCookie(token)

	if !sessionCookie.Secure {
		slogctx.Warn(ctx, "Session cookie is not marked as Secure; this is not recommended in production environments")
	}

	return sessionCookie
}

// ExpiredSessionCookie clears the session cookie.
func (m *Manager) ExpiredSessionCookie() *http.Cookie {
	return m.sessionCookieTemplate.ToExpiredCookie()
}

// ReadCookie returns the raw session cookie value, empty when absent.
func (m *Manager) ReadCookie(r *http.Request) string {
	c, err := r.Cookie(m.sessionCookieTemplate.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

// PendingLogin returns the raw values of the state and redirect cookies.
func (m *Manager) PendingLogin(r *http.Request) (state, redirect string) {
	if c, err := r.Cookie(m.stateCookieTemplate.Name); err == nil {
		state = c.Value
	}
	if c, err := r.Cookie(m.redirectCookieTemplate.Name); err == nil {
		redirect = c.Value
	}
	return state, redirect
}

// SessionToken returns the caller's access token, or "" when the request
// carries no usable session. revoked is set when the cookie holds a token on
// the denylist and should be cleared.
func (m *Manager) SessionToken(r *http.Request) (token string, revoked bool) {
	token = m.ReadCookie(r)
	if token == "" {
		return "", false
	}
	if m.isRevoked(r.Context(), token) {
		slogctx.Info(r.Context(), "Session token has been revoked")
		return "", true
	}
	return token, false
}

func (m *Manager) isRevoked(ctx context.Context, token string) bool {
	revoked, err := m.revoker.IsRevoked(ctx, token)
	if err != nil {
		slogctx.Warn(ctx, "Failed to check the revocation list", "error", err)
		return false
	}
	return revoked
}

// Identity is the answer to "who am I".
type Identity struct {
	IsLoggedIn bool          `json:"isLoggedIn"`
	User       *github.Actor `json:"user,omitempty"`
	Code       string        `json:"code,omitempty"`
}

// SessionExpired reports whether the session cookie must be cleared.
func (i Identity) SessionExpired() bool {
	return i.Code == string(serviceerr.CodeSessionExpired)
}

var expiredIdentity = Identity{Code: string(serviceerr.CodeSessionExpired)}

// WhoAmI resolves the user behind token. An empty token is anonymous and
// causes no remote call.
func (m *Manager) WhoAmI(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, nil
	}

	if m.isRevoked(ctx, token) {
		slogctx.Info(ctx, "Session token has been revoked")
		return expiredIdentity, nil
	}

	viewer, err := m.identity.Viewer(ctx, token)
	if err != nil {
		var statusErr *github.StatusError
		if errors.As(err, &statusErr) {
			slogctx.Info(ctx, "GitHub rejected the session token", "status", statusErr.StatusCode)
			return expiredIdentity, nil
		}
		slogctx.Error(ctx, "Failed to query the viewer", "error", err)
		return Identity{}, fmt.Errorf("%w: %w", serviceerr.ErrUpstreamFailure, err)
	}

	if viewer == nil {
		return Identity{}, nil
	}

	return Identity{IsLoggedIn: true, User: viewer}, nil
}

// Logout revokes token when a denylist is configured and returns the
// cookies that end the session. It never fails.
func (m *Manager) Logout(ctx context.Context, token string) []*http.Cookie {
	if token != "" {
		ttl := time.Duration(m.sessionCookieTemplate.MaxAge) * time.Second
		if err := m.revoker.Revoke(ctx, token, ttl); err != nil {
			slogctx.Error(ctx, "Failed to revoke the session token", "error", err)
		}
	}

	return []*http.Cookie{
		m.sessionCookieTemplate.ToExpiredCookie(),
		m.stateCookieTemplate.ToExpiredCookie(),
		m.redirectCookieTemplate.ToExpiredCookie(),
	}
}
