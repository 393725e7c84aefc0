package config

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	SessionCookieName  = "github_token"
	StateCookieName    = "github_oauth_state"
	RedirectCookieName = "redirect_after_login"

	SessionCookieMaxAge = 60 * 60 * 24 * 30
	PendingCookieMaxAge = 60 * 10
)

type CookieSameSite string

const (
	CookieSameSiteNone   CookieSameSite = "None"
	CookieSameSiteLax    CookieSameSite = "Lax"
	CookieSameSiteStrict CookieSameSite = "Strict"
)

type CookieTemplate struct {
	Name     string         `yaml:"name"`
	MaxAge   int            `yaml:"maxAge"`
	Path     string         `yaml:"path"`
	Domain   string         `yaml:"domain"`
	Secure   bool           `yaml:"secure" default:"true"`
	HTTPOnly bool           `yaml:"httpOnly" default:"true"`
	SameSite CookieSameSite `yaml:"sameSite"`
}

func (ct *CookieTemplate) ToCookie(value string) *http.Cookie {
	var sameSite http.SameSite
	switch ct.SameSite {
	case CookieSameSiteNone:
		sameSite = http.SameSiteNoneMode
	case CookieSameSiteLax:
		sameSite = http.SameSiteLaxMode
	case CookieSameSiteStrict:
		sameSite = http.SameSiteStrictMode
	}

	return &http.Cookie{
		Name:     ct.Name,
		Value:    value,
		MaxAge:   ct.MaxAge,
		Path:     ct.Path,
		Domain:   ct.Domain,
		Secure:   ct.Secure,
		HttpOnly: ct.HTTPOnly,
		SameSite: sameSite,
	}
}

// ToExpiredCookie returns a cookie that makes the browser drop the cookie
// described by the template. Attributes must match the ones it was set with.
func (ct *CookieTemplate) ToExpiredCookie() *http.Cookie {
	c := ct.ToCookie("")
	c.MaxAge = -1
	return c
}

func (ct *CookieTemplate) validate() error {
	if ct.Name == "" {
		return errors.New("cookie name is empty")
	}
	if !ct.HTTPOnly {
		return fmt.Errorf("cookie %s: must be HttpOnly", ct.Name)
	}
	switch ct.SameSite {
	case CookieSameSiteLax, CookieSameSiteStrict:
	case CookieSameSiteNone:
		if !ct.Secure {
			return fmt.Errorf("cookie %s: SameSite=None requires Secure", ct.Name)
		}
	default:
		return fmt.Errorf("cookie %s: unknown SameSite value %q", ct.Name, ct.SameSite)
	}
	return nil
}

func (ct CookieTemplate) withDefaults(name string, maxAge int) CookieTemplate {
	if ct.Name == "" {
		ct.Name = name
	}
	if ct.MaxAge == 0 {
		ct.MaxAge = maxAge
	}
	if ct.Path == "" {
		ct.Path = "/"
	}
	if ct.SameSite == "" {
		ct.SameSite = CookieSameSiteLax
	}
	return ct
}

// WithDefaults fills the cookie names, lifetimes, path and SameSite policy
// that were not configured explicitly.
func (c Cookies) WithDefaults() Cookies {
	c.Session = c.Session.withDefaults(SessionCookieName, SessionCookieMaxAge)
	c.State = c.State.withDefaults(StateCookieName, PendingCookieMaxAge)
	c.Redirect = c.Redirect.withDefaults(RedirectCookieName, PendingCookieMaxAge)
	return c
}

func (c Cookies) Validate() error {
	for _, ct := range []CookieTemplate{c.Session, c.State, c.Redirect} {
		if err := ct.validate(); err != nil {
			return err
		}
	}
	return nil
}
