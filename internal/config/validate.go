package config

import (
	"errors"
	"fmt"
	"net/url"

	githuboauth "golang.org/x/oauth2/github"
)

const DefaultGraphQLURL = "https://api.github.com/graphql"

// ResolveSecrets loads the client secret and the optional fallback token
// from their source references.
func (c *Config) ResolveSecrets() error {
	secret, err := loadOptional(c.GitHub.ClientSecret)
	if err != nil {
		return fmt.Errorf("loading github client secret: %w", err)
	}
	c.GitHub.ClientSecretParsed = secret

	token, err := loadOptional(c.GitHub.FallbackToken)
	if err != nil {
		return fmt.Errorf("loading github fallback token: %w", err)
	}
	c.GitHub.FallbackTokenParsed = token

	return nil
}

// Validate checks the configuration once at start-up. A gateway that
// cannot complete a login must not start.
func (c *Config) Validate() error {
	if err := c.GitHub.Validate(); err != nil {
		return err
	}

	c.Cookies = c.Cookies.WithDefaults()
	if err := c.Cookies.Validate(); err != nil {
		return fmt.Errorf("invalid cookie configuration: %w", err)
	}

	switch c.Revocation.Backend {
	case "", RevocationBackendNone, RevocationBackendMemory:
	case RevocationBackendValKey:
		if c.ValKey.Host.Source == "" {
			return errors.New("revocation backend valkey requires valkey.host")
		}
	default:
		return fmt.Errorf("unknown revocation backend %q", c.Revocation.Backend)
	}

	return nil
}

// Validate fills unset endpoints with the github.com ones and checks the
// OAuth registration.
func (g *GitHub) Validate() error {
	if g.AuthorizeURL == "" {
		g.AuthorizeURL = githuboauth.Endpoint.AuthURL
	}
	if g.TokenURL == "" {
		g.TokenURL = githuboauth.Endpoint.TokenURL
	}
	if g.GraphQLURL == "" {
		g.GraphQLURL = DefaultGraphQLURL
	}

	if g.ClientID == "" {
		return errors.New("github.clientID is not configured")
	}
	if g.ClientSecretParsed == "" {
		return errors.New("github.clientSecret is not configured")
	}

	for name, raw := range map[string]string{
		"callbackURL":  g.CallbackURL,
		"authorizeURL": g.AuthorizeURL,
		"tokenURL":     g.TokenURL,
		"graphqlURL":   g.GraphQLURL,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("github.%s: %w", name, err)
		}
		if !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("github.%s must be an absolute URL", name)
		}
	}

	return nil
}
