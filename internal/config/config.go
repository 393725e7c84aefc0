// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	HTTP       HTTPServer `yaml:"http"`
	GitHub     GitHub     `yaml:"github"`
	Discussion Discussion `yaml:"discussion"`
	CORS       CORS       `yaml:"cors"`
	Redirect   Redirect   `yaml:"redirect"`
	Cookies    Cookies    `yaml:"cookies"`
	Revocation Revocation `yaml:"revocation"`
	ValKey     ValKey     `yaml:"valkey"`
}

type HTTPServer struct {
	Address           string        `yaml:"address" default:":8080"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout" default:"10s"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

// GitHub holds the OAuth application registration and the API endpoints.
// The endpoints default to github.com and are only overridden for GitHub
// Enterprise installations and tests.
type GitHub struct {
	ClientID       string              `yaml:"clientID"`
	ClientSecret   commoncfg.SourceRef `yaml:"clientSecret"`
	CallbackURL    string              `yaml:"callbackURL"`
	Scopes         []string            `yaml:"scopes"`
	AuthorizeURL   string              `yaml:"authorizeURL" default:"https://github.com/login/oauth/authorize"`
	TokenURL       string              `yaml:"tokenURL" default:"https://github.com/login/oauth/access_token"`
	GraphQLURL     string              `yaml:"graphqlURL" default:"https://api.github.com/graphql"`
	RequestTimeout time.Duration       `yaml:"requestTimeout" default:"10s"`

	// FallbackToken is used for anonymous discussion reads.
	FallbackToken commoncfg.SourceRef `yaml:"fallbackToken"`

	ClientSecretParsed  string `yaml:"-"`
	FallbackTokenParsed string `yaml:"-"`
}

type Discussion struct {
	PublicCacheMaxAge time.Duration `yaml:"publicCacheMaxAge" default:"30s"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
	AllowedMethods []string `yaml:"allowedMethods"`
	AllowedHeaders []string `yaml:"allowedHeaders"`
}

// Redirect lists the hostnames a visitor may be sent back to after login.
type Redirect struct {
	AllowedHosts []string `yaml:"allowedHosts"`
}

type Cookies struct {
	Session  CookieTemplate `yaml:"session"`
	State    CookieTemplate `yaml:"state"`
	Redirect CookieTemplate `yaml:"redirect"`
}

type RevocationBackend string

const (
	RevocationBackendNone   RevocationBackend = "none"
	RevocationBackendMemory RevocationBackend = "memory"
	RevocationBackendValKey RevocationBackend = "valkey"
)

type Revocation struct {
	Backend RevocationBackend `yaml:"backend" default:"none"`
}

type ValKey struct {
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
	Prefix   string              `yaml:"prefix" default:"comment-gateway"`
}
