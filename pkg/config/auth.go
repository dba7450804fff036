package config

import (
	"fmt"
	"net/url"

	"github.com/batrachia/libfetch/pkg/auth"
)

// AuthConfig holds the credentials presented to the release host.
type AuthConfig struct {
	// Type is one of none, basic, header or bearer.
	Type string `yaml:"type"`
	// TokenEnv names the environment variable read for bearer tokens.
	TokenEnv string            `yaml:"token_env,omitempty"`
	Username string            `yaml:"username,omitempty"`
	Password string            `yaml:"password,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	// Host restricts credentials to one host. Defaults to the host of release.base_url.
	Host string `yaml:"host,omitempty"`
}

// Validate checks the auth type and its required fields.
func (a AuthConfig) Validate() error {
	switch auth.Type(a.Type) {
	case "", auth.NoneType, auth.BearerAuthType:
	case auth.BasicAuthType:
		if a.Username == "" {
			return fmt.Errorf("auth.username is required for basic auth")
		}
	case auth.HeaderAuthType:
		if len(a.Headers) == 0 {
			return fmt.Errorf("auth.headers is required for header auth")
		}
	default:
		return fmt.Errorf("invalid auth.type %q, must be one of: none, basic, header, bearer", a.Type)
	}
	return nil
}

// Spec converts the configuration to an auth.Spec, reading the bearer token via lookup.
func (a AuthConfig) Spec(lookup func(string) (string, bool)) auth.Spec {
	spec := auth.Spec{
		Type:     auth.Type(a.Type),
		Username: a.Username,
		Password: a.Password,
		Headers:  a.Headers,
	}
	if spec.Type == auth.BearerAuthType && a.TokenEnv != "" && lookup != nil {
		spec.Token, _ = lookup(a.TokenEnv)
	}
	return spec
}

// ToAuthenticator builds the authenticator for requests to the release host.
// It returns nil when no credentials are configured or the bearer token is unset.
func (c *Config) ToAuthenticator(lookup func(string) (string, bool)) (auth.Authenticator, error) {
	spec := c.Auth.Spec(lookup)
	if spec.Type == auth.BearerAuthType && spec.Token == "" {
		return nil, nil
	}
	inner, err := auth.New(spec)
	if err != nil || inner == nil {
		return nil, err
	}

	host := c.Auth.Host
	if host == "" && c.Release.BaseURL != "" {
		if u, err := url.Parse(c.Release.BaseURL); err == nil {
			host = u.Hostname()
		}
	}
	return auth.Scoped{Host: host, Inner: inner}, nil
}
