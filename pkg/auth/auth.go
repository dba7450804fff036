// Package auth applies credentials to release download requests.
//
//go:generate mockgen -destination=./mocks/auth.go . Authenticator
package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// Authenticator defines the interface for applying authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// BasicAuth represents HTTP Basic Authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// HeaderAuth represents authentication via custom HTTP headers.
type HeaderAuth struct {
	Headers map[string]string
}

// BearerAuth represents Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Scoped applies the wrapped Authenticator only to requests for Host.
// Release hosts commonly redirect asset downloads to a CDN, and the token
// must not follow the redirect.
type Scoped struct {
	Host  string
	Inner Authenticator
}

// Type represents the type of authentication.
type Type string

// Authentication types.
const (
	NoneType       Type = "none"
	BasicAuthType  Type = "basic"
	HeaderAuthType Type = "header"
	BearerAuthType Type = "bearer"
)

// Apply adds Basic Authentication headers to the HTTP request.
func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// Type returns BasicAuthType.
func (b BasicAuth) Type() Type { return BasicAuthType }

// Apply adds custom headers to the HTTP request.
func (h HeaderAuth) Apply(req *http.Request) error {
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

// Type returns HeaderAuthType.
func (h HeaderAuth) Type() Type { return HeaderAuthType }

// Apply adds a Bearer token to the Authorization header of the HTTP request.
func (b BearerAuth) Apply(req *http.Request) error {
	if b.Token == "" {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Type returns BearerAuthType.
func (b BearerAuth) Type() Type { return BearerAuthType }

// Apply delegates to Inner when the request targets Host.
func (s Scoped) Apply(req *http.Request) error {
	if s.Inner == nil || req.URL == nil {
		return nil
	}
	if s.Host != "" && !strings.EqualFold(req.URL.Hostname(), s.Host) {
		return nil
	}
	return s.Inner.Apply(req)
}

// Type returns the wrapped authenticator's type.
func (s Scoped) Type() Type {
	if s.Inner == nil {
		return NoneType
	}
	return s.Inner.Type()
}

// Spec is the declarative form of an Authenticator, as found in config files.
type Spec struct {
	Type     Type
	Username string
	Password string
	Token    string
	Headers  map[string]string
}

// New builds an Authenticator from spec. It returns nil for NoneType or an empty type.
func New(spec Spec) (Authenticator, error) {
	switch spec.Type {
	case "", NoneType:
		return nil, nil
	case BasicAuthType:
		return BasicAuth{Username: spec.Username, Password: spec.Password}, nil
	case HeaderAuthType:
		return HeaderAuth{Headers: spec.Headers}, nil
	case BearerAuthType:
		return BearerAuth{Token: spec.Token}, nil
	default:
		return nil, fmt.Errorf("unsupported auth type %q", spec.Type)
	}
}
