// Package backend resolves which remote scanning endpoint the client talks
// to. The selection happens once at startup from static configuration plus an
// optional runtime override URL; the resolved endpoint is immutable and holds
// no mutable state.
package backend

import (
	"fmt"
	"strings"

	"github.com/puremark/puremark-go/internal/config"
	"github.com/puremark/puremark-go/internal/constants"
)

// AuthMode describes how outbound calls to an endpoint authenticate.
type AuthMode string

const (
	// AuthNone sends no credentials (local development endpoints).
	AuthNone AuthMode = "none"

	// AuthBearer sends a bearer credential: the active session token when
	// present, otherwise the configured anonymous/public key.
	AuthBearer AuthMode = "bearer"
)

// Endpoint is the resolved outcome of backend selection: one base URL and
// one auth strategy used for every outbound call in the session.
type Endpoint struct {
	// Name is the logical backend this endpoint resolved from.
	Name string

	// BaseURL is the effective base URL, without a trailing slash.
	BaseURL string

	// Auth is the effective auth-header strategy.
	Auth AuthMode

	// anonKey is the fallback bearer credential for anonymous calls.
	anonKey string
}

// Resolve picks the effective endpoint from the backend configuration.
// Precedence: explicit override URL > statically configured URL for the
// selected backend.
func Resolve(cfg *config.BackendSettings) (*Endpoint, error) {
	baseURL := cfg.OverrideURL
	if baseURL == "" {
		baseURL = cfg.URLFor(cfg.Mode)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("no URL available for backend %s", cfg.Mode)
	}

	auth := AuthBearer
	if cfg.Mode == constants.BackendLocalDev {
		auth = AuthNone
	}

	return &Endpoint{
		Name:    cfg.Mode,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Auth:    auth,
		anonKey: cfg.AnonKey,
	}, nil
}

// URL joins a path onto the endpoint's base URL.
func (e *Endpoint) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return e.BaseURL + path
}

// BearerToken returns the credential to attach to a request: the session
// token when one is active, else the anonymous key. Empty when the endpoint
// requires no authentication or no credential is available.
func (e *Endpoint) BearerToken(sessionToken string) string {
	if e.Auth != AuthBearer {
		return ""
	}
	if sessionToken != "" {
		return sessionToken
	}
	return e.anonKey
}
