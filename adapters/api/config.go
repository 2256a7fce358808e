package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"claimsportal/internal"
	"claimsportal/internal/errors"
	"claimsportal/ports"
)

// Options configures a Client
type Options struct {
	// BaseURL of the claims backend, without trailing slash
	BaseURL string
	// Timeout applies per request; zero disables it
	Timeout time.Duration
	// HTTPClient overrides the transport; Timeout is ignored when set
	HTTPClient *http.Client
	// Tokens supplies the bearer token; nil sends no Authorization header
	Tokens ports.TokenSource
	Logger *internal.Logger
}

// Validate checks if the options are usable
func (o *Options) Validate() error {
	if strings.TrimSpace(o.BaseURL) == "" {
		return errors.ConfigInvalid("backend base URL is required")
	}
	u, err := url.Parse(o.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid("backend base URL must be absolute: " + o.BaseURL)
	}
	if o.Timeout < 0 {
		return errors.ConfigInvalid("timeout cannot be negative")
	}
	return nil
}

type staticToken string

func (t staticToken) Token() string { return string(t) }

// StaticToken wraps a fixed token, used by the CLI when a token is passed explicitly
func StaticToken(token string) ports.TokenSource { return staticToken(token) }
