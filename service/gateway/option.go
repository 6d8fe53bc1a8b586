package gateway

import (
	"net/http"
	"time"

	"github.com/viant/scy/cred"
	"go.uber.org/zap"
)

// Option customises a Client.
type Option func(*Client)

// WithBasicAuth attaches basic credentials to poll and report calls.
func WithBasicAuth(basic *cred.Basic) Option {
	return func(c *Client) {
		c.basic = basic
	}
}

// WithRegistration sets the capability registration endpoint and its token.
func WithRegistration(URL, token string) Option {
	return func(c *Client) {
		c.registrationURL = URL
		c.registrationToken = token
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}
