package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the Gatekeeper authentication service.
// It provides access to unauthenticated operations and creates authenticated
// Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSessionFromToken wraps an existing session token, e.g. one read back
// from storage.
func (c *SDKClient) NewSessionFromToken(token string) *Session {
	return newSession(c, token)
}
