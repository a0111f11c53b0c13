package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// BootstrapTokenHeader carries the one-time bootstrap token.
const BootstrapTokenHeader = "X-Bootstrap-Token"

// Bootstrap creates the founder account on a fresh deployment. It only
// works while the service has no users.
func (c *SDKClient) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*UserResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/auth/bootstrap"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(BootstrapTokenHeader, token)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	user, err := decodeData[UserResponse](resp)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
