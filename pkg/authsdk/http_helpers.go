package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an HTTP request with the SDKClient's HTTP client. token
// is sent as a bearer credential when non-empty.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path, token string,
	body any,
) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// readBody reads and closes the body, returning an *APIError for any
// non-2xx status.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := parseErrorResponse(resp, body); err != nil {
		return nil, err
	}
	return body, nil
}

// decodeData unwraps the data field of a success envelope.
func decodeData[T any](resp *http.Response) (T, error) {
	var env Envelope[T]

	body, err := readBody(resp)
	if err != nil {
		return env.Data, err
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env.Data, fmt.Errorf("failed to decode response: %w", err)
	}
	return env.Data, nil
}

// checkOK drains a response that carries no data worth keeping.
func checkOK(resp *http.Response) error {
	_, err := readBody(resp)
	return err
}
