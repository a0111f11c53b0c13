package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const statusTwoFactorRequired = "2FA_REQUIRED"

// Login signs in with email and password. When the account has a second
// factor the Session is nil and the challenge must be completed with
// CompleteTwoFactor.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, *TwoFactorChallenge, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, nil, err
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, nil, err
	}

	var probe struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if probe.Status == statusTwoFactorRequired {
		var ch TwoFactorChallenge
		if err := json.Unmarshal(body, &ch); err != nil {
			return nil, nil, fmt.Errorf("failed to decode challenge: %w", err)
		}
		return nil, &ch, nil
	}

	var env Envelope[LoginResponse]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return newSession(c, env.Data.Token), nil, nil
}

// CompleteTwoFactor redeems a ticket with a TOTP ("totp") or recovery
// ("recovery") code.
func (c *SDKClient) CompleteTwoFactor(ctx context.Context, ticket, mode, code string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login/2fa", "",
		TwoFactorRequest{Ticket: ticket, Mode: mode, Code: code})
	if err != nil {
		return nil, err
	}

	data, err := decodeData[LoginResponse](resp)
	if err != nil {
		return nil, err
	}
	return newSession(c, data.Token), nil
}

// Register creates a pending account; the activation link goes out by email.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/register", "", req)
	if err != nil {
		return nil, err
	}

	user, err := decodeData[UserResponse](resp)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Activate redeems an activation token.
func (c *SDKClient) Activate(ctx context.Context, token string) (*UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/activate?token="+url.QueryEscape(token), "", nil)
	if err != nil {
		return nil, err
	}

	user, err := decodeData[UserResponse](resp)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ForgotPassword always succeeds unless the request itself fails.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/forgot-password", "", EmailRequest{Email: email})
	if err != nil {
		return err
	}
	return checkOK(resp)
}

// ResetPassword spends a reset token. Every session of the account ends.
func (c *SDKClient) ResetPassword(ctx context.Context, token, password string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/reset-password", "",
		ResetPasswordRequest{Token: token, Password: password})
	if err != nil {
		return err
	}
	return checkOK(resp)
}
