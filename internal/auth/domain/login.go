package domain

import "time"

// LoginResult is the state a login attempt ends up in. Exactly one of the
// variants below; failures are errors, not results.
type LoginResult interface {
	loginResult()
}

// Authenticated carries a freshly created session. Token is the opaque
// session token and is only ever seen here.
type Authenticated struct {
	User    User
	Session Session
	Token   string
}

// AwaitingSecondFactor means the password checked out and a ticket was
// minted for the second step.
type AwaitingSecondFactor struct {
	Ticket    string
	Methods   TwoFactorMethods
	ExpiresAt time.Time
}

// AwaitingEmail means a provider login arrived without a usable email.
type AwaitingEmail struct {
	Ticket    string
	Provider  string
	ExpiresAt time.Time
}

type TwoFactorMethods struct {
	TOTP     bool `json:"totp"`
	Recovery bool `json:"recovery"`
}

// List returns the enabled methods in a stable order.
func (m TwoFactorMethods) List() []string {
	var out []string
	if m.TOTP {
		out = append(out, MethodTOTP)
	}
	if m.Recovery {
		out = append(out, MethodRecovery)
	}
	return out
}

func (Authenticated) loginResult()        {}
func (AwaitingSecondFactor) loginResult() {}
func (AwaitingEmail) loginResult()        {}
