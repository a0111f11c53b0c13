package domain

import "time"

// Second factor methods offered on a ticket.
const (
	MethodTOTP     = "totp"
	MethodRecovery = "recovery"
)

// TwoFactor is the single per-user second-factor record. It exists in a
// pending shape (secret stored, Enabled false) between setup and confirm.
type TwoFactor struct {
	UserID       string
	SecretEnc    []byte // AES-GCM sealed base32 secret
	Enabled      bool
	ConfirmedAt  *time.Time
	EnabledAt    *time.Time
	LastUsedStep int64 // highest TOTP time step accepted; replays at or below it fail
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RecoveryCode struct {
	ID        string
	UserID    string
	CodeHash  string // argon2id PHC string
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}

// TwoFactorTicket is the server side half of "password verified, second
// factor pending". The client holds a signed JWT whose jti is ID.
type TwoFactorTicket struct {
	ID         string
	UserID     string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// TwoFactorSetup is handed to the user once, at setup start.
type TwoFactorSetup struct {
	Secret  string `json:"secret"`
	URI     string `json:"otpauthUri"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

type TwoFactorStatus struct {
	Enabled                bool       `json:"enabled"`
	Pending                bool       `json:"pending"`
	EnabledAt              *time.Time `json:"enabledAt,omitempty"`
	RemainingRecoveryCodes int        `json:"remainingRecoveryCodes"`
}
