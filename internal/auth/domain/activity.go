package domain

import "time"

// Activity actions.
const (
	ActionLoginSuccess         = "LOGIN_SUCCESS"
	ActionLoginSuccess2FA      = "LOGIN_SUCCESS_2FA"
	ActionLoginFailed          = "LOGIN_FAILED"
	ActionLogout               = "LOGOUT"
	ActionRegistered           = "REGISTERED"
	ActionActivated            = "ACCOUNT_ACTIVATED"
	ActionPasswordReset        = "PASSWORD_RESET"
	ActionPasswordChanged      = "PASSWORD_CHANGED"
	ActionSessionRevoked       = "SESSION_REVOKED"
	ActionSessionsRevokedOther = "SESSIONS_REVOKED_OTHERS"
	ActionTwoFactorEnabled     = "TWO_FACTOR_ENABLED"
	ActionTwoFactorDisabled    = "TWO_FACTOR_DISABLED"
	ActionRecoveryRegenerated  = "RECOVERY_CODES_REGENERATED"
	ActionRecoveryCodeUsed     = "RECOVERY_CODE_USED"
	ActionOAuthLinked          = "OAUTH_LINKED"
	ActionAdminSessionRevoked  = "ADMIN_SESSION_REVOKED"
	ActionAdminSessionsRevoked = "ADMIN_SESSIONS_REVOKED"
	ActionAdminStatusChanged   = "ADMIN_STATUS_CHANGED"
	ActionAdminRoleChanged     = "ADMIN_ROLE_CHANGED"
	ActionAdminPermsChanged    = "ADMIN_PERMISSIONS_CHANGED"
	ActionAdminFlagChanged     = "ADMIN_FEATURE_FLAG_CHANGED"
	ActionAdminUserDeleted     = "ADMIN_USER_DELETED"
)

// Activity is one audit row. ActorID is who did it, SubjectID who it was done
// to; they differ for admin actions.
type Activity struct {
	ID        string            `json:"id"`
	ActorID   string            `json:"actorId,omitempty"`
	SubjectID string            `json:"subjectId,omitempty"`
	Action    string            `json:"action"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
