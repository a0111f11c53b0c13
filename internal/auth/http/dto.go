package http

import (
	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
)

const (
	statusTwoFactorRequired = "2FA_REQUIRED"
	statusAwaitingEmail     = "AWAITING_EMAIL"
)

func toPrincipal(u domain.User) authsdk.Principal {
	flags := u.FeatureFlags
	if flags == nil {
		flags = map[string]bool{}
	}
	return authsdk.Principal{
		ID:           u.ID,
		Email:        u.Email,
		Role:         string(u.Role),
		Status:       string(u.Status),
		Permissions:  []string(domain.ResolvePermissions(u)),
		FeatureFlags: flags,
		HasPassword:  u.HasPassword(),
		CreatedAt:    u.CreatedAt,
	}
}

func toUserResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{ID: u.ID, Email: u.Email, Status: string(u.Status)}
}

func toLoginResponse(a domain.Authenticated) authsdk.LoginResponse {
	return authsdk.LoginResponse{
		Token:     a.Token,
		ExpiresAt: a.Session.ExpiresAt,
		User:      toPrincipal(a.User),
	}
}

func toChallenge(s domain.AwaitingSecondFactor) authsdk.TwoFactorChallenge {
	return authsdk.TwoFactorChallenge{
		Status:    statusTwoFactorRequired,
		Ticket:    s.Ticket,
		Methods:   authsdk.TwoFactorMethods{TOTP: s.Methods.TOTP, Recovery: s.Methods.Recovery},
		ExpiresAt: s.ExpiresAt,
	}
}

func toEmailRequired(s domain.AwaitingEmail) authsdk.OAuthEmailRequired {
	return authsdk.OAuthEmailRequired{
		Status:    statusAwaitingEmail,
		Ticket:    s.Ticket,
		Provider:  s.Provider,
		ExpiresAt: s.ExpiresAt,
	}
}

func toSessionInfo(s domain.Session) authsdk.SessionInfo {
	return authsdk.SessionInfo{
		ID:          s.ID,
		DeviceLabel: s.DeviceLabel,
		UserAgent:   s.UserAgent,
		IP:          s.IP,
		CreatedAt:   s.CreatedAt,
		LastSeenAt:  s.LastSeenAt,
		ExpiresAt:   s.ExpiresAt,
		RevokedAt:   s.RevokedAt,
		IsCurrent:   s.IsCurrent,
	}
}

func toSessionInfos(in []domain.Session) []authsdk.SessionInfo {
	out := make([]authsdk.SessionInfo, 0, len(in))
	for _, s := range in {
		out = append(out, toSessionInfo(s))
	}
	return out
}

func toAdminView(v service.UserSessionsView) authsdk.AdminSessionsView {
	flags := v.User.FeatureFlags
	if flags == nil {
		flags = map[string]bool{}
	}
	activity := make([]authsdk.Activity, 0, len(v.Activity))
	for _, a := range v.Activity {
		activity = append(activity, authsdk.Activity{
			ID:        a.ID,
			ActorID:   a.ActorID,
			SubjectID: a.SubjectID,
			Action:    a.Action,
			IP:        a.IP,
			UserAgent: a.UserAgent,
			Metadata:  a.Metadata,
			CreatedAt: a.CreatedAt,
		})
	}
	return authsdk.AdminSessionsView{
		User: authsdk.AdminUser{
			ID:           v.User.ID,
			Email:        v.User.Email,
			Role:         string(v.User.Role),
			Status:       string(v.User.Status),
			Permissions:  []string(domain.ResolvePermissions(v.User)),
			FeatureFlags: flags,
			Deleted:      v.User.IsDeleted(),
		},
		Sessions: toSessionInfos(v.Sessions),
		Activity: activity,
		Degraded: v.Degraded,
	}
}

func toTwoFactorStatus(s domain.TwoFactorStatus) authsdk.TwoFactorStatus {
	return authsdk.TwoFactorStatus{
		Enabled:                s.Enabled,
		Pending:                s.Pending,
		EnabledAt:              s.EnabledAt,
		RemainingRecoveryCodes: s.RemainingRecoveryCodes,
	}
}
