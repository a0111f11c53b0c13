package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// Actor is whoever is making the request. Permissions is the resolved set
// of the actor, never the target.
type Actor struct {
	UserID      string
	SessionID   string
	Permissions domain.PermissionSet
	Device      domain.DeviceInfo
}

func newActivity(action, actorID, subjectID string, device domain.DeviceInfo, meta map[string]string) domain.Activity {
	now := time.Now().UTC()
	return domain.Activity{
		ID:        idx.NewAt(now).String(),
		ActorID:   actorID,
		SubjectID: subjectID,
		Action:    action,
		IP:        device.IP,
		UserAgent: device.UserAgent,
		Metadata:  meta,
		CreatedAt: now,
	}
}

// record writes an activity row as part of st, which is usually a Tx.
func record(ctx context.Context, st store.Store, action, actorID, subjectID string, device domain.DeviceInfo, meta map[string]string) error {
	return st.Activity().Record(ctx, newActivity(action, actorID, subjectID, device, meta))
}

// recordBestEffort is for events that happen after the real work has
// already committed, or that have nothing else to commit (failed logins).
func recordBestEffort(ctx context.Context, st store.Store, action, actorID, subjectID string, device domain.DeviceInfo, meta map[string]string) {
	if err := record(ctx, st, action, actorID, subjectID, device, meta); err != nil {
		slogx.FromContext(ctx).Error("failed to record activity",
			slog.String("action", action),
			slog.String("subject_id", subjectID),
			slog.Any("error", err),
		)
	}
}
