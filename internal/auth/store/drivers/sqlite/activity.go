package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

type activityRepo struct {
	db dbtx
}

func (r *activityRepo) Record(ctx context.Context, a domain.Activity) error {
	meta := "{}"
	if len(a.Metadata) > 0 {
		b, err := json.Marshal(a.Metadata)
		if err != nil {
			return err
		}
		meta = string(b)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, actor_id, subject_id, action, ip, user_agent, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, nullString(a.ActorID), nullString(a.SubjectID), a.Action, a.IP, a.UserAgent, meta, ms(a.CreatedAt),
	)
	return mapInsertErr(err)
}

func (r *activityRepo) ListForSubject(ctx context.Context, subjectID string, limit int) ([]domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, actor_id, subject_id, action, ip, user_agent, metadata, created_at
		FROM activity_log WHERE subject_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, subjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Activity{}
	for rows.Next() {
		var (
			a         domain.Activity
			actor     sql.NullString
			subject   sql.NullString
			meta      string
			createdAt int64
		)
		if err := rows.Scan(&a.ID, &actor, &subject, &a.Action, &a.IP, &a.UserAgent, &meta, &createdAt); err != nil {
			return nil, err
		}
		a.ActorID = actor.String
		a.SubjectID = subject.String
		a.CreatedAt = fromMs(createdAt)
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &a.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
