package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bbmitchh/Logmypour2/internal/model"
)

// SessionRepo persists login sessions. A session is valid while it is
// neither revoked nor past its expiry.
type SessionRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db, now: time.Now}
}

// Create inserts a new live session row.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, expires_at) VALUES (?,?,?)",
		s.ID, s.UserID, s.ExpiresAt)
	return err
}

// Validate returns the owner of a live session, or ErrNotFound when the
// session is unknown, revoked or expired.
func (r *SessionRepo) Validate(ctx context.Context, id string) (uint64, error) {
	var (
		userID    uint64
		expiresAt int64
		revokedAt sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM sessions WHERE id=? LIMIT 1",
		id).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if revokedAt.Valid || r.now().Unix() >= expiresAt {
		return 0, ErrNotFound
	}
	return userID, nil
}

// Revoke marks a session as ended. Revoking an unknown or already revoked
// session is not an error.
func (r *SessionRepo) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=? WHERE id=? AND revoked_at IS NULL",
		r.now().Unix(), id)
	return err
}
