package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindcare-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

// Create starts a fresh session, owned by userID when it is set.
func (r *SessionRepo) Create(ctx context.Context, userID *uuid.UUID) (*models.ChatSession, error) {
	s := &models.ChatSession{ID: uuid.New(), UserID: userID}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_sessions (id, user_id)
		VALUES ($1, $2)
		RETURNING created_at, last_active_at
	`, s.ID, userID).Scan(&s.CreatedAt, &s.LastActiveAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Ensure makes sure a session with the given id exists and touches it.
// An unowned session is claimed by userID; an owned one keeps its owner.
func (r *SessionRepo) Ensure(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*models.ChatSession, error) {
	s := &models.ChatSession{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_sessions (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET last_active_at = NOW(),
			user_id = COALESCE(chat_sessions.user_id, EXCLUDED.user_id)
		RETURNING id, user_id, created_at, last_active_at
	`, id, userID).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.LastActiveAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	s := &models.ChatSession{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, created_at, last_active_at
		FROM chat_sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.LastActiveAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListIDsByUser returns the user's session ids, most recently active first.
func (r *SessionRepo) ListIDsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM chat_sessions
		WHERE user_id = $1
		ORDER BY last_active_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id.String())
	}
	return ids, rows.Err()
}

// DeleteIdleAnonymous removes unowned sessions (and their logs) untouched
// since the cutoff.
func (r *SessionRepo) DeleteIdleAnonymous(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM chat_sessions
		WHERE user_id IS NULL AND last_active_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
