package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindcare-backend/internal/models"
)

type LogRepo struct {
	pool *pgxpool.Pool
}

func NewLogRepo(pool *pgxpool.Pool) *LogRepo {
	return &LogRepo{pool: pool}
}

func (r *LogRepo) Save(ctx context.Context, entry *models.ChatLog) error {
	query := `
		INSERT INTO chat_logs (session_id, role, content, provider, lang, sentiment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, ts`

	return r.pool.QueryRow(ctx, query,
		entry.SessionID, entry.Role, entry.Content, entry.Provider, entry.Lang, entry.Sentiment,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// History returns a session's turns in insertion order. A positive limit
// keeps only the most recent turns.
func (r *LogRepo) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT role, content FROM (
			SELECT id, role, content FROM chat_logs
			WHERE session_id = $1
			ORDER BY id DESC
			LIMIT $2
		) recent
		ORDER BY id ASC`

	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := r.pool.Query(ctx, query, sessionID, lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]models.ChatMessage, 0)
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, err
		}
		history = append(history, m)
	}
	return history, rows.Err()
}
