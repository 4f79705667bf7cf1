package store

import (
	"context"

	"charity/internal/models"
)

type AuditStore struct {
	db DB
}

func NewAuditStore(db DB) *AuditStore {
	return &AuditStore{db: db}
}

// Log appends an audit row inside the caller's transaction. actorID may be
// nil for system actions.
func (s *AuditStore) Log(ctx context.Context, tx Execer, actorID *int64, action, entityType, entityID, details string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
	`, actorID, action, entityType, entityID, details)
	return err
}

func (s *AuditStore) List(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	rows := []models.AuditLog{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT a.id, a.user_id, u.name AS user_name, a.action, a.entity_type, a.entity_id, a.details, a.created_at
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}
