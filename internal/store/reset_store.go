package store

import (
	"context"
	"time"

	"charity/internal/models"
)

type ResetStore struct {
	db DB
}

func NewResetStore(db DB) *ResetStore {
	return &ResetStore{db: db}
}

func (s *ResetStore) Create(ctx context.Context, email, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (email, token, expires_at)
		VALUES ($1, $2, $3)
	`, email, token, expiresAt)
	return err
}

func (s *ResetStore) GetForUpdate(ctx context.Context, tx Getter, token string) (models.PasswordReset, error) {
	var row models.PasswordReset
	err := tx.GetContext(ctx, &row, `
		SELECT id, email, token, expires_at, used_at
		FROM password_resets
		WHERE token = $1
		FOR UPDATE
	`, token)
	return row, err
}

func (s *ResetStore) MarkUsed(ctx context.Context, tx Execer, id int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE password_resets SET used_at = NOW() WHERE id = $1 AND used_at IS NULL`, id)
	return err
}
