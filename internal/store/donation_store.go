package store

import (
	"context"

	"charity/internal/models"
)

type DonationStore struct {
	db DB
}

func NewDonationStore(db DB) *DonationStore {
	return &DonationStore{db: db}
}

func (s *DonationStore) Create(ctx context.Context, donorName string, amount int64, message string) (models.Donation, error) {
	var row models.Donation
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO donations (donor_name, amount, message)
		VALUES ($1, $2, $3)
		RETURNING id, donor_name, amount, message, created_at
	`, donorName, amount, message)
	return row, err
}

func (s *DonationStore) ListRecent(ctx context.Context, limit int) ([]models.Donation, error) {
	rows := []models.Donation{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, donor_name, amount, message, created_at
		FROM donations
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	return rows, err
}

func (s *DonationStore) ListAll(ctx context.Context) ([]models.Donation, error) {
	rows := []models.Donation{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, donor_name, amount, message, created_at
		FROM donations
		ORDER BY created_at DESC, id DESC
	`)
	return rows, err
}
