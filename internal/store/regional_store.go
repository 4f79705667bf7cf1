package store

import (
	"context"

	"charity/internal/models"
)

// RegionalStore holds branch-scoped donations and assistance requests.
type RegionalStore struct {
	db DB
}

type RegionalDonationInput struct {
	DonorName   string
	Amount      int64
	Message     string
	IsAnonymous bool
}

type RegionalRequestInput struct {
	RequesterName   string
	Contact         string
	NeedDescription string
}

func NewRegionalStore(db DB) *RegionalStore {
	return &RegionalStore{db: db}
}

func (s *RegionalStore) CreateDonation(ctx context.Context, branchID int64, input RegionalDonationInput) (models.RegionalDonation, error) {
	var row models.RegionalDonation
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO regional_donations (branch_id, donor_name, amount, message, is_anonymous)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, branch_id, donor_name, amount, message, is_anonymous, created_at
	`, branchID, input.DonorName, input.Amount, input.Message, input.IsAnonymous)
	return row, err
}

func (s *RegionalStore) ListDonations(ctx context.Context, branchID int64) ([]models.RegionalDonation, error) {
	rows := []models.RegionalDonation{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, branch_id, donor_name, amount, message, is_anonymous, created_at
		FROM regional_donations
		WHERE branch_id = $1
		ORDER BY created_at DESC, id DESC
	`, branchID)
	return rows, err
}

func (s *RegionalStore) CreateRequest(ctx context.Context, branchID int64, input RegionalRequestInput) (models.RegionalRequest, error) {
	var row models.RegionalRequest
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO regional_requests (branch_id, requester_name, contact, need_description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, branch_id, requester_name, contact, need_description, status, created_at
	`, branchID, input.RequesterName, input.Contact, input.NeedDescription)
	return row, err
}

func (s *RegionalStore) GetRequest(ctx context.Context, id int64) (models.RegionalRequest, error) {
	var row models.RegionalRequest
	err := s.db.GetContext(ctx, &row, `
		SELECT id, branch_id, requester_name, contact, need_description, status, created_at
		FROM regional_requests WHERE id = $1
	`, id)
	return row, err
}

func (s *RegionalStore) ListRequests(ctx context.Context, branchID int64) ([]models.RegionalRequest, error) {
	rows := []models.RegionalRequest{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, branch_id, requester_name, contact, need_description, status, created_at
		FROM regional_requests
		WHERE branch_id = $1
		ORDER BY created_at DESC, id DESC
	`, branchID)
	return rows, err
}

func (s *RegionalStore) UpdateRequestStatus(ctx context.Context, id int64, status models.RequestStatus) (int64, error) {
	return affected(s.db.ExecContext(ctx, `UPDATE regional_requests SET status = $1 WHERE id = $2`, string(status), id))
}
