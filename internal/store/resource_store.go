package store

import (
	"context"

	"charity/internal/models"
)

type ResourceStore struct {
	db DB
}

type ResourceInput struct {
	Name        string
	Type        models.ResourceType
	Description string
	URL         *string
}

func NewResourceStore(db DB) *ResourceStore {
	return &ResourceStore{db: db}
}

func (s *ResourceStore) ListByBranch(ctx context.Context, branchID int64) ([]models.Resource, error) {
	rows := []models.Resource{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, branch_id, name, type, description, url, created_at
		FROM resources
		WHERE branch_id = $1
		ORDER BY created_at DESC, id DESC
	`, branchID)
	return rows, err
}

func (s *ResourceStore) GetByID(ctx context.Context, id int64) (models.Resource, error) {
	var row models.Resource
	err := s.db.GetContext(ctx, &row, `
		SELECT id, branch_id, name, type, description, url, created_at
		FROM resources WHERE id = $1
	`, id)
	return row, err
}

func (s *ResourceStore) Create(ctx context.Context, branchID int64, input ResourceInput) (models.Resource, error) {
	var row models.Resource
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO resources (branch_id, name, type, description, url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, branch_id, name, type, description, url, created_at
	`, branchID, input.Name, string(input.Type), input.Description, input.URL)
	return row, err
}

func (s *ResourceStore) Delete(ctx context.Context, id int64) (int64, error) {
	return affected(s.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id))
}

func (s *ResourceStore) DeleteByBranch(ctx context.Context, tx Execer, branchID int64) (int64, error) {
	return affected(tx.ExecContext(ctx, `DELETE FROM resources WHERE branch_id = $1`, branchID))
}
