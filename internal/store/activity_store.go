package store

import (
	"context"

	"charity/internal/models"

	"github.com/lib/pq"
)

type ActivityStore struct {
	db DB
}

type ActivityInput struct {
	Title       string
	Description string
	Status      models.ActivityStatus
}

// ActivityWithBranch carries the owning region for the master overview.
type ActivityWithBranch struct {
	models.Activity
	Region string `db:"region" json:"region"`
}

func NewActivityStore(db DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func (s *ActivityStore) ListByBranch(ctx context.Context, branchID int64) ([]models.Activity, error) {
	rows := []models.Activity{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, branch_id, title, description, status, created_at
		FROM activities
		WHERE branch_id = $1
		ORDER BY created_at DESC, id DESC
	`, branchID)
	return rows, err
}

func (s *ActivityStore) ListByBranches(ctx context.Context, branchIDs []int64) ([]models.Activity, error) {
	rows := []models.Activity{}
	if len(branchIDs) == 0 {
		return rows, nil
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, branch_id, title, description, status, created_at
		FROM activities
		WHERE branch_id = ANY($1)
		ORDER BY created_at DESC, id DESC
	`, pq.Array(branchIDs))
	return rows, err
}

func (s *ActivityStore) ListAll(ctx context.Context) ([]ActivityWithBranch, error) {
	rows := []ActivityWithBranch{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT a.id, a.branch_id, a.title, a.description, a.status, a.created_at, b.region
		FROM activities a
		JOIN branches b ON b.id = a.branch_id
		ORDER BY a.created_at DESC, a.id DESC
	`)
	return rows, err
}

func (s *ActivityStore) GetByID(ctx context.Context, id int64) (models.Activity, error) {
	var row models.Activity
	err := s.db.GetContext(ctx, &row, `
		SELECT id, branch_id, title, description, status, created_at
		FROM activities WHERE id = $1
	`, id)
	return row, err
}

func (s *ActivityStore) Create(ctx context.Context, branchID int64, input ActivityInput) (models.Activity, error) {
	var row models.Activity
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO activities (branch_id, title, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, branch_id, title, description, status, created_at
	`, branchID, input.Title, input.Description, string(input.Status))
	return row, err
}

func (s *ActivityStore) Update(ctx context.Context, id int64, input ActivityInput) (int64, error) {
	return affected(s.db.ExecContext(ctx, `
		UPDATE activities SET title = $1, description = $2, status = $3 WHERE id = $4
	`, input.Title, input.Description, string(input.Status), id))
}

func (s *ActivityStore) Delete(ctx context.Context, id int64) (int64, error) {
	return affected(s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id))
}

func (s *ActivityStore) DeleteByBranch(ctx context.Context, tx Execer, branchID int64) (int64, error) {
	return affected(tx.ExecContext(ctx, `DELETE FROM activities WHERE branch_id = $1`, branchID))
}
