package store

import (
	"context"

	"charity/internal/models"
)

type StoryStore struct {
	db DB
}

type StoryInput struct {
	BranchID        *int64
	Title           string
	Story           string
	BeneficiaryName string
	Image           models.Attachment
	IsApproved      bool
}

const storyColumns = `id, branch_id, title, story, beneficiary_name, image, is_approved, created_at`

func NewStoryStore(db DB) *StoryStore {
	return &StoryStore{db: db}
}

func (s *StoryStore) ListApproved(ctx context.Context) ([]models.ImpactStory, error) {
	rows := []models.ImpactStory{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+storyColumns+`
		FROM impact_stories
		WHERE is_approved
		ORDER BY created_at DESC, id DESC
	`)
	return rows, err
}

func (s *StoryStore) ListAll(ctx context.Context) ([]models.ImpactStory, error) {
	rows := []models.ImpactStory{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+storyColumns+`
		FROM impact_stories
		ORDER BY created_at DESC, id DESC
	`)
	return rows, err
}

func (s *StoryStore) Create(ctx context.Context, input StoryInput) (models.ImpactStory, error) {
	var row models.ImpactStory
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO impact_stories (branch_id, title, story, beneficiary_name, image, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+storyColumns, input.BranchID, input.Title, input.Story, input.BeneficiaryName, input.Image, input.IsApproved)
	return row, err
}

func (s *StoryStore) Update(ctx context.Context, id int64, input StoryInput) (int64, error) {
	return affected(s.db.ExecContext(ctx, `
		UPDATE impact_stories
		SET branch_id = $1, title = $2, story = $3, beneficiary_name = $4, image = $5, is_approved = $6
		WHERE id = $7
	`, input.BranchID, input.Title, input.Story, input.BeneficiaryName, input.Image, input.IsApproved, id))
}

func (s *StoryStore) Delete(ctx context.Context, id int64) (int64, error) {
	return affected(s.db.ExecContext(ctx, `DELETE FROM impact_stories WHERE id = $1`, id))
}
