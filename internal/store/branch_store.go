package store

import (
	"context"

	"charity/internal/models"
)

type BranchStore struct {
	db DB
}

const branchColumns = `id, region, location, is_head_office, officer_name, officer_bio, officer_photo, officer_photos, created_at`

type BranchInput struct {
	Region        string
	Location      string
	OfficerName   *string
	OfficerBio    *string
	OfficerPhoto  models.Attachment
	OfficerPhotos models.Attachments
}

type OfficerProfile struct {
	OfficerName   *string
	OfficerBio    *string
	OfficerPhoto  models.Attachment
	OfficerPhotos models.Attachments
}

func NewBranchStore(db DB) *BranchStore {
	return &BranchStore{db: db}
}

func (s *BranchStore) List(ctx context.Context) ([]models.Branch, error) {
	rows := []models.Branch{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+branchColumns+`
		FROM branches
		ORDER BY is_head_office DESC, region
	`)
	return rows, err
}

func (s *BranchStore) GetByID(ctx context.Context, id int64) (models.Branch, error) {
	var row models.Branch
	err := s.db.GetContext(ctx, &row, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id)
	return row, err
}

func (s *BranchStore) GetByRegion(ctx context.Context, q Getter, region string) (models.Branch, error) {
	var row models.Branch
	err := q.GetContext(ctx, &row, `SELECT `+branchColumns+` FROM branches WHERE LOWER(region) = LOWER($1)`, region)
	return row, err
}

func (s *BranchStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM branches WHERE id = $1)`, id)
	return exists, err
}

func (s *BranchStore) Create(ctx context.Context, tx Getter, input BranchInput) (int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id, `
		INSERT INTO branches (region, location, officer_name, officer_bio, officer_photo, officer_photos)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, input.Region, input.Location, input.OfficerName, input.OfficerBio, input.OfficerPhoto, input.OfficerPhotos)
	return id, err
}

func (s *BranchStore) Update(ctx context.Context, tx Execer, id int64, input BranchInput) (int64, error) {
	return affected(tx.ExecContext(ctx, `
		UPDATE branches
		SET region = $1, location = $2, officer_name = $3, officer_bio = $4,
		    officer_photo = $5, officer_photos = $6
		WHERE id = $7
	`, input.Region, input.Location, input.OfficerName, input.OfficerBio, input.OfficerPhoto, input.OfficerPhotos, id))
}

func (s *BranchStore) UpdateOfficerProfile(ctx context.Context, id int64, input OfficerProfile) (int64, error) {
	return affected(s.db.ExecContext(ctx, `
		UPDATE branches
		SET officer_name = $1, officer_bio = $2, officer_photo = $3, officer_photos = $4
		WHERE id = $5
	`, input.OfficerName, input.OfficerBio, input.OfficerPhoto, input.OfficerPhotos, id))
}

// ClearHeadOffice drops the flag from every branch except keepID.
func (s *BranchStore) ClearHeadOffice(ctx context.Context, tx Execer, keepID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE branches SET is_head_office = FALSE
		WHERE is_head_office AND id <> $1
	`, keepID)
	return err
}

func (s *BranchStore) SetHeadOffice(ctx context.Context, tx Execer, id int64, isHeadOffice bool) (int64, error) {
	return affected(tx.ExecContext(ctx, `UPDATE branches SET is_head_office = $1 WHERE id = $2`, isHeadOffice, id))
}

func (s *BranchStore) Delete(ctx context.Context, tx Execer, id int64) (int64, error) {
	return affected(tx.ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id))
}
