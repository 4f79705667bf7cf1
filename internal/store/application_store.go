package store

import (
	"context"

	"charity/internal/models"
)

type ApplicationStore struct {
	db DB
}

const applicationColumns = `id, branch_id, vulnerable_name, images, active_phone, alt_phone, guardian_name,
	country, district, county, sub_county, parish, village, chairperson_name, chairperson_phone,
	recommendation_letter, status, officer_reply, created_at, updated_at`

func NewApplicationStore(db DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

func (s *ApplicationStore) Create(ctx context.Context, tx Getter, app models.DonationApplication) (int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id, `
		INSERT INTO donation_applications (
			branch_id, vulnerable_name, images, active_phone, alt_phone, guardian_name,
			country, district, county, sub_county, parish, village,
			chairperson_name, chairperson_phone, recommendation_letter, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 'pending')
		RETURNING id
	`, app.BranchID, app.VulnerableName, app.Images, app.ActivePhone, app.AltPhone, app.GuardianName,
		app.Country, app.District, app.County, app.SubCounty, app.Parish, app.Village,
		app.ChairpersonName, app.ChairpersonPhone, app.RecommendationLetter)
	return id, err
}

func (s *ApplicationStore) GetByID(ctx context.Context, id int64) (models.DonationApplication, error) {
	var row models.DonationApplication
	err := s.db.GetContext(ctx, &row, `SELECT `+applicationColumns+` FROM donation_applications WHERE id = $1`, id)
	return row, err
}

func (s *ApplicationStore) GetForUpdate(ctx context.Context, tx Getter, id int64) (models.DonationApplication, error) {
	var row models.DonationApplication
	err := tx.GetContext(ctx, &row, `SELECT `+applicationColumns+` FROM donation_applications WHERE id = $1 FOR UPDATE`, id)
	return row, err
}

func (s *ApplicationStore) ListByBranch(ctx context.Context, branchID int64) ([]models.DonationApplication, error) {
	rows := []models.DonationApplication{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+applicationColumns+`
		FROM donation_applications
		WHERE branch_id = $1
		ORDER BY created_at DESC, id DESC
	`, branchID)
	return rows, err
}

func (s *ApplicationStore) ListAll(ctx context.Context) ([]models.DonationApplication, error) {
	rows := []models.DonationApplication{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+applicationColumns+`
		FROM donation_applications
		ORDER BY created_at DESC, id DESC
	`)
	return rows, err
}

func (s *ApplicationStore) UpdateStatus(ctx context.Context, tx Execer, id int64, status models.ApplicationStatus) (int64, error) {
	return affected(tx.ExecContext(ctx, `
		UPDATE donation_applications
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, string(status), id))
}

// Reply records the officer reply and the replied status in one statement.
func (s *ApplicationStore) Reply(ctx context.Context, tx Execer, id int64, reply string) (int64, error) {
	return affected(tx.ExecContext(ctx, `
		UPDATE donation_applications
		SET status = 'replied', officer_reply = $1, updated_at = NOW()
		WHERE id = $2
	`, reply, id))
}
