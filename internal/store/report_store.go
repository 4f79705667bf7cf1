package store

import (
	"context"
	"time"

	"charity/internal/models"
)

// ReportStore serves the read-only analytics and search views.
type ReportStore struct {
	db DB
}

type Totals struct {
	TotalDonations         int64 `db:"total_donations"`
	TotalRegionalDonations int64 `db:"total_regional_donations"`
	TotalUsers             int64 `db:"total_users"`
	TotalOfficers          int64 `db:"total_officers"`
	TotalBranches          int64 `db:"total_branches"`
	PendingApplications    int64 `db:"pending_applications"`
	ApprovedApplications   int64 `db:"approved_applications"`
	RepliedApplications    int64 `db:"replied_applications"`
	TotalSavings           int64 `db:"total_savings"`
	TotalDeposits          int64 `db:"total_deposits"`
}

type MonthTotal struct {
	Month string `db:"month"`
	Total int64  `db:"total"`
}

type BranchHit struct {
	ID       int64  `db:"id" json:"id"`
	Region   string `db:"region" json:"region"`
	Location string `db:"location" json:"location"`
}

type UserHit struct {
	ID    int64       `db:"id" json:"id"`
	Name  string      `db:"name" json:"name"`
	Email string      `db:"email" json:"email"`
	Role  models.Role `db:"role" json:"role"`
}

func NewReportStore(db DB) *ReportStore {
	return &ReportStore{db: db}
}

func (s *ReportStore) Totals(ctx context.Context) (Totals, error) {
	var row Totals
	err := s.db.GetContext(ctx, &row, `
		SELECT
			(SELECT COALESCE(SUM(amount), 0) FROM donations) AS total_donations,
			(SELECT COALESCE(SUM(amount), 0) FROM regional_donations) AS total_regional_donations,
			(SELECT COUNT(*) FROM users WHERE role = 'user') AS total_users,
			(SELECT COUNT(*) FROM users WHERE role = 'regional_officer') AS total_officers,
			(SELECT COUNT(*) FROM branches) AS total_branches,
			(SELECT COUNT(*) FROM donation_applications WHERE status = 'pending') AS pending_applications,
			(SELECT COUNT(*) FROM donation_applications WHERE status = 'approved') AS approved_applications,
			(SELECT COUNT(*) FROM donation_applications WHERE status = 'replied') AS replied_applications,
			(SELECT COALESCE(SUM(balance), 0) FROM accounts) AS total_savings,
			(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE kind = 'deposit') AS total_deposits
	`)
	return row, err
}

// MonthlyDonations sums global donations per calendar month from since on.
func (s *ReportStore) MonthlyDonations(ctx context.Context, since time.Time) ([]MonthTotal, error) {
	rows := []MonthTotal{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT TO_CHAR(DATE_TRUNC('month', created_at AT TIME ZONE 'UTC'), 'YYYY-MM') AS month,
		       SUM(amount) AS total
		FROM donations
		WHERE created_at >= $1
		GROUP BY 1
		ORDER BY 1
	`, since)
	return rows, err
}

func (s *ReportStore) SearchBranches(ctx context.Context, term string, limit int) ([]BranchHit, error) {
	rows := []BranchHit{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, region, location
		FROM branches
		WHERE region ILIKE $1 OR location ILIKE $1
		ORDER BY region
		LIMIT $2
	`, likePattern(term), limit)
	return rows, err
}

func (s *ReportStore) SearchUsers(ctx context.Context, term string, limit int) ([]UserHit, error) {
	rows := []UserHit{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, email, role
		FROM users
		WHERE name ILIKE $1 OR email ILIKE $1
		ORDER BY name
		LIMIT $2
	`, likePattern(term), limit)
	return rows, err
}

func (s *ReportStore) SearchDonations(ctx context.Context, term string, limit int) ([]models.Donation, error) {
	rows := []models.Donation{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, donor_name, amount, message, created_at
		FROM donations
		WHERE donor_name ILIKE $1 OR message ILIKE $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, likePattern(term), limit)
	return rows, err
}
