package store

import (
	"context"
	"time"

	"charity/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, password_hash, name, role, phone, bio, photo, branch_id, created_at`

type NewUser struct {
	Email        string
	PasswordHash string
	Name         string
	Role         models.Role
	BranchID     *int64
}

type ProfileUpdate struct {
	Email        string
	Name         string
	Phone        *string
	Bio          *string
	Photo        models.Attachment
	PasswordHash *string
}

type OfficerUpdate struct {
	Email        string
	Name         string
	BranchID     *int64
	PasswordHash *string
}

// Officer is a regional officer joined with the region of their branch.
type Officer struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	BranchID  *int64    `db:"branch_id" json:"branch_id"`
	Region    *string   `db:"region" json:"region"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type UserSummary struct {
	ID       int64       `db:"id" json:"id"`
	Name     string      `db:"name" json:"name"`
	Email    string      `db:"email" json:"email"`
	Role     models.Role `db:"role" json:"role"`
	BranchID *int64      `db:"branch_id" json:"branch_id"`
}

func (s *UserStore) Create(ctx context.Context, tx Getter, input NewUser) (int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id, `
		INSERT INTO users (email, password_hash, name, role, branch_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, input.Email, input.PasswordHash, input.Name, string(input.Role), input.BranchID)
	return id, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	return row, err
}

func (s *UserStore) GetByID(ctx context.Context, userID int64) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return row, err
}

func (s *UserStore) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var taken bool
	err := s.db.GetContext(ctx, &taken, `
		SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2)
	`, email, exceptID)
	return taken, err
}

func (s *UserStore) UpdateProfile(ctx context.Context, tx Execer, userID int64, input ProfileUpdate) (int64, error) {
	return affected(tx.ExecContext(ctx, `
		UPDATE users
		SET email = $1, name = $2, phone = $3, bio = $4, photo = $5,
		    password_hash = COALESCE($6, password_hash)
		WHERE id = $7
	`, input.Email, input.Name, input.Phone, input.Bio, input.Photo, input.PasswordHash, userID))
}

func (s *UserStore) UpdatePasswordByEmail(ctx context.Context, tx Execer, email, passwordHash string) (int64, error) {
	return affected(tx.ExecContext(ctx, `
		UPDATE users SET password_hash = $1 WHERE LOWER(email) = LOWER($2)
	`, passwordHash, email))
}

func (s *UserStore) ListOfficers(ctx context.Context) ([]Officer, error) {
	rows := []Officer{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT u.id, u.email, u.name, u.branch_id, b.region, u.created_at
		FROM users u
		LEFT JOIN branches b ON b.id = u.branch_id
		WHERE u.role = 'regional_officer'
		ORDER BY u.name
	`)
	return rows, err
}

func (s *UserStore) UpdateOfficer(ctx context.Context, tx Execer, userID int64, input OfficerUpdate) (int64, error) {
	return affected(tx.ExecContext(ctx, `
		UPDATE users
		SET email = $1, name = $2, branch_id = $3, password_hash = COALESCE($4, password_hash)
		WHERE id = $5 AND role = 'regional_officer'
	`, input.Email, input.Name, input.BranchID, input.PasswordHash, userID))
}

func (s *UserStore) DeleteOfficer(ctx context.Context, tx Execer, userID int64) (int64, error) {
	return affected(tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1 AND role = 'regional_officer'`, userID))
}

// DetachBranch clears the branch affiliation of every user of branchID.
func (s *UserStore) DetachBranch(ctx context.Context, tx Execer, branchID int64) (int64, error) {
	return affected(tx.ExecContext(ctx, `UPDATE users SET branch_id = NULL WHERE branch_id = $1`, branchID))
}

func (s *UserStore) ListSummaries(ctx context.Context) ([]UserSummary, error) {
	rows := []UserSummary{}
	err := s.db.SelectContext(ctx, &rows, `SELECT id, name, email, role, branch_id FROM users ORDER BY id`)
	return rows, err
}
