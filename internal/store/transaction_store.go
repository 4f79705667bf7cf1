package store

import (
	"context"
	"strconv"

	"charity/internal/models"
)

type TransactionStore struct {
	db DB
}

// TransactionWithUser is a ledger row annotated with its owner for
// administrative listings.
type TransactionWithUser struct {
	models.Transaction
	UserName  string `db:"user_name" json:"user_name"`
	UserEmail string `db:"user_email" json:"user_email"`
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Getter, userID int64, kind models.TransactionKind, amount int64) (models.Transaction, error) {
	var row models.Transaction
	err := tx.GetContext(ctx, &row, `
		INSERT INTO transactions (user_id, kind, amount)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, kind, amount, created_at
	`, userID, string(kind), amount)
	return row, err
}

func (s *TransactionStore) GetByID(ctx context.Context, id int64) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, kind, amount, created_at
		FROM transactions
		WHERE id = $1
	`, id)
	return row, err
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID int64, kind models.TransactionKind, limit, offset int) ([]models.Transaction, error) {
	rows := []models.Transaction{}
	query := `
		SELECT id, user_id, kind, amount, created_at
		FROM transactions
		WHERE user_id = $1
	`
	args := []any{userID}
	param := 2
	if kind != "" {
		query += " AND kind = $2"
		args = append(args, string(kind))
		param = 3
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT $" + strconv.Itoa(param) + " OFFSET $" + strconv.Itoa(param+1)
	args = append(args, limit, offset)
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

func (s *TransactionStore) ListAll(ctx context.Context, limit, offset int) ([]TransactionWithUser, error) {
	rows := []TransactionWithUser{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.id, t.user_id, t.kind, t.amount, t.created_at,
		       u.name AS user_name, u.email AS user_email
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}
