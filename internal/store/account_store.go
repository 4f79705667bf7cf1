package store

import (
	"context"

	"charity/internal/models"
)

type AccountStore struct {
	db DB
}

// Reconciliation compares a stored balance with the signed sum of its
// transactions.
type Reconciliation struct {
	UserID        int64  `db:"user_id"`
	Email         string `db:"email"`
	StoredBalance int64  `db:"stored_balance"`
	LedgerBalance int64  `db:"ledger_balance"`
	Difference    int64  `db:"difference"`
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, userID int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (user_id, balance, auto_pay)
		VALUES ($1, 0, FALSE)
	`, userID)
	return err
}

func (s *AccountStore) GetByUser(ctx context.Context, userID int64) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, balance, auto_pay, updated_at
		FROM accounts
		WHERE user_id = $1
	`, userID)
	return row, err
}

func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, userID int64) (models.Account, error) {
	var row models.Account
	err := tx.GetContext(ctx, &row, `
		SELECT user_id, balance, auto_pay, updated_at
		FROM accounts
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	return row, err
}

func (s *AccountStore) UpdateBalance(ctx context.Context, tx Execer, userID, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE user_id = $2
	`, balance, userID)
	return err
}

func (s *AccountStore) SetAutoPay(ctx context.Context, userID int64, enabled bool) (int64, error) {
	return affected(s.db.ExecContext(ctx, `
		UPDATE accounts
		SET auto_pay = $1, updated_at = NOW()
		WHERE user_id = $2
	`, enabled, userID))
}

func (s *AccountStore) ListAutoPayUsers(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids, `
		SELECT user_id FROM accounts WHERE auto_pay = TRUE ORDER BY user_id
	`)
	return ids, err
}

func (s *AccountStore) Reconcile(ctx context.Context) ([]Reconciliation, error) {
	var rows []Reconciliation
	err := s.db.SelectContext(ctx, &rows, `
		SELECT a.user_id,
		       u.email,
		       a.balance AS stored_balance,
		       COALESCE(SUM(CASE WHEN t.kind = 'deposit' THEN t.amount ELSE -t.amount END), 0) AS ledger_balance,
		       a.balance - COALESCE(SUM(CASE WHEN t.kind = 'deposit' THEN t.amount ELSE -t.amount END), 0) AS difference
		FROM accounts a
		JOIN users u ON u.id = a.user_id
		LEFT JOIN transactions t ON t.user_id = a.user_id
		GROUP BY a.user_id, u.email, a.balance
		ORDER BY a.user_id
	`)
	return rows, err
}
