package services

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"time"

	"charity/internal/models"
	"charity/internal/money"
	"charity/internal/store"
	"charity/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type auditCall struct {
	actorID    *int64
	action     string
	entityType string
	entityID   string
	details    string
}

type stubAuditStore struct {
	mu    sync.Mutex
	calls []auditCall
	err   error
}

func (s *stubAuditStore) Log(_ context.Context, _ store.Execer, actorID *int64, action, entityType, entityID, details string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, auditCall{actorID, action, entityType, entityID, details})
	return nil
}

type recordingHub struct {
	mu      sync.Mutex
	updates map[int64][]websocket.BalanceUpdate
}

func (h *recordingHub) BroadcastBalance(userID int64, update websocket.BalanceUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.updates == nil {
		h.updates = map[int64][]websocket.BalanceUpdate{}
	}
	h.updates[userID] = append(h.updates[userID], update)
}

// memLedger keeps accounts and transactions in memory and serves both the
// account and the transaction store interfaces.
type memLedger struct {
	mu           sync.Mutex
	accounts     map[int64]models.Account
	transactions []models.Transaction
	updateErr    error
}

func newMemLedger(balances map[int64]int64) *memLedger {
	l := &memLedger{accounts: map[int64]models.Account{}}
	for userID, balance := range balances {
		l.accounts[userID] = models.Account{UserID: userID, Balance: money.Amount(balance)}
	}
	return l
}

func (l *memLedger) balance(userID int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[userID].Balance.Minor()
}

func (l *memLedger) GetByUser(_ context.Context, userID int64) (models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[userID]
	if !ok {
		return models.Account{}, sql.ErrNoRows
	}
	return account, nil
}

func (l *memLedger) GetForUpdate(ctx context.Context, _ store.Getter, userID int64) (models.Account, error) {
	return l.GetByUser(ctx, userID)
}

func (l *memLedger) UpdateBalance(_ context.Context, _ store.Execer, userID, balance int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.updateErr != nil {
		return l.updateErr
	}
	account := l.accounts[userID]
	account.Balance = money.Amount(balance)
	l.accounts[userID] = account
	return nil
}

func (l *memLedger) SetAutoPay(_ context.Context, userID int64, enabled bool) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[userID]
	if !ok {
		return 0, nil
	}
	account.AutoPay = enabled
	l.accounts[userID] = account
	return 1, nil
}

func (l *memLedger) ListAutoPayUsers(context.Context) ([]int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var ids []int64
	for id, account := range l.accounts {
		if account.AutoPay {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (l *memLedger) Reconcile(context.Context) ([]store.Reconciliation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sums := map[int64]int64{}
	for _, txn := range l.transactions {
		if txn.Kind.Debit() {
			sums[txn.UserID] -= txn.Amount.Minor()
		} else {
			sums[txn.UserID] += txn.Amount.Minor()
		}
	}
	var rows []store.Reconciliation
	for id, account := range l.accounts {
		rows = append(rows, store.Reconciliation{
			UserID:        id,
			StoredBalance: account.Balance.Minor(),
			LedgerBalance: sums[id],
			Difference:    account.Balance.Minor() - sums[id],
		})
	}
	return rows, nil
}

func (l *memLedger) Create(_ context.Context, _ store.Getter, userID int64, kind models.TransactionKind, amount int64) (models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	txn := models.Transaction{
		ID:        int64(len(l.transactions) + 1),
		UserID:    userID,
		Kind:      kind,
		Amount:    money.Amount(amount),
		CreatedAt: time.Now(),
	}
	l.transactions = append(l.transactions, txn)
	return txn, nil
}

func (l *memLedger) GetByID(_ context.Context, id int64) (models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, txn := range l.transactions {
		if txn.ID == id {
			return txn, nil
		}
	}
	return models.Transaction{}, sql.ErrNoRows
}

func (l *memLedger) ListByUser(_ context.Context, userID int64, kind models.TransactionKind, limit, offset int) ([]models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var rows []models.Transaction
	for i := len(l.transactions) - 1; i >= 0; i-- {
		txn := l.transactions[i]
		if txn.UserID == userID && (kind == "" || txn.Kind == kind) {
			rows = append(rows, txn)
		}
	}
	if offset >= len(rows) {
		return []models.Transaction{}, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type stubUsers struct {
	users map[int64]models.User
}

func (s stubUsers) GetByID(_ context.Context, userID int64) (models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return user, nil
}
