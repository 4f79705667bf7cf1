package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"charity/internal/db"
	"charity/internal/metrics"
	"charity/internal/models"
	"charity/internal/money"
	"charity/internal/store"
	"charity/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const (
	ReceiptOrganization = "Arise and Shine Ministries International"
	ReceiptMessage      = "Thank you for your support!"
)

type AccountStore interface {
	GetByUser(ctx context.Context, userID int64) (models.Account, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID int64) (models.Account, error)
	UpdateBalance(ctx context.Context, tx store.Execer, userID, balance int64) error
	SetAutoPay(ctx context.Context, userID int64, enabled bool) (int64, error)
	ListAutoPayUsers(ctx context.Context) ([]int64, error)
	Reconcile(ctx context.Context) ([]store.Reconciliation, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Getter, userID int64, kind models.TransactionKind, amount int64) (models.Transaction, error)
	GetByID(ctx context.Context, id int64) (models.Transaction, error)
	ListByUser(ctx context.Context, userID int64, kind models.TransactionKind, limit, offset int) ([]models.Transaction, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID *int64, action, entityType, entityID, details string) error
}

type UserLookup interface {
	GetByID(ctx context.Context, userID int64) (models.User, error)
}

type BalanceHub interface {
	BroadcastBalance(userID int64, update websocket.BalanceUpdate)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Role   models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleMasterAdmin
}

func (a Actor) IsOfficer() bool {
	return a.Role == models.RoleOfficer || a.Role == models.RoleMasterAdmin
}

type LedgerService struct {
	txRunner     db.TxRunner
	accountStore AccountStore
	txStore      TransactionStore
	auditStore   AuditStore
	users        UserLookup
	hub          BalanceHub
	logger       logrus.FieldLogger
	now          func() time.Time
}

func NewLedgerService(txRunner db.TxRunner, accountStore AccountStore, txStore TransactionStore, auditStore AuditStore, users UserLookup, hub BalanceHub, logger logrus.FieldLogger) *LedgerService {
	return &LedgerService{
		txRunner:     txRunner,
		accountStore: accountStore,
		txStore:      txStore,
		auditStore:   auditStore,
		users:        users,
		hub:          hub,
		logger:       logger,
		now:          time.Now,
	}
}

// LedgerResult is the committed state after a balance mutation.
type LedgerResult struct {
	Account     models.Account     `json:"account"`
	Transaction models.Transaction `json:"transaction"`
}

func (s *LedgerService) Deposit(ctx context.Context, userID, amountMinor int64) (LedgerResult, error) {
	return s.apply(ctx, userID, models.KindDeposit, amountMinor, true)
}

func (s *LedgerService) Withdraw(ctx context.Context, userID, amountMinor int64) (LedgerResult, error) {
	return s.apply(ctx, userID, models.KindWithdrawal, amountMinor, true)
}

// Collect debits the account like Withdraw but leaves no audit entry.
func (s *LedgerService) Collect(ctx context.Context, userID, amountMinor int64) (LedgerResult, error) {
	return s.apply(ctx, userID, models.KindCollection, amountMinor, false)
}

func (s *LedgerService) apply(ctx context.Context, userID int64, kind models.TransactionKind, amountMinor int64, audit bool) (LedgerResult, error) {
	if amountMinor <= 0 {
		metrics.RecordLedgerOperation(string(kind), "invalid")
		return LedgerResult{}, invalid("amount", "amount must be greater than zero")
	}
	var result LedgerResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accountStore.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return notFound(err)
		}
		balance := account.Balance.Minor()
		if kind.Debit() {
			if balance < amountMinor {
				return ErrInsufficientFunds
			}
			balance -= amountMinor
		} else {
			if balance > math.MaxInt64-amountMinor {
				return invalid("amount", "amount would overflow the account balance")
			}
			balance += amountMinor
		}
		if err := s.accountStore.UpdateBalance(ctx, tx, userID, balance); err != nil {
			return err
		}
		txn, err := s.txStore.Create(ctx, tx, userID, kind, amountMinor)
		if err != nil {
			return err
		}
		account.Balance = money.Amount(balance)
		result = LedgerResult{Account: account, Transaction: txn}
		if !audit {
			return nil
		}
		details, _ := json.Marshal(map[string]any{
			"amount":  money.FormatMinor(amountMinor),
			"balance": money.FormatMinor(balance),
		})
		return s.auditStore.Log(ctx, tx, &userID, string(kind), "transaction", strconv.FormatInt(txn.ID, 10), string(details))
	})
	if err != nil {
		metrics.RecordLedgerOperation(string(kind), ledgerOutcome(err))
		return LedgerResult{}, err
	}
	metrics.RecordLedgerOperation(string(kind), "ok")
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		Balance:       money.FormatMinor(result.Account.Balance.Minor()),
		AutoPay:       result.Account.AutoPay,
		Kind:          string(kind),
		TransactionID: result.Transaction.ID,
	})
	return result, nil
}

func ledgerOutcome(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

func (s *LedgerService) Balance(ctx context.Context, userID int64) (models.Account, error) {
	account, err := s.accountStore.GetByUser(ctx, userID)
	if err != nil {
		return models.Account{}, notFound(err)
	}
	return account, nil
}

func (s *LedgerService) SetAutoPay(ctx context.Context, userID int64, enabled bool) (models.Account, error) {
	rows, err := s.accountStore.SetAutoPay(ctx, userID, enabled)
	if err != nil {
		return models.Account{}, err
	}
	if rows == 0 {
		return models.Account{}, ErrNotFound
	}
	account, err := s.Balance(ctx, userID)
	if err != nil {
		return models.Account{}, err
	}
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		Balance: money.FormatMinor(account.Balance.Minor()),
		AutoPay: account.AutoPay,
	})
	return account, nil
}

type HistoryQuery struct {
	Kind   models.TransactionKind
	Limit  int
	Offset int
}

func (s *LedgerService) History(ctx context.Context, userID int64, q HistoryQuery) ([]models.Transaction, error) {
	if q.Kind != "" && !q.Kind.Valid() {
		return nil, invalid("type", "unknown transaction type %q", q.Kind)
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return s.txStore.ListByUser(ctx, userID, q.Kind, q.Limit, q.Offset)
}

type Receipt struct {
	ReceiptID     string                 `json:"receiptId"`
	TransactionID int64                  `json:"transactionId"`
	UserName      string                 `json:"userName"`
	UserEmail     string                 `json:"userEmail"`
	Kind          models.TransactionKind `json:"type"`
	Amount        money.Amount           `json:"amount"`
	Date          time.Time              `json:"date"`
	Organization  string                 `json:"organization"`
	Message       string                 `json:"message"`
}

// Receipt hides other users' transactions behind ErrNotFound unless the
// caller is the master admin.
func (s *LedgerService) Receipt(ctx context.Context, actor Actor, transactionID int64) (Receipt, error) {
	txn, err := s.txStore.GetByID(ctx, transactionID)
	if err != nil {
		return Receipt{}, notFound(err)
	}
	if txn.UserID != actor.UserID && !actor.IsAdmin() {
		return Receipt{}, ErrNotFound
	}
	owner, err := s.users.GetByID(ctx, txn.UserID)
	if err != nil {
		return Receipt{}, notFound(err)
	}
	return Receipt{
		ReceiptID:     fmt.Sprintf("RCP-%d-%d", txn.ID, s.now().UnixMilli()),
		TransactionID: txn.ID,
		UserName:      owner.Name,
		UserEmail:     owner.Email,
		Kind:          txn.Kind,
		Amount:        txn.Amount,
		Date:          txn.CreatedAt,
		Organization:  ReceiptOrganization,
		Message:       ReceiptMessage,
	}, nil
}

type AutoPayReport struct {
	Collected    int
	Insufficient int
	Failed       int
}

// CollectAutoPay runs Collect for every auto-pay account. Each collection is
// its own transaction; a short balance is counted and skipped.
func (s *LedgerService) CollectAutoPay(ctx context.Context, amountMinor int64) (AutoPayReport, error) {
	var report AutoPayReport
	if amountMinor <= 0 {
		return report, invalid("amount", "auto-pay amount must be greater than zero")
	}
	userIDs, err := s.accountStore.ListAutoPayUsers(ctx)
	if err != nil {
		return report, err
	}
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		_, err := s.Collect(ctx, userID, amountMinor)
		switch {
		case err == nil:
			report.Collected++
		case errors.Is(err, ErrInsufficientFunds):
			report.Insufficient++
		default:
			report.Failed++
			s.logger.WithError(err).WithField("user_id", userID).Error("auto-pay collection failed")
		}
	}
	metrics.RecordAutoPay("collected", report.Collected)
	metrics.RecordAutoPay("insufficient", report.Insufficient)
	metrics.RecordAutoPay("failed", report.Failed)
	return report, nil
}

func (s *LedgerService) Reconcile(ctx context.Context) ([]store.Reconciliation, error) {
	rows, err := s.accountStore.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	mismatched := []store.Reconciliation{}
	for _, row := range rows {
		if row.Difference != 0 {
			mismatched = append(mismatched, row)
		}
	}
	if len(mismatched) > 0 {
		s.logger.WithField("accounts", len(mismatched)).Warn("ledger reconciliation found mismatched balances")
	}
	return mismatched, nil
}
