package store

import (
	"context"
	"strings"
	"testing"

	"charity/internal/models"
)

func TestTransactionStoreCreate(t *testing.T) {
	ctx := context.Background()
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "INSERT INTO transactions") || !strings.Contains(query, "RETURNING") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 3 || args[0] != int64(7) || args[1] != "withdrawal" || args[2] != int64(250) {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*models.Transaction) = models.Transaction{ID: 11, UserID: 7, Kind: models.KindWithdrawal, Amount: 250}
			return nil
		},
	}
	store := NewTransactionStore(stubDB{})
	row, err := store.Create(ctx, getter, 7, models.KindWithdrawal, 250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.ID != 11 || row.Kind != models.KindWithdrawal {
		t.Fatalf("unexpected row: %#v", row)
	}
}

func TestTransactionStoreListByUser(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if strings.Contains(query, "AND kind") {
				t.Fatalf("unexpected kind filter: %s", query)
			}
			if !strings.Contains(query, "LIMIT $2 OFFSET $3") {
				t.Fatalf("unexpected limit/offset in query: %s", query)
			}
			if len(args) != 3 || args[0] != int64(7) || args[1] != 10 || args[2] != 0 {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*[]models.Transaction) = []models.Transaction{{ID: 1}}
			return nil
		},
	})
	rows, err := store.ListByUser(ctx, 7, "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 1 {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestTransactionStoreListByUserWithKind(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "AND kind = $2") {
				t.Fatalf("unexpected query: %s", query)
			}
			if !strings.Contains(query, "LIMIT $3 OFFSET $4") {
				t.Fatalf("unexpected limit/offset in query: %s", query)
			}
			if len(args) != 4 || args[1] != "deposit" || args[2] != 20 || args[3] != 40 {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.ListByUser(ctx, 7, models.KindDeposit, 20, 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreListAll(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "JOIN users u") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*[]TransactionWithUser) = []TransactionWithUser{{UserName: "Ann"}}
			return nil
		},
	})
	rows, err := store.ListAll(ctx, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].UserName != "Ann" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}
