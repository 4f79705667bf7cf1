package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetStoreCreate(t *testing.T) {
	db, mock := newMockDB(t)
	expires := time.Now().Add(time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO password_resets")).
		WithArgs("ann@example.com", "tok", expires).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewResetStore(db).Create(context.Background(), "ann@example.com", "tok", expires))
}

func TestResetStoreGetForUpdateUnknownToken(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := NewResetStore(db).GetForUpdate(context.Background(), db, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestResetStoreMarkUsedIsSingleUse(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("used_at IS NULL")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewResetStore(db).MarkUsed(context.Background(), db, 5))
}
