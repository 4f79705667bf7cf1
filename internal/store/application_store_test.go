package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charity/internal/models"
)

func applicationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "branch_id", "vulnerable_name", "images", "active_phone", "alt_phone", "guardian_name",
		"country", "district", "county", "sub_county", "parish", "village", "chairperson_name", "chairperson_phone",
		"recommendation_letter", "status", "officer_reply", "created_at", "updated_at",
	})
}

func TestApplicationStoreCreateStartsPending(t *testing.T) {
	db, mock := newMockDB(t)
	branchID := int64(2)
	mock.ExpectQuery(regexp.QuoteMeta("'pending')")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(14))

	id, err := NewApplicationStore(db).Create(context.Background(), db, models.DonationApplication{
		BranchID:       &branchID,
		VulnerableName: "Okello",
		Images: models.Attachments{
			{ContentType: "image/png", Data: []byte{1}},
			{ContentType: "image/png", Data: []byte{2}},
			{ContentType: "image/png", Data: []byte{3}},
		},
		RecommendationLetter: models.Attachment{ContentType: "application/pdf", Data: []byte{4}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(14), id)
}

func TestApplicationStoreGetForUpdateLocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(14)).
		WillReturnRows(applicationRows().AddRow(
			14, 2, "Okello", "[]", "0700", "", "", "Uganda", "Gulu", "", "", "", "", "", "",
			nil, "pending", nil, now, now,
		))

	row, err := NewApplicationStore(db).GetForUpdate(context.Background(), db, 14)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, row.Status)
	assert.Nil(t, row.OfficerReply)
}

func TestApplicationStoreReplySetsStatusAndReply(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'replied', officer_reply = $1")).
		WithArgs("We will visit next week", int64(14)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewApplicationStore(db).Reply(context.Background(), db, 14, "We will visit next week")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestApplicationStoreUpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("SET status = $1, updated_at = NOW()")).
		WithArgs("forwarded", int64(14)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewApplicationStore(db).UpdateStatus(context.Background(), db, 14, models.StatusForwarded)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
