package store

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"charity/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableDDL returns the CREATE TABLE statement for name from the init migration.
func tableDDL(t *testing.T, name string) string {
	t.Helper()
	up, _, _ := strings.Cut(migrationText(t), "-- +migrate Down")
	start := strings.Index(up, "CREATE TABLE IF NOT EXISTS "+name+" (")
	require.GreaterOrEqual(t, start, 0, "table %s not found", name)
	end := strings.Index(up[start:], ");")
	require.Greater(t, end, 0)
	return up[start : start+end+2]
}

func migrationText(t *testing.T) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0001_init.sql"))
	require.NoError(t, err)
	return string(content)
}

func TestSchemaApplicationStatusesMatchModel(t *testing.T) {
	ddl := tableDDL(t, "donation_applications")
	match := regexp.MustCompile(`status\s+TEXT NOT NULL DEFAULT 'pending' CHECK \(status IN \(([^)]*)\)\)`).FindStringSubmatch(ddl)
	require.Len(t, match, 2, "status check not found")

	var allowed []string
	for _, part := range strings.Split(match[1], ",") {
		allowed = append(allowed, strings.Trim(strings.TrimSpace(part), "'"))
	}
	var want []string
	for _, status := range models.ApplicationStatuses() {
		want = append(want, string(status))
	}
	assert.Equal(t, want, allowed)
}

// Every status SetStatus may write must be storable without an officer reply.
func TestSchemaStatusDoesNotRequireReply(t *testing.T) {
	ddl := tableDDL(t, "donation_applications")
	assert.NotContains(t, ddl, "officer_reply IS NOT NULL")
	assert.Regexp(t, `officer_reply\s+TEXT,`, ddl)
	for _, status := range models.ApplicationStatuses() {
		if status == models.StatusPending {
			continue
		}
		assert.True(t, models.CanTransition(models.ActionSetStatus, models.StatusPending, status), status)
	}
}

func TestSchemaSingleHeadOfficeIndex(t *testing.T) {
	assert.Contains(t, migrationText(t),
		"CREATE UNIQUE INDEX IF NOT EXISTS branches_single_head_office ON branches (is_head_office) WHERE is_head_office;")
}

func TestSchemaLedgerChecks(t *testing.T) {
	assert.Contains(t, tableDDL(t, "accounts"), "CHECK (balance >= 0)")
	assert.Contains(t, tableDDL(t, "transactions"), "CHECK (amount > 0)")
}
