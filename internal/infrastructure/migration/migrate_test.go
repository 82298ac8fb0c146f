package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailable(t *testing.T) {
	names, err := Available()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "000001_create_ledger_tables", names[0])
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, "sql")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups[strings.TrimSuffix(e.Name(), ".up.sql")] = true
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs[strings.TrimSuffix(e.Name(), ".down.sql")] = true
		}
	}
	assert.Equal(t, ups, downs)
}

func TestInitialMigrationCreatesLedgerTables(t *testing.T) {
	body, err := fs.ReadFile(embeddedMigrations, "sql/000001_create_ledger_tables.up.sql")
	require.NoError(t, err)

	for _, table := range []string{"customers", "invoices", "payments", "payment_applications", "credits", "credit_applications"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
}

func TestEmbeddedSource(t *testing.T) {
	src, err := embeddedSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}
