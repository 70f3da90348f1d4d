package postgresql_test

import (
	"context"
	"fmt"
	"os"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

const schemaPath = "../../../../migrations/001_init.sql"

// TestDatabaseSetup holds the connection shared by the repository tests.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to dsn and applies the schema.
func NewTestDatabase(ctx context.Context, dsn string) (*TestDatabaseSetup, error) {
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 5})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := db.Exec(ctx, string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &TestDatabaseSetup{DB: db}, nil
}

// TruncateAllTables removes every row written by a previous run.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"payroll_records",
		"daily_attendance_entries",
		"daily_attendance",
		"employees",
		"holidays",
		"business_settings",
		"businesses",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
