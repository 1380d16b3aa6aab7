package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	schema "github.com/cmlabs-hris/hris-payroll/db"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// truncatedTables lists every table a test may write to, children first.
var truncatedTables = []string{
	"settlements",
	"payroll_supplements",
	"payslips",
	"payroll_periods",
	"payroll_settings",
	"tax_declarations",
	"reimbursements",
	"loan_installments",
	"loans",
	"leave_requests",
	"leave_quotas",
	"leave_types",
	"attendances",
	"salary_structures",
	"employees",
}

// setupTestDB connects to TEST_DATABASE_URL, applies the migrations and empties the tables.
// The test is skipped when no database is configured.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(ctx, db, schema.Migrations, "migrations"))
	require.NoError(t, truncateAll(ctx, db))
	return db
}

func truncateAll(ctx context.Context, db *database.DB) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range truncatedTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func newID(t *testing.T) string {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

// createTestEmployee inserts an active employee hired on 2020-01-01.
func createTestEmployee(t *testing.T, db *database.DB, companyID, code, name string) string {
	t.Helper()
	id := newID(t)
	_, err := db.Exec(context.Background(), `
		INSERT INTO employees (id, company_id, employee_code, full_name, hire_date, work_state)
		VALUES ($1, $2, $3, $4, '2020-01-01', 'MH')
	`, id, companyID, code, name)
	require.NoError(t, err)
	return id
}
