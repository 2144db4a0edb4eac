package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/database"
	"github.com/shikshak-watch/shikshak-watch-backend/migrations"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, applies the schema and truncates
// every table. Tests are skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 10, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(ctx, db, migrations.FS))
	truncateAllTables(t, db)
	return db
}

func truncateAllTables(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.Exec(context.Background(), "TRUNCATE TABLE attendances, users, schools CASCADE")
	require.NoError(t, err)
}

func insertSchool(t *testing.T, db *database.DB, code string) string {
	t.Helper()
	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO schools (name, code, latitude, longitude, block, district)
		VALUES ($1, $2, 25.5941, 85.1376, 'Patna Sadar', 'Patna')
		RETURNING id
	`, "School "+code, code).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertUser(t *testing.T, db *database.DB, email, role string, schoolID *string) string {
	t.Helper()
	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (name, email, password_hash, role, school_id)
		VALUES ($1, $2, 'hash', $3, $4)
		RETURNING id
	`, email, email, role, schoolID).Scan(&id)
	require.NoError(t, err)
	return id
}
