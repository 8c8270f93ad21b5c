// Package dbtest opens the Postgres database integration tests run
// against.
package dbtest

import (
	"os"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mythoughts/internal/db"
)

// EnvURL names the variable holding the test database DSN.
const EnvURL = "TEST_DATABASE_URL"

// Open connects to TEST_DATABASE_URL and migrates it, or skips the test
// when the variable is unset. Tests share the database, so they should
// scope rows with Unique.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv(EnvURL))
	if dsn == "" {
		t.Skipf("%s not set", EnvURL)
	}
	gdb, err := db.Connect(dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAndIndexes(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// Unique returns a lower case token no other test run produces.
func Unique() string {
	return strings.ToLower(ulid.Make().String())
}
