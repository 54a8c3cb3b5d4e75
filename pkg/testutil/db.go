package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

var sqliteSeq atomic.Int64

// NewSQLiteDB opens a private in-memory SQLite database behind gorm and migrates
// models into it. A single connection is used so every session sees the same
// database, and transactions serialize the way row locks would.
func NewSQLiteDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:kycore_test_%d?mode=memory&cache=private&_pragma=foreign_keys(1)", sqliteSeq.Add(1))
	sqlDB, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "open sqlite")
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open gorm sqlite")

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...), "migrate sqlite")
	}
	return db
}

// NewPostgresDryRun returns a gorm handle with the Postgres dialect that never
// touches a server. Use it to assert generated SQL.
func NewPostgresDryRun(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("postgres", "postgres://kycore@localhost:5432/kycore?sslmode=disable")
	require.NoError(t, err, "open postgres handle")
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open gorm postgres dry run")
	return db
}
