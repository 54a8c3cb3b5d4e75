//go:build integration

package containers

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"kycore/internal/platform/config"
	"kycore/internal/platform/logger"
	"kycore/internal/platform/postgres"
)

// PostgresContainer is a throwaway Postgres opened the way the server opens its
// database.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *gorm.DB
}

func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("kycore"),
		tcpostgres.WithUsername("kycore"),
		tcpostgres.WithPassword("kycore"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		abort(t, container, "postgres connection string: %v", err)
	}
	db, err := postgres.Open(ctx, config.PostgresConfig{DSN: dsn, MaxOpenConns: 8}, logger.NewNop())
	if err != nil {
		abort(t, container, "open postgres: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// Truncate empties tables between tests.
func (p *PostgresContainer) Truncate(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf("%q", table)
	}
	return p.DB.WithContext(ctx).Exec("TRUNCATE TABLE " + strings.Join(quoted, ", ") + " CASCADE").Error
}
