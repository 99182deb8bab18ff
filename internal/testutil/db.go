// Package testutil provides an isolated, seeded database for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-planner/internal/model"
	"task-planner/internal/repository"
)

// NewDB opens a private in-memory SQLite database named after the test,
// migrated and seeded with the default vocabulary. It is closed on cleanup.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := repository.NewDB(repository.Config{Driver: "sqlite", DSN: dsn}, zap.NewNop())
	require.NoError(t, err, "open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = repository.SeedDefaults(context.Background(), db)
	require.NoError(t, err, "seed defaults")
	return db
}

// MustCreateUser inserts a bare user and returns it.
func MustCreateUser(t testing.TB, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{Timezone: "UTC", Language: "en"}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))
	return user
}
