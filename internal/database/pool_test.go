package database_test

import (
	"testing"
	"time"

	"todo-manager/internal/config"
	"todo-manager/internal/database"
	"todo-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *config.Config {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", ":memory:")
	// An in-memory sqlite database exists per connection; keep the pool at
	// one so every statement sees the same schema.
	t.Setenv("DB_MAX_OPEN_CONNS", "1")
	t.Setenv("DB_MAX_IDLE_CONNS", "1")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestOpenAppliesPoolSettings(t *testing.T) {
	openTestDB(t)
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	db, err := database.Open(cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 7, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Ping())
}

func TestMigrateCreatesSchema(t *testing.T) {
	cfg := openTestDB(t)

	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	for _, table := range []string{"users", "categories", "todos", "tokens"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	user := models.User{Name: "Jamie", Email: "jamie@example.com", Password: "hash"}
	require.NoError(t, db.Create(&user).Error)

	todo := models.Todo{UserID: user.ID, Title: "Persisted"}
	require.NoError(t, db.Create(&todo).Error)

	var fetched models.Todo
	require.NoError(t, db.First(&fetched, "id = ?", todo.ID).Error)
	assert.Equal(t, "Persisted", fetched.Title)
	assert.False(t, fetched.IsComplete)
	assert.WithinDuration(t, time.Now(), fetched.CreatedAt, time.Minute)
}

func TestMigrateIsIdempotent(t *testing.T) {
	cfg := openTestDB(t)

	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Migrate(db))
}
