package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "release", c.GinMode)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, "3306", c.DBPort)
	assert.Equal(t, 6379, c.RedisPort)
	assert.Equal(t, "info", c.LogLevel)
	assert.Zero(t, c.RateLimitPerMinute)
}

func TestApplyDefaultsPostgresPort(t *testing.T) {
	c := AppConfig{DBDriver: "Postgres"}
	applyDefaults(&c)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "5432", c.DBPort)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLITE")
	t.Setenv("DATABASE_URI", "file::memory:")
	t.Setenv("ADMIN_USERNAMES", " alice , bob ,")
	t.Setenv("SEED_CATEGORIES", "General,Tech")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("LOG_COMPRESS", "true")

	var c AppConfig
	applyDefaults(&c)
	applyEnvOverrides(&c)

	assert.Equal(t, "9090", c.AppPort)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "file::memory:", c.DatabaseURI)
	assert.Equal(t, []string{"alice", "bob"}, c.AdminUsernames)
	assert.Equal(t, []string{"General", "Tech"}, c.SeedCategories)
	assert.Equal(t, 120, c.RateLimitPerMinute)
	assert.True(t, c.LogCompress)
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDatabase(AppConfig{DBDriver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := OpenDatabase(AppConfig{
		DBDriver:    "sqlite",
		DatabaseURI: "file:config_test?mode=memory&cache=shared&_foreign_keys=on",
		LogLevel:    "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "auth_tokens", "categories", "articles", "comments"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
