package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/bookreview")
	t.Setenv("MIGRATIONS_DIR", "")
	_ = os.Unsetenv("MIGRATIONS_DIR")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "db/migrations", cfg.MigrationsDir)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/bookreview")
	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/custom/migrations", cfg.MigrationsDir)
}

func TestLoadConfig_EnvFileDoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("DB_DSN=from_file\n"), 0o644))
	t.Setenv("DB_DSN", "from_env")
	t.Chdir(tmp)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.DatabaseDSN)
}

func TestLoadConfig_MissingDSN(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DSN", "")
	_ = os.Unsetenv("DB_DSN")

	_, err := loadConfig()
	assert.Error(t, err)
}
