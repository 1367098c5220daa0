package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":6789", cfg.Addr)
	assert.Equal(t, 3306, cfg.DBPort)
	assert.True(t, cfg.AutoMigrate)
	assert.True(t, cfg.Swagger)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, "root:secret@tcp(127.0.0.1:3306)/social_db?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}

func TestLoad_DotEnvAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=from_file\nREDIS_ADDR=127.0.0.1:6379\nPOLL_INTERVAL=5s\nDEBUG=true\n"), 0o644))
	t.Setenv("DB_PORT", "3307")
	// 已存在的环境变量优先于 .env
	t.Setenv("DB_NAME", "from_env")
	t.Cleanup(func() {
		_ = os.Unsetenv("REDIS_ADDR")
		_ = os.Unsetenv("POLL_INTERVAL")
		_ = os.Unsetenv("DEBUG")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.DBName)
	assert.Equal(t, 3307, cfg.DBPort)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.True(t, cfg.Debug)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("DB_PORT", "-1")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
