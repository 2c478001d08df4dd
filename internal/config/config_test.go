package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mautops/dailyreport-gin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults 测试无配置文件时的默认值
func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "dailyreport", cfg.Database.DBName)
	assert.Equal(t, "uploads", cfg.Upload.Dir)
	assert.Equal(t, 10, cfg.Upload.MaxSizeMB)
	assert.Contains(t, cfg.Upload.AllowedExts, ".png")
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

// TestLoad_File 测试从配置文件加载
func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 9090
database:
  dbname: reports_test
log:
  level: error
upload:
  max_size_mb: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "reports_test", cfg.Database.DBName)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Upload.MaxSizeMB)
	// 未覆盖的配置保留默认值
	assert.Equal(t, "localhost", cfg.Database.Host)
}

// TestLoad_FileMissing 测试显式指定的配置文件不存在时报错
func TestLoad_FileMissing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// TestLoad_EnvOverride 测试环境变量覆盖
func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9999")
	t.Setenv("APP_DATABASE_HOST", "db.internal")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

// TestIsProduction 测试环境判断
func TestIsProduction(t *testing.T) {
	assert.False(t, config.IsProduction(nil))
	assert.False(t, config.IsProduction(&config.Config{Env: "development"}))
	assert.True(t, config.IsProduction(&config.Config{Env: "production"}))
}

// TestDefault 测试默认配置
func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "dailyreport-gin", cfg.Tracing.ServiceName)
}
