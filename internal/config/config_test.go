package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, "storage:\n  local_path: "+filepath.Join(t.TempDir(), "uploads")+"\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "5555", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, time.Hour, cfg.PasswordReset.TTL)
	assert.Equal(t, "literal", cfg.Grading.Scale)
	assert.Equal(t, "append", cfg.Grading.Policy)
	assert.Equal(t, []string{".pdf", ".docx", ".txt"}, cfg.Storage.AllowedExtensions)
	assert.Equal(t, int64(16), cfg.Storage.MaxUploadMB)
	assert.Equal(t, dir, cfg.Path)
	assert.DirExists(t, cfg.Storage.LocalPath)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
database:
  driver: postgres
jwt:
  expire_hours: 2
grading:
  scale: percent
  policy: overwrite
password_reset:
  ttl: 30m
storage:
  type: minio
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_HOST", "db.internal")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 30*time.Minute, cfg.PasswordReset.TTL)
	assert.Equal(t, GradingConfig{Scale: "percent", Policy: "overwrite"}, cfg.Grading)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "oss")
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "oss", cfg.Storage.Type)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Mode: "release"},
			Database: DatabaseConfig{Driver: "mysql"},
			JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
			Grading:  GradingConfig{Scale: "literal", Policy: "append"},
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"short secret in release": func(c *Config) { c.JWT.Secret = "short" },
		"unknown scale":           func(c *Config) { c.Grading.Scale = "gpa" },
		"unknown policy":          func(c *Config) { c.Grading.Policy = "merge" },
		"unknown driver":          func(c *Config) { c.Database.Driver = "oracle" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
