package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves the test into an empty directory so no stray .env or config.yaml is picked up.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("APP_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 5, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, "local", cfg.Upload.Storage)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxFileSize)
	assert.False(t, cfg.SMTP.Enabled())
	assert.Equal(t, "", cfg.Redis.Addr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("APP_JWT_SECRET", "test-secret")
	t.Setenv("APP_SERVER_ADDR", ":9090")
	t.Setenv("APP_DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_AUTH_LOCKOUT_DURATION", "30m")
	t.Setenv("APP_REDIS_HOST", "cache")
	t.Setenv("APP_SMTP_HOST", "smtp.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.True(t, cfg.SMTP.Enabled())
}

func TestLoad_MissingSecret(t *testing.T) {
	chdirTemp(t)
	t.Setenv("APP_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Server:   ServerSettings{Env: "development"},
			Database: DatabaseSettings{Driver: "sqlite"},
			JWT:      JWTSettings{Secret: "s"},
			Auth:     AuthSettings{MaxFailedLogins: 5},
			Upload:   UploadSettings{Storage: "local", MaxFileSize: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"short secret in production", func(c *Config) { c.Server.Env = "production" }, "at least 32 bytes"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"s3 without bucket", func(c *Config) { c.Upload.Storage = "s3" }, "s3_bucket"},
		{"unknown storage", func(c *Config) { c.Upload.Storage = "ftp" }, "upload.storage"},
		{"zero upload size", func(c *Config) { c.Upload.MaxFileSize = 0 }, "max_file_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
