// Package config loads application settings from defaults, an optional config
// file, a .env file and environment variables (APP_ prefix).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Server    ServerSettings    `mapstructure:"server"`
	Database  DatabaseSettings  `mapstructure:"database"`
	Redis     RedisSettings     `mapstructure:"redis"`
	JWT       JWTSettings       `mapstructure:"jwt"`
	Auth      AuthSettings      `mapstructure:"auth"`
	SMTP      SMTPSettings      `mapstructure:"smtp"`
	Upload    UploadSettings    `mapstructure:"upload"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Log       LogSettings       `mapstructure:"log"`
}

type ServerSettings struct {
	Addr            string        `mapstructure:"addr"`
	Env             string        `mapstructure:"env"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	FrontendURL     string        `mapstructure:"frontend_url"`
	// CORSOrigins は許可するオリジン。空ならCORSヘッダーを付けない
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseSettings struct {
	// Driver is "postgres" or "sqlite".
	Driver         string        `mapstructure:"driver"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	SSLMode        string        `mapstructure:"ssl_mode"`
	SQLitePath     string        `mapstructure:"sqlite_path"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	AutoMigrate    bool          `mapstructure:"auto_migrate"`
}

type RedisSettings struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisSettings) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type JWTSettings struct {
	Secret          string        `mapstructure:"secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type AuthSettings struct {
	MaxFailedLogins    int           `mapstructure:"max_failed_logins"`
	LockoutDuration    time.Duration `mapstructure:"lockout_duration"`
	VerificationTTL    time.Duration `mapstructure:"verification_ttl"`
	MaxSessionsPerUser int           `mapstructure:"max_sessions_per_user"`
	IdentityCacheTTL   time.Duration `mapstructure:"identity_cache_ttl"`
}

type SMTPSettings struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

// Enabled reports whether an SMTP relay is configured.
func (s SMTPSettings) Enabled() bool {
	return s.Host != ""
}

type UploadSettings struct {
	// Storage is "local" or "s3".
	Storage     string `mapstructure:"storage"`
	Dir         string `mapstructure:"dir"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`
}

type RateLimitSettings struct {
	LoginMax    int           `mapstructure:"login_max"`
	LoginWindow time.Duration `mapstructure:"login_window"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// IsProduction reports whether the server runs in the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

var keys = []string{
	"server.addr", "server.env", "server.request_timeout", "server.frontend_url",
	"server.cors_origins", "server.shutdown_timeout",
	"database.driver", "database.host", "database.port", "database.user", "database.password",
	"database.name", "database.ssl_mode", "database.sqlite_path", "database.connect_timeout",
	"database.auto_migrate",
	"redis.host", "redis.port", "redis.password", "redis.db",
	"jwt.secret", "jwt.access_token_ttl", "jwt.refresh_token_ttl",
	"auth.max_failed_logins", "auth.lockout_duration", "auth.verification_ttl",
	"auth.max_sessions_per_user", "auth.identity_cache_ttl",
	"smtp.host", "smtp.port", "smtp.username", "smtp.password", "smtp.from", "smtp.from_name",
	"upload.storage", "upload.dir", "upload.max_file_size", "upload.s3_bucket", "upload.s3_region",
	"upload.s3_endpoint", "upload.s3_access_key", "upload.s3_secret_key",
	"rate_limit.login_max", "rate_limit.login_window",
	"log.level", "log.format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.frontend_url", "http://localhost:5173")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.sqlite_path", "./internship.db")
	v.SetDefault("database.connect_timeout", 60*time.Second)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.port", "6379")

	v.SetDefault("jwt.access_token_ttl", 24*time.Hour)
	v.SetDefault("jwt.refresh_token_ttl", 7*24*time.Hour)

	v.SetDefault("auth.max_failed_logins", 5)
	v.SetDefault("auth.lockout_duration", 15*time.Minute)
	v.SetDefault("auth.verification_ttl", 24*time.Hour)
	v.SetDefault("auth.max_sessions_per_user", 5)
	v.SetDefault("auth.identity_cache_ttl", 5*time.Minute)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from_name", "Internship Portal")

	v.SetDefault("upload.storage", "local")
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.max_file_size", 5*1024*1024)
	v.SetDefault("upload.s3_region", "us-east-1")

	v.SetDefault("rate_limit.login_max", 20)
	v.SetDefault("rate_limit.login_window", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads the configuration. A missing .env or config file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}

	v := viper.New()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	setDefaults(v)

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret (APP_JWT_SECRET) is required"))
	} else if c.IsProduction() && len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("jwt.secret must be at least 32 bytes in production"))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}
	switch c.Upload.Storage {
	case "local":
	case "s3":
		if c.Upload.S3Bucket == "" {
			errs = append(errs, errors.New("upload.s3_bucket is required for s3 storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported upload.storage %q", c.Upload.Storage))
	}
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, errors.New("upload.max_file_size must be positive"))
	}
	if c.Auth.MaxFailedLogins <= 0 {
		errs = append(errs, errors.New("auth.max_failed_logins must be positive"))
	}
	return errors.Join(errs...)
}
