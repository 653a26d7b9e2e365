package db

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"internship_backend/internal/platform/config"
)

// retryInterval は接続失敗時の再試行間隔です。
const retryInterval = 3 * time.Second

// Config holds the Postgres connection parts.
type Config struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     string
	SSLMode  string
}

// ConfigFromSettings converts loaded settings into a Config.
func ConfigFromSettings(s config.DatabaseSettings) Config {
	return Config{
		User:     s.User,
		Password: s.Password,
		Name:     s.Name,
		Host:     s.Host,
		Port:     s.Port,
		SSLMode:  s.SSLMode,
	}
}

// BuildDSN builds a key/value Postgres DSN.
func BuildDSN(cfg Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, sslMode)
}

// Opener opens a gorm connection for a DSN. Tests substitute it.
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying...", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

// OpenSQLite opens a SQLite database. Use ":memory:" in tests.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// 接続ごとに別DBになる :memory: と PRAGMA を1本の接続に固定する
	sqlDB.SetMaxOpenConns(1)

	// SQLite は外部キーがデフォルトで無効
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Open connects using the configured driver.
func Open(s config.DatabaseSettings) (*gorm.DB, error) {
	switch s.Driver {
	case "sqlite":
		return OpenSQLite(s.SQLitePath)
	case "postgres":
		return ConnectWithRetry(BuildDSN(ConfigFromSettings(s)), s.ConnectTimeout, openPostgres)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", s.Driver)
	}
}

// Migrate runs AutoMigrate for the given models.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err came from a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// sqlite ドライバは TranslateError 未対応のケースがある
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// UpsertOn makes an INSERT land on the existing row when key already exists.
// cols are overwritten; keep columns retain the stored value when the new one
// is empty (file references the second writer did not upload).
func UpsertOn(table, key string, cols []string, keep ...string) clause.OnConflict {
	set := clause.AssignmentColumns(cols)
	for _, c := range keep {
		set = append(set, clause.Assignment{
			Column: clause.Column{Name: c},
			Value:  gorm.Expr(fmt.Sprintf("COALESCE(NULLIF(excluded.%s, ''), %s.%s)", c, table, c)),
		})
	}
	return clause.OnConflict{Columns: []clause.Column{{Name: key}}, DoUpdates: set}
}
