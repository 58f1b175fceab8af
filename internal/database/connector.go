// File: internal/database/connector.go
package database

import (
	"context"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Target identifies which kind of store a Connection talks to.
type Target string

const (
	TargetFile   Target = "file"
	TargetMemory Target = "memory"
	TargetRemote Target = "remote"
)

const (
	memoryDSN    = ":memory:"
	sqlitePragma = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
)

// Logger is the subset of the service logger the connector needs.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type Options struct {
	URL        string
	AuthToken  string
	Serverless bool
	Logger     Logger
	// SQLLog receives gorm's statement log; defaults to stdout.
	SQLLog      *log.Logger
	SQLLogLevel logger.LogLevel
}

// Connection is a ready-to-use handle plus what the connector decided about it.
type Connection struct {
	DB *gorm.DB
	// Target is the store actually in use, which may differ from the one requested.
	Target Target
	// Ephemeral is true when data will not survive the process.
	Ephemeral bool
	// Degraded is true when the requested target failed and memory is standing in.
	Degraded bool

	logger Logger
}

// Connect selects and opens a store:
//
//  1. postgres URL without an auth token: ConfigError, no fallback
//  2. postgres URL with a token: remote
//  3. serverless runtime with a local file URL: memory
//  4. otherwise: local file
//
// Connection failures in 2 or 4 degrade to memory with a warning instead of failing.
func Connect(opts Options) (*Connection, error) {
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	lg := opts.Logger
	rawURL := strings.TrimSpace(opts.URL)

	switch {
	case isRemoteURL(rawURL):
		if opts.AuthToken == "" {
			return nil, &ConfigError{Field: "DATABASE_AUTH_TOKEN", Message: "remote database URL requires an auth token"}
		}
		dsn, err := remoteDSN(rawURL, opts.AuthToken)
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(postgres.Open(dsn), gormConfig(opts))
		if err != nil {
			lg.Warn("remote database unreachable, falling back to in-memory store", "error", err)
			return openFallback(opts)
		}
		configureRemotePool(db)
		lg.Info("database connected", "target", TargetRemote)
		return &Connection{DB: db, Target: TargetRemote, logger: lg}, nil

	case hasUnsupportedScheme(rawURL):
		return nil, &ConfigError{Field: "DATABASE_URL", Message: "unsupported scheme in " + redact(rawURL)}

	case isMemoryURL(rawURL):
		return openMemory(opts, false)

	case opts.Serverless:
		lg.Info("serverless runtime detected, using in-memory store", "requested", rawURL)
		return openMemory(opts, false)

	default:
		path := filePath(rawURL)
		db, err := gorm.Open(sqlite.Open(withPragma(path)), gormConfig(opts))
		if err != nil {
			lg.Warn("local database unavailable, falling back to in-memory store", "path", path, "error", err)
			return openFallback(opts)
		}
		lg.Info("database connected", "target", TargetFile, "path", path)
		return &Connection{DB: db, Target: TargetFile, logger: lg}, nil
	}
}

func openFallback(opts Options) (*Connection, error) {
	return openMemory(opts, true)
}

func openMemory(opts Options, degraded bool) (*Connection, error) {
	db, err := gorm.Open(sqlite.Open(withPragma(memoryDSN)), gormConfig(opts))
	if err != nil {
		opts.Logger.Error("in-memory database failed to open", "error", err)
		return nil, ErrStorageUnavailable
	}

	// Every pooled connection to :memory: is a separate database, so keep exactly one alive.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	opts.Logger.Info("database connected", "target", TargetMemory, "degraded", degraded)
	return &Connection{
		DB:        db,
		Target:    TargetMemory,
		Ephemeral: true,
		Degraded:  degraded,
		logger:    opts.Logger,
	}, nil
}

// HealthCheck pings the underlying pool.
func (c *Connection) HealthCheck(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool. An in-memory store is gone afterwards.
func (c *Connection) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig(opts Options) *gorm.Config {
	out := opts.SQLLog
	if out == nil {
		out = log.New(os.Stdout, "\r\n", log.LstdFlags)
	}
	level := opts.SQLLogLevel
	if level == 0 {
		level = logger.Warn
	}
	return &gorm.Config{
		Logger: logger.New(out, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func configureRemotePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
}

func isRemoteURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

func isMemoryURL(raw string) bool {
	return raw == ":memory:" || raw == "file::memory:" || strings.EqualFold(raw, "memory")
}

// hasUnsupportedScheme catches URLs like libsql:// or https:// that no driver here can serve.
func hasUnsupportedScheme(raw string) bool {
	idx := strings.Index(raw, "://")
	if idx <= 0 {
		return false
	}
	return !strings.EqualFold(raw[:idx], "file")
}

// remoteDSN injects the auth token as the connection password.
func remoteDSN(raw, token string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", &ConfigError{Field: "DATABASE_URL", Message: "malformed remote URL"}
	}
	username := "postgres"
	if u.User != nil && u.User.Username() != "" {
		username = u.User.Username()
	}
	u.User = url.UserPassword(username, token)
	return u.String(), nil
}

func filePath(raw string) string {
	path := raw
	path = strings.TrimPrefix(path, "file://")
	path = strings.TrimPrefix(path, "file:")
	if path == "" {
		path = "./dev.db"
	}
	return path
}

func withPragma(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragma
	}
	return dsn + "?" + sqlitePragma
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
