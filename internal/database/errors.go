// File: internal/database/errors.go
package database

import (
	"errors"
	"fmt"
)

// ErrSchemaNotInitialized is returned when a persistent target has no schema yet.
var ErrSchemaNotInitialized = errors.New("database schema is not initialized; run `go run ./cmd/migrate` against this DATABASE_URL")

// ErrStorageUnavailable is returned when not even the in-memory fallback can be opened.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ConfigError reports a connection setting that can never work. It is not retried
// and never triggers the in-memory fallback.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("database config error (%s): %s", e.Field, e.Message)
}
