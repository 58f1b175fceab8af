// File: internal/database/schema.go
package database

import (
	"context"
	"fmt"

	"github.com/iyunix/go-counselor/internal/domain"
)

// Models returns every persisted entity in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Account{},
		&domain.AuthSession{},
		&domain.VerificationToken{},
		&domain.ChatSession{},
		&domain.Message{},
	}
}

// Migrate creates any missing tables, columns and indexes.
func (c *Connection) Migrate(ctx context.Context) error {
	if err := c.DB.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate %s database: %w", c.Target, err)
	}
	return nil
}

// EnsureInitialized makes sure the schema is usable before the first request.
// Ephemeral stores are migrated in place; persistent stores are only probed, since
// migrating them is an explicit operator step.
func (c *Connection) EnsureInitialized(ctx context.Context) error {
	if c.Ephemeral {
		if err := c.Migrate(ctx); err != nil {
			return err
		}
		c.logger.Info("ephemeral schema initialized", "target", c.Target, "tables", len(Models()))
		return nil
	}

	var probe int
	if err := c.DB.WithContext(ctx).Raw("SELECT 1 FROM users LIMIT 1").Scan(&probe).Error; err != nil {
		c.logger.Error("schema probe failed", "target", c.Target, "error", err)
		return fmt.Errorf("%w: %v", ErrSchemaNotInitialized, err)
	}
	return nil
}
