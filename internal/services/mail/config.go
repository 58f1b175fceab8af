// File: internal/services/mail/config.go
package mail

import "fmt"

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is prefixed to links placed in outgoing mail.
	BaseURL string
}

// Enabled reports whether an SMTP relay is configured.
func (c *Config) Enabled() bool {
	return c.Host != ""
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP_HOST is required")
	}
	if c.Port <= 0 {
		return fmt.Errorf("SMTP_PORT must be positive")
	}
	if c.From == "" {
		return fmt.Errorf("SMTP_FROM is required")
	}
	return nil
}
