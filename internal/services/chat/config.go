// File: internal/services/chat/config.go
package chat

import "fmt"

type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	// MaxContentLength bounds a single message in runes.
	MaxContentLength int
	MaxTitleLength   int
}

func (c *Config) Validate() error {
	if c.DefaultPageSize <= 0 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default_page_size must be between 1 and max_page_size")
	}
	if c.MaxPageSize > 100 {
		return fmt.Errorf("max_page_size cannot exceed 100")
	}
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("max_content_length must be positive")
	}
	if c.MaxTitleLength <= 0 {
		return fmt.Errorf("max_title_length must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		DefaultPageSize:  20,
		MaxPageSize:      100,
		MaxContentLength: 10000,
		MaxTitleLength:   100,
	}
}
