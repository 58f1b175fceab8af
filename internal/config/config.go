// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported AI backends.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

type Config struct {
	ServerPort  string
	Environment string
	BaseURL     string

	// Storage
	DatabaseURL       string
	DatabaseAuthToken string
	Serverless        bool

	// AI backend
	AIProvider     string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	GoogleAIAPIKey string
	GeminiModel    string
	AITimeout      time.Duration

	// Auth
	JWTSecretKey       string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Mail
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	port := getEnv("SERVER_PORT", "8080")
	cfg := &Config{
		ServerPort:  port,
		Environment: env,
		BaseURL:     getEnv("BASE_URL", "http://localhost:"+port),

		DatabaseURL:       getEnv("DATABASE_URL", "file:./dev.db"),
		DatabaseAuthToken: getEnv("DATABASE_AUTH_TOKEN", ""),
		Serverless:        getEnvAsBool("SERVERLESS", false) || isSet("VERCEL") || isSet("AWS_LAMBDA_FUNCTION_NAME"),

		AIProvider:     strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini)),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		GoogleAIAPIKey: getEnv("GOOGLE_AI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		AITimeout:      time.Duration(getEnvAsInt("AI_TIMEOUT_SECONDS", 30)) * time.Second,

		JWTSecretKey:       getEnv("JWT_SECRET_KEY", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@localhost"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	if cfg.GoogleRedirectURL == "" {
		cfg.GoogleRedirectURL = strings.TrimRight(cfg.BaseURL, "/") + "/auth/oauth/google/callback"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	missing := []string{}

	switch c.AIProvider {
	case ProviderGemini:
		if c.GoogleAIAPIKey == "" {
			missing = append(missing, "GOOGLE_AI_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q (expected %s, %s or %s)",
			c.AIProvider, ProviderGemini, ProviderOpenAI, ProviderMock)
	}

	if c.IsProduction() && c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT_SECONDS must be positive")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// GoogleOAuthEnabled reports whether the Google sign-in flow can be offered.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func isSet(key string) bool {
	value, exists := os.LookupEnv(key)
	return exists && value != ""
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return boolValue
}
