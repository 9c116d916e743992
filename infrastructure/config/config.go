package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Store backends
const (
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `envconfig:"SERVER_ADDRESS" default:":8080"`
	Environment   string `envconfig:"ENVIRONMENT" default:"development"`

	// AWS configuration
	AWSRegion string `envconfig:"AWS_REGION" default:"eu-west-1"`
	TableName string `envconfig:"TABLE_NAME" default:"publications"`
	IndexName string `envconfig:"INDEX_NAME" default:"ByPublisher"`

	// Store selects the publication repository backend
	Store string `envconfig:"STORE" default:"dynamodb"`

	// Location header of updated DOI requests
	APIScheme string `envconfig:"API_SCHEME" default:"https"`
	APIHost   string `envconfig:"API_HOST" default:"api.localhost"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Authentication for the local server
	JWTSecret string `envconfig:"JWT_SECRET"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"doi-requests"`

	// Feature flags
	EnableTracing bool `envconfig:"ENABLE_TRACING" default:"false"`
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"false"`
	EnableCORS    bool `envconfig:"ENABLE_CORS" default:"true"`

	// DebugErrors adds stack traces to error responses
	DebugErrors bool `envconfig:"DEBUG_ERRORS" default:"false"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	cfg.Store = strings.ToLower(cfg.Store)

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.Store {
	case StoreDynamoDB:
		if c.TableName == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if c.IndexName == "" {
			return fmt.Errorf("INDEX_NAME is required")
		}
	case StoreMemory:
		if c.IsProduction() {
			return fmt.Errorf("STORE=%s is not allowed in production", StoreMemory)
		}
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}

	if c.APIHost == "" {
		return fmt.Errorf("API_HOST is required")
	}

	return nil
}

// PublicationURL returns the public URL of a publication
func (c *Config) PublicationURL(id string) string {
	return fmt.Sprintf("%s://%s/publication/%s", c.APIScheme, c.APIHost, id)
}

// MetricsNamespace returns the CloudWatch namespace of this deployment
func (c *Config) MetricsNamespace() string {
	return fmt.Sprintf("DoiRequests/%s", c.Environment)
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
