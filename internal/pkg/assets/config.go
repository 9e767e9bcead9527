package assets

import (
	"errors"
	"time"

	"github.com/PageTurnApp/PageTurn/internal/pkg/env"
)

// Config holds S3 asset storage configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
	URLExpiry       time.Duration
}

// LoadConfig loads asset storage configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AccessKeyID:     env.GetEnv("ASSET_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("ASSET_S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("ASSET_S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("ASSET_S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("ASSET_S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("ASSET_S3_ENABLED", "false") == "true",
		URLExpiry:       15 * time.Minute,
	}

	if ttl := env.GetEnv("ASSET_URL_TTL", ""); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, errors.New("ASSET_URL_TTL is not a valid duration")
		}
		cfg.URLExpiry = d
	}

	// Validate required fields if the asset store is enabled
	if cfg.Enabled {
		if cfg.AccessKeyID == "" {
			return nil, errors.New("ASSET_S3_ACCESS_KEY_ID is required when the asset store is enabled")
		}
		if cfg.SecretAccessKey == "" {
			return nil, errors.New("ASSET_S3_SECRET_ACCESS_KEY is required when the asset store is enabled")
		}
		if cfg.BucketName == "" {
			return nil, errors.New("ASSET_S3_BUCKET_NAME is required when the asset store is enabled")
		}
	}

	return cfg, nil
}

// IsEnabled returns true if the S3 asset store is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}
