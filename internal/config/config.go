package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // TABULAIRE_DATABASE_URL (required)
	HTTPAddr    string // TABULAIRE_HTTP_ADDR (default ":8080")
	NATSURL     string // TABULAIRE_NATS_URL (optional, empty = no events)
	AuthToken   string // TABULAIRE_AUTH_TOKEN (optional, empty = auth disabled)

	// Cycle-prevention root for form derivation.
	ParentTable string // TABULAIRE_PARENT_TABLE (default "Projet")

	// Sync settings
	SyncInterval   time.Duration // TABULAIRE_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // TABULAIRE_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // TABULAIRE_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // TABULAIRE_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // TABULAIRE_SYNC_S3_KEY (default "tabulaire/backup.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("TABULAIRE_DATABASE_URL"),
		HTTPAddr:       envOrDefault("TABULAIRE_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("TABULAIRE_NATS_URL"),
		AuthToken:      os.Getenv("TABULAIRE_AUTH_TOKEN"),
		ParentTable:    envOrDefault("TABULAIRE_PARENT_TABLE", "Projet"),
		SyncS3Bucket:   os.Getenv("TABULAIRE_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("TABULAIRE_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("TABULAIRE_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("TABULAIRE_SYNC_S3_KEY", "tabulaire/backup.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("TABULAIRE_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("TABULAIRE_SYNC_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("TABULAIRE_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
