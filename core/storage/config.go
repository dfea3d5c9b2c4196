package storage

import "time"

// Config holds configuration for the blob store that keeps pin photos.
type Config struct {
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket pin images are uploaded to.
	Bucket string `mapstructure:"bucket" default:"crowdmarks"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// PresignMinutes is how long generated image URLs stay valid.
	PresignMinutes int `mapstructure:"presign_minutes" default:"60"`
}

// PresignExpiry returns the validity window for presigned image URLs.
func (c Config) PresignExpiry() time.Duration {
	if c.PresignMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.PresignMinutes) * time.Minute
}
