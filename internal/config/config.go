package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageNone  = "none"
	StorageS3    = "s3"
	StorageMinio = "minio"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Processing ProcessingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string `validate:"required,numeric"`
	Env            string `validate:"required"`
	LogLevel       string `validate:"oneof=trace debug info warn error fatal panic disabled"`
	AllowedOrigins []string
}

// StorageConfig holds S3/MinIO configuration
type StorageConfig struct {
	Driver          string `validate:"oneof=none s3 minio"`
	Region          string `validate:"required_if=Driver s3"`
	AccessKeyID     string `validate:"required_if=Driver minio"`
	SecretAccessKey string `validate:"required_if=Driver minio"`
	Bucket          string `validate:"required_unless=Driver none"`
	Endpoint        string `validate:"required_if=Driver minio"`
	UseSSL          bool
}

// ProcessingConfig holds run limits and the scratch location
type ProcessingConfig struct {
	MaxUploadBytes int64 `validate:"min=1024"`
	MaxFiles       int   `validate:"min=1"`
	ScratchDir     string
}

// Enabled reports whether an object store is configured.
func (s StorageConfig) Enabled() bool {
	return s.Driver != StorageNone
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("STORAGE_DRIVER", StorageNone)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_BUCKET", "sparam-uploads")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("MAX_UPLOAD_BYTES", 32<<20)
	v.SetDefault("MAX_FILES", 200)
	v.SetDefault("SCRATCH_DIR", "")

	// Environment variables override .env file values
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)

	env := v.GetString("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	// Read .env file for the current environment; it may not exist
	v.SetConfigName(".env." + env)
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read .env.%s: %w", env, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var config Config
	config.Server.Port = v.GetString("PORT")
	config.Server.Env = v.GetString("ENVIRONMENT")
	config.Server.LogLevel = strings.ToLower(v.GetString("LOG_LEVEL"))
	config.Server.AllowedOrigins = splitList(v.GetString("ALLOWED_ORIGINS"))
	config.Storage.Driver = strings.ToLower(v.GetString("STORAGE_DRIVER"))
	config.Storage.Region = v.GetString("AWS_REGION")
	config.Storage.AccessKeyID = v.GetString("AWS_ACCESS_KEY_ID")
	config.Storage.SecretAccessKey = v.GetString("AWS_SECRET_ACCESS_KEY")
	config.Storage.Bucket = v.GetString("S3_BUCKET")
	config.Storage.Endpoint = v.GetString("S3_ENDPOINT")
	config.Storage.UseSSL = v.GetBool("S3_USE_SSL")
	config.Processing.MaxUploadBytes = v.GetInt64("MAX_UPLOAD_BYTES")
	config.Processing.MaxFiles = v.GetInt("MAX_FILES")
	config.Processing.ScratchDir = v.GetString("SCRATCH_DIR")

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Debug().
		Str("environment", config.Server.Env).
		Str("storage", config.Storage.Driver).
		Strs("allowed_origins", config.Server.AllowedOrigins).
		Msg("Configuration loaded")

	return &config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
