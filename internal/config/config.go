package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sh3r4rd/file_metadata/internal/model"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendAWS    = "aws"
	BackendLocal  = "local"
	BackendMemory = "memory"
)

// Config holds all configuration for the lambdas and the dev server
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Upload  UploadConfig  `yaml:"upload"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
}

// StorageConfig holds blob and record store configuration
type StorageConfig struct {
	Backend          string `yaml:"backend"`
	BucketName       string `yaml:"bucket_name"`
	TableName        string `yaml:"table_name"`
	Region           string `yaml:"region"`
	S3Endpoint       string `yaml:"s3_endpoint"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"`
	AccessKey        string `yaml:"access_key"`
	SecretKey        string `yaml:"secret_key"`
	LocalPath        string `yaml:"local_path"`
}

// CacheConfig holds the optional redis record cache configuration.
// An empty RedisAddr disables the cache.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// UploadConfig holds upload limits
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig holds dev server configuration
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() Config {
	return Config{
		Storage: StorageConfig{
			Backend:    BackendAWS,
			BucketName: "administratortest",
			TableName:  "Administratortest",
			Region:     "us-east-1",
			LocalPath:  "./data",
		},
		Cache:  CacheConfig{TTL: time.Hour},
		Upload: UploadConfig{MaxBytes: model.MaxUploadBytes},
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{ListenAddr: ":8080"},
	}
}

// Load starts from Defaults, applies the YAML file at CONFIG_PATH when set,
// then applies environment overrides.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.BucketName = getEnv("BUCKET_NAME", cfg.Storage.BucketName)
	cfg.Storage.TableName = getEnv("TABLE_NAME", cfg.Storage.TableName)
	cfg.Storage.Region = getEnv("AWS_REGION", cfg.Storage.Region)
	cfg.Storage.S3Endpoint = getEnv("S3_ENDPOINT", cfg.Storage.S3Endpoint)
	cfg.Storage.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", cfg.Storage.DynamoDBEndpoint)
	cfg.Storage.AccessKey = getEnv("S3_ACCESS_KEY", cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = getEnv("S3_SECRET_KEY", cfg.Storage.SecretKey)
	cfg.Storage.LocalPath = getEnv("LOCAL_STORAGE_PATH", cfg.Storage.LocalPath)
	cfg.Cache.RedisAddr = getEnv("REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = getEnv("REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = parseInt(os.Getenv("REDIS_DB"), cfg.Cache.RedisDB)
	cfg.Cache.TTL = parseDuration(os.Getenv("CACHE_TTL"), cfg.Cache.TTL)
	cfg.Upload.MaxBytes = int64(parseInt(os.Getenv("MAX_UPLOAD_BYTES"), int(cfg.Upload.MaxBytes)))
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Server.ListenAddr = getEnv("LISTEN_ADDR", cfg.Server.ListenAddr)

	switch cfg.Storage.Backend {
	case BackendAWS, BackendLocal, BackendMemory:
	default:
		return Config{}, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}

func parseInt(value string, defaultValue int) int {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return defaultValue
}
