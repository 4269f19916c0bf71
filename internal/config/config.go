package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Log    LogConfig
	CORS   CORSConfig
	Upload UploadConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	// ConnMaxLifetimeMin recycles pooled connections, in minutes.
	ConnMaxLifetimeMin int `mapstructure:"conn_max_lifetime_min"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for uploaded contract storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// UploadConfig holds contract upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// Load reads configuration from environment variables with the CONTRACTOCR_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CONTRACTOCR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "contractocr")
	v.SetDefault("db.password", "contractocr_secret")
	v.SetDefault("db.name", "contractocr_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.conn_max_lifetime_min", 30)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "contractocr-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 50)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "CONTRACTOCR_SERVER_PORT",
		"server.read_timeout":      "CONTRACTOCR_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "CONTRACTOCR_SERVER_WRITE_TIMEOUT",
		"server.environment":       "CONTRACTOCR_SERVER_ENVIRONMENT",
		"db.host":                  "CONTRACTOCR_DB_HOST",
		"db.port":                  "CONTRACTOCR_DB_PORT",
		"db.user":                  "CONTRACTOCR_DB_USER",
		"db.password":              "CONTRACTOCR_DB_PASSWORD",
		"db.name":                  "CONTRACTOCR_DB_NAME",
		"db.sslmode":               "CONTRACTOCR_DB_SSLMODE",
		"db.max_open":              "CONTRACTOCR_DB_MAX_OPEN",
		"db.max_idle":              "CONTRACTOCR_DB_MAX_IDLE",
		"db.conn_max_lifetime_min": "CONTRACTOCR_DB_CONN_MAX_LIFETIME_MIN",
		"s3.region":                "CONTRACTOCR_S3_REGION",
		"s3.bucket":                "CONTRACTOCR_S3_BUCKET",
		"s3.endpoint":              "CONTRACTOCR_S3_ENDPOINT",
		"s3.access_key":            "CONTRACTOCR_S3_ACCESS_KEY",
		"s3.secret_key":            "CONTRACTOCR_S3_SECRET_KEY",
		"s3.presign_expiry":        "CONTRACTOCR_S3_PRESIGN_EXPIRY",
		"log.level":                "CONTRACTOCR_LOG_LEVEL",
		"log.format":               "CONTRACTOCR_LOG_FORMAT",
		"cors.allowed_origins":     "CONTRACTOCR_CORS_ALLOWED_ORIGINS",
		"upload.max_file_size_mb":  "CONTRACTOCR_UPLOAD_MAX_FILE_SIZE_MB",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CONTRACTOCR_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CONTRACTOCR_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),

		ConnMaxLifetimeMin: v.GetInt("db.conn_max_lifetime_min"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}

	return cfg, nil
}
