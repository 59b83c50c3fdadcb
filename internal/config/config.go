package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		PublicURL      string   `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
		UploadDir      string   `yaml:"upload_dir" env:"SERVER_UPLOAD_DIR"`
		MaxUploadBytes int64    `yaml:"max_upload_bytes" env:"SERVER_MAX_UPLOAD_BYTES"`
		Department     string   `yaml:"department" env:"SERVER_DEPARTMENT"`
		TokenPurge     string   `yaml:"token_purge_interval" env:"SERVER_TOKEN_PURGE_INTERVAL"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Mongo struct {
		URI        string `yaml:"uri" env:"MONGO_URI"`
		Database   string `yaml:"database" env:"MONGO_DATABASE"`
		Collection string `yaml:"collection" env:"MONGO_COLLECTION"`
	} `yaml:"mongo"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	OAuth struct {
		ClientID      string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
		ClientSecret  string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
		RedirectURL   string `yaml:"redirect_url" env:"GOOGLE_REDIRECT_URL"`
		AllowedDomain string `yaml:"allowed_domain" env:"GOOGLE_ALLOWED_DOMAIN"`
		OpenerOrigin  string `yaml:"opener_origin" env:"GOOGLE_OPENER_ORIGIN"`
	} `yaml:"oauth"`

	Cloudinary struct {
		URL    string `yaml:"url" env:"CLOUDINARY_URL"`
		Folder string `yaml:"folder" env:"CLOUDINARY_FOLDER"`
	} `yaml:"cloudinary"`

	Kafka struct {
		Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS"`
		Topic   string   `yaml:"topic" env:"KAFKA_TOPIC"`
	} `yaml:"kafka"`

	Seed struct {
		MentorEmail    string `yaml:"mentor_email" env:"SEED_MENTOR_EMAIL"`
		MentorPassword string `yaml:"mentor_password" env:"SEED_MENTOR_PASSWORD"`
		MentorName     string `yaml:"mentor_name" env:"SEED_MENTOR_NAME"`
		Semester       string `yaml:"semester" env:"SEED_MENTOR_SEMESTER"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a .env file, a YAML file and
// environment variables, in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := overrideFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8000"
	config.Server.Mode = "development"
	config.Server.AllowedOrigins = []string{"http://localhost:3000"}
	config.Server.PublicURL = "http://localhost:8000"
	config.Server.UploadDir = "./uploads"
	config.Server.MaxUploadBytes = 5 << 20
	config.Server.Department = "Department of Computer Engineering"
	config.Server.TokenPurge = "1h"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "mentorship"
	config.Database.SSLMode = "disable"
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "./migrations"

	config.Mongo.URI = "mongodb://localhost:27017"
	config.Mongo.Database = "mentorship"
	config.Mongo.Collection = "users"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "mentorship"

	config.Cloudinary.Folder = "users"

	config.Kafka.Topic = "record-events"

	config.Seed.MentorName = "Default Mentor"
	config.Seed.Semester = "sem1"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection lifetime format: %w", err)
	}

	if config.Mongo.URI == "" {
		return fmt.Errorf("mongo uri is required")
	}

	if config.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	if (config.OAuth.ClientID == "") != (config.OAuth.ClientSecret == "") {
		return fmt.Errorf("oauth client id and secret must be set together")
	}

	if config.Seed.MentorEmail != "" && config.Seed.MentorPassword == "" {
		return fmt.Errorf("seed mentor password is required when a seed mentor email is set")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// AccessTokenTTL returns the parsed access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWT.AccessTokenExpiration)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// OAuthEnabled reports whether Google sign-in is configured
func (c *Config) OAuthEnabled() bool {
	return c.OAuth.ClientID != "" && c.OAuth.ClientSecret != ""
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
