package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB          DBConfig
	Server      ServerConfig
	Seeder      SeederConfig
	Storage     StorageConfig
	ImageSource ImageSourceConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

const defaultDBName = "citylist"

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SeederConfig holds settings for the initial city import
type SeederConfig struct {
	CSVPath   string
	BatchSize int
	Workers   int
}

// StorageConfig holds settings for the image store
type StorageConfig struct {
	ImagesDir string
}

// ImageSourceConfig holds settings for the remote image host
type ImageSourceConfig struct {
	AuthToken      string
	UserAgent      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		// SQLite in-memory database
		if c.Name != "" && c.Name != defaultDBName {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	// PostgreSQL connection string
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// MigrationsSource returns the golang-migrate source URL for the configured dialect,
// relative to dir.
func (c DBConfig) MigrationsSource(dir string) string {
	if c.IsMemory() {
		return "file://" + dir + "/sqlite"
	}
	return "file://" + dir + "/postgres"
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	origins := getEnvAsSlice("CORS_ALLOWED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "citylist"),
			Password: getEnv("DB_PASSWORD", "citylist_password"),
			Name:     getEnv("DB_NAME", defaultDBName),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port:               getEnv("APP_PORT", "8080"),
			CORSAllowedOrigins: origins,
		},
		Seeder: SeederConfig{
			CSVPath:   getEnv("SEEDER_CSV_PATH", "data/cities.csv"),
			BatchSize: getEnvAsInt("SEEDER_BATCH_SIZE", 50),
			Workers:   getEnvAsInt("SEEDER_WORKERS", runtime.NumCPU()),
		},
		Storage: StorageConfig{
			ImagesDir: getEnv("IMAGES_DIR", "images/cities"),
		},
		ImageSource: ImageSourceConfig{
			AuthToken:      getEnv("WIKIMEDIA_AUTH_TOKEN", ""),
			UserAgent:      getEnv("WIKIMEDIA_USER_AGENT", "city-list-service/1.0"),
			ConnectTimeout: getEnvAsMillis("WIKIMEDIA_CONNECT_TIMEOUT_MS", 5000),
			ReadTimeout:    getEnvAsMillis("WIKIMEDIA_READ_TIMEOUT_MS", 10000),
		},
	}

	if config.Seeder.BatchSize <= 0 {
		return nil, fmt.Errorf("SEEDER_BATCH_SIZE must be positive, got %d", config.Seeder.BatchSize)
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Millisecond
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
