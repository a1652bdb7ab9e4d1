package config

import (
	"os"
	"strconv"
)

// Store backends selectable via STORE_BACKEND.
const (
	StoreBackendJSONFile = "jsonfile"
	StoreBackendPostgres = "postgres"
)

// DatabaseConfig holds PostgreSQL connection settings for the postgres store backend.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for uploaded file content.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StoreConfig selects the document store backend. The jsonfile backend keeps
// the whole collection in a single local JSON document; postgres keeps one
// row per record with an insertion-order column.
type StoreConfig struct {
	Backend        string
	CollectionPath string
}

// ExtractorConfig points at the metadata extraction service. An empty URL
// means the capability is absent and every file gets default metadata.
type ExtractorConfig struct {
	URL        string
	TimeoutSec int
}

// ConnectorConfig points at the connector gateway that serves departmental
// document feeds.
type ConnectorConfig struct {
	BaseURL    string
	TimeoutSec int
}

// NATSConfig holds event broker settings. An empty URL disables publishing.
type NATSConfig struct {
	URL        string
	Subject    string
	ClientName string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Store     StoreConfig
	Extractor ExtractorConfig
	Connector ConnectorConfig
	NATS      NATSConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Store: StoreConfig{
			Backend:        getEnv("STORE_BACKEND", StoreBackendJSONFile),
			CollectionPath: getEnv("STORE_COLLECTION_PATH", "data/documents.json"),
		},
		Extractor: ExtractorConfig{
			URL:        getEnv("EXTRACTOR_URL", ""),
			TimeoutSec: getEnvInt("EXTRACTOR_TIMEOUT_SEC", 15),
		},
		Connector: ConnectorConfig{
			BaseURL:    getEnv("CONNECTOR_BASE_URL", ""),
			TimeoutSec: getEnvInt("CONNECTOR_TIMEOUT_SEC", 30),
		},
		NATS: NATSConfig{
			URL:        getEnv("NATS_URL", ""),
			Subject:    getEnv("NATS_SUBJECT", "dochub.document.ingested"),
			ClientName: getEnv("NATS_CLIENT_NAME", "dochub"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
