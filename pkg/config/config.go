package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store drivers understood by store.Open.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreS3       = "s3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	S3       S3Config
	Remote   RemoteConfig
	Sync     SyncConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
	Mock     MockConfig
}

// StoreConfig selects the persisted record store backend.
type StoreConfig struct {
	Driver     string
	KeyPrefix  string
	FileDir    string
	SQLitePath string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// S3Config points the s3 store driver at a bucket (AWS or MinIO).
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	PathStyle bool
	AccessKey string
	SecretKey string
}

// RemoteConfig configures the REST service collections synchronize with.
type RemoteConfig struct {
	BaseURL   string
	Timeout   time.Duration
	LocalOnly []string
}

// SyncConfig drives the background resync of pending records.
type SyncConfig struct {
	Enabled  bool
	Interval time.Duration
	Workers  int
	Retries  int
}

// AuthConfig guards mutation routes with an admin JWT.
type AuthConfig struct {
	Enabled           bool
	Secret            string
	Expiration        time.Duration
	AdminEmail        string
	AdminPasswordHash string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MockConfig configures the standalone mock REST service.
type MockConfig struct {
	Port      int
	KeyPrefix string
	Latency   time.Duration
}

// RemoteEnabled reports whether the named entity synchronizes with the remote service.
func (c RemoteConfig) RemoteEnabled(entity string) bool {
	if c.BaseURL == "" {
		return false
	}
	for _, name := range c.LocalOnly {
		if strings.EqualFold(name, entity) {
			return false
		}
	}
	return true
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{
		Driver:     strings.ToLower(v.GetString("STORE_DRIVER")),
		KeyPrefix:  v.GetString("STORE_KEY_PREFIX"),
		FileDir:    v.GetString("STORE_FILE_DIR"),
		SQLitePath: v.GetString("SQLITE_PATH"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.S3 = S3Config{
		Bucket:    v.GetString("S3_BUCKET"),
		Region:    v.GetString("S3_REGION"),
		Endpoint:  v.GetString("S3_ENDPOINT"),
		Prefix:    v.GetString("S3_PREFIX"),
		PathStyle: v.GetBool("S3_PATH_STYLE"),
		AccessKey: v.GetString("S3_ACCESS_KEY_ID"),
		SecretKey: v.GetString("S3_SECRET_ACCESS_KEY"),
	}

	cfg.Remote = RemoteConfig{
		BaseURL:   strings.TrimRight(v.GetString("REMOTE_BASE_URL"), "/"),
		Timeout:   parseDuration(v.GetString("REMOTE_TIMEOUT"), 5*time.Second),
		LocalOnly: splitAndTrim(v.GetString("REMOTE_LOCAL_ONLY")),
	}

	cfg.Sync = SyncConfig{
		Enabled:  v.GetBool("SYNC_ENABLED"),
		Interval: parseDuration(v.GetString("SYNC_INTERVAL"), time.Minute),
		Workers:  v.GetInt("SYNC_WORKERS"),
		Retries:  v.GetInt("SYNC_RETRIES"),
	}

	cfg.Auth = AuthConfig{
		Enabled:           v.GetBool("AUTH_ENABLED"),
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		AdminEmail:        v.GetString("ADMIN_EMAIL"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Mock = MockConfig{
		Port:      v.GetInt("MOCK_PORT"),
		KeyPrefix: v.GetString("MOCK_KEY_PREFIX"),
		Latency:   parseDuration(v.GetString("MOCK_LATENCY"), 0),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORE_DRIVER", StoreFile)
	v.SetDefault("STORE_KEY_PREFIX", "dashboard")
	v.SetDefault("STORE_FILE_DIR", "./data")
	v.SetDefault("SQLITE_PATH", "./data/dashboard.db")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_dashboard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_PREFIX", "collections/")
	v.SetDefault("S3_PATH_STYLE", false)
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")

	v.SetDefault("REMOTE_BASE_URL", "")
	v.SetDefault("REMOTE_TIMEOUT", "5s")
	v.SetDefault("REMOTE_LOCAL_ONLY", "attendance,settings")

	v.SetDefault("SYNC_ENABLED", true)
	v.SetDefault("SYNC_INTERVAL", "1m")
	v.SetDefault("SYNC_WORKERS", 1)
	v.SetDefault("SYNC_RETRIES", 3)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("ADMIN_EMAIL", "admin@school.local")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MOCK_PORT", 3001)
	v.SetDefault("MOCK_KEY_PREFIX", "mockapi")
	v.SetDefault("MOCK_LATENCY", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
