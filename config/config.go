package config

import (
	"os"
	"strconv"
	"strings"

	"fmasite/internal/editor"
	"fmasite/internal/media"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type Config struct {
	DB         DBConfig
	Storage    StorageConfig
	JWTSecret  string
	HTTPAddr   string
	CORSOrigin string
	SiteName   string
	LogLevel   string

	GeminiAPIKey string
	GeminiModel  string

	HistoryDepth   int
	MaxImageWidth  int
	JPEGQuality    int
	StrictOptimize bool
}

// LoadDotEnv reads .env into the environment if the file exists.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		DB: DBConfig{
			User:     env("user", ""),
			Password: env("password", ""),
			Host:     env("host", "localhost"),
			Port:     env("port", "5432"),
			Name:     env("dbname", "postgres"),
			SSLMode:  env("DB_SSLMODE", "require"),
		},
		Storage: StorageConfig{
			Endpoint:  env("STORAGE_ENDPOINT", ""),
			AccessKey: env("STORAGE_ACCESS_KEY", ""),
			SecretKey: env("STORAGE_SECRET_KEY", ""),
			Bucket:    env("STORAGE_BUCKET", "images"),
			UseSSL:    envBool("STORAGE_USE_SSL", true),
			PublicURL: env("STORAGE_PUBLIC_URL", ""),
		},
		JWTSecret:  env("SUPABASE_JWT_SECRET", ""),
		HTTPAddr:   env("HTTP_ADDR", ":8080"),
		CORSOrigin: env("CORS_ORIGIN", "*"),
		SiteName:   env("SITE_NAME", "FMA"),
		LogLevel:   env("LOG_LEVEL", "info"),

		GeminiAPIKey: env("GEMINI_API_KEY", ""),
		GeminiModel:  env("GEMINI_MODEL", ""),

		HistoryDepth:   envInt("EDITOR_HISTORY_DEPTH", editor.DefaultHistoryDepth),
		MaxImageWidth:  envInt("MEDIA_MAX_WIDTH", media.DefaultMaxWidth),
		JPEGQuality:    envInt("MEDIA_JPEG_QUALITY", media.DefaultJPEGQuality),
		StrictOptimize: envBool("MEDIA_STRICT_OPTIMIZE", false),
	}
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(env(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(env(key, ""))
	if err != nil {
		return fallback
	}
	return b
}
