package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port              string
	Environment       string
	SupabaseURL       string
	SupabaseKey       string
	SupabaseDBURL     string
	SupabaseJWKSURL   string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	SupabaseJWTSecret string // Legacy HS256 secret; when set it replaces JWKS verification
	CORSOrigins       string
	TablePrefix       string
	// Object storage (S3 API; Supabase Storage exposes one at /storage/v1/s3)
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageRegion    string
	StorageUseSSL    bool
	StorageBucket    string
	BucketPolicyFile string
	// Session revocation (optional)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		SupabaseURL:       supabaseURL,
		SupabaseKey:       getEnv("SUPABASE_KEY", ""),
		SupabaseDBURL:     getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL:   supabaseURL + "/auth/v1/.well-known/jwks.json",
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:5173"),
		TablePrefix:       getTablePrefix(env),
		StorageEndpoint:   getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey:  getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey:  getEnv("STORAGE_SECRET_KEY", ""),
		StorageRegion:     getEnv("STORAGE_REGION", ""),
		StorageUseSSL:     getEnv("STORAGE_USE_SSL", "false") == "true",
		StorageBucket:     getEnv("STORAGE_BUCKET", "files"),
		BucketPolicyFile:  getEnv("BUCKET_POLICY_FILE", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		LogDir:            getEnv("LOG_DIR", ""),
		LogMaxFiles:       getEnvInt("LOG_MAX_FILES", 10),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix, ok := os.LookupEnv("TABLE_PREFIX"); ok {
		return prefix
	}

	switch env {
	case "prod":
		return ""
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
