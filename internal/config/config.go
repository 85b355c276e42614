package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/webtwist/internal/security"
	"github.com/joho/godotenv"
)

type Config struct {
	Env     string
	Port    int
	Storage string // "postgres" or "memory"
	DBURL   string

	JWTSecret   string
	JWTTTLHours int

	AdminEmail    string
	AdminPassword string
	AllowSignup   bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins        []string
	RateLimitPerMinute int
	MaxBodyBytes       int64

	OTelEnabled     bool
	OTelEndpoint    string
	OTelSampleRatio float64

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	WorkerHealthPort int
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set outside dev and test")

func Load() Config {
	// a missing .env file is fine; real deployments use the process environment
	_ = godotenv.Load()

	return Config{
		Env:     getEnv("APP_ENV", "dev"),
		Port:    getEnvInt("PORT", 8080),
		Storage: getEnv("STORAGE", "postgres"),
		DBURL:   getEnv("DB_URL", buildDBURL()),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AllowSignup:   getEnvBool("ALLOW_SIGNUP", true),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSOrigins:        getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		OTelEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:    getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OTelSampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1),

		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),

		WorkerHealthPort: getEnvInt("WORKER_HEALTH_PORT", 8081),
	}
}

// Validate rejects configurations that would be unsafe to serve with.
// In dev and test a fixed secret is substituted so the API boots without setup.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if c.Env != "dev" && c.Env != "test" {
			return ErrMissingJWTSecret
		}
		c.JWTSecret = "dev-only-insecure-secret"
	}

	if c.Storage != "" && c.Storage != "postgres" && c.Storage != "memory" {
		return fmt.Errorf("STORAGE must be postgres or memory, got %q", c.Storage)
	}

	if !security.PasswordFits(c.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD must be at most %d bytes", security.MaxPasswordBytes)
	}

	if c.JWTTTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive, got %d", c.JWTTTLHours)
	}

	return nil
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func (c Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c Config) UseMemoryStorage() bool {
	return c.Storage == "memory"
}

func (c Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "webtwist")
	pass := getEnv("DB_PASSWORD", "webtwist")
	name := getEnv("DB_NAME", "webtwist")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fallback
		}
		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
