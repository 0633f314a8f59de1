package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	JWTSecret           string
	JWTAccessTTLMinutes int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// initial employee account, seeded on startup when set
	SeedEmployeeEmail    string
	SeedEmployeePassword string
	SeedEmployeeName     string

	// when true, login rejects disabled accounts instead of letting them
	// authenticate like the original behavior does
	RejectDisabledLogin bool

	AllowedOrigins []string

	OTLPEndpoint string
}

func Load() Config {
	// best effort; real deployments set env vars directly
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		DBURL: buildDBURL(),

		JWTSecret:           getEnv("JWT_SECRET", "dev-only-secret"),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 24*60),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SeedEmployeeEmail:    getEnv("SEED_EMPLOYEE_EMAIL", ""),
		SeedEmployeePassword: getEnv("SEED_EMPLOYEE_PASSWORD", ""),
		SeedEmployeeName:     getEnv("SEED_EMPLOYEE_NAME", "Workshop Employee"),

		RejectDisabledLogin: getEnvBool("REJECT_DISABLED_LOGIN", false),

		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "")),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
	}
}

func (c Config) JWTAccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "repairhub")
	pass := getEnv("DB_PASSWORD", "repairhub")
	name := getEnv("DB_NAME", "repairhub")
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
			fmt.Println(err)
			return fallback
		}

		return num
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

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
