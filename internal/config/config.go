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
	Env   string
	Port  int
	DBURL string

	// token signing
	JWTSecret     string
	JWTTTLMinutes int

	// seeded administrator account
	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminMobile   string

	// role -> initial balance on approval
	BalanceUser  int64
	BalanceAgent int64

	// The observed design left the pending/approve routes unauthenticated.
	// Default is the locked-down variant; set ADMIN_ROUTES_OPEN=true to get
	// the permissive one back.
	AdminRoutesOpen bool

	// strict cash-in validation (agent role check, positive amount)
	StrictCashIn bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimit         int
	RateWindowSeconds int

	OtelEndpoint string
	CORSOrigins  []string
}

func Load() Config {
	// .env is a convenience for local runs; absence is not an error
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		JWTSecret:     getEnv("JWT_SECRET", "dev-only-secret"),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminMobile:   getEnv("ADMIN_MOBILE", ""),

		BalanceUser:  getEnvInt64("BALANCE_USER", 40),
		BalanceAgent: getEnvInt64("BALANCE_AGENT", 10000),

		AdminRoutesOpen: getEnvBool("ADMIN_ROUTES_OPEN", false),
		StrictCashIn:    getEnvBool("STRICT_CASH_IN", true),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimit:         getEnvInt("RATE_LIMIT", 20),
		RateWindowSeconds: getEnvInt("RATE_WINDOW_SECONDS", 60),

		OtelEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", ""),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "")),
	}
}

func buildDBURL() string {
	if url := getEnv("DATABASE_URL", ""); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "mobicash")
	pass := getEnv("DB_PASSWORD", "mobicash")
	name := getEnv("DB_NAME", "mobicash")
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

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.ParseInt(v, 10, 64)

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
			fmt.Println(err)
			return fallback
		}

		return b
	}
	return fallback
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
