package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL string

	CartTTL            time.Duration
	PendingTTL         time.Duration
	CleanupInterval    time.Duration
	Currency           string
	DownpaymentPercent int64
}

// Load reads a .env file when one is present, then the process environment.
// Values already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Env:  envStr("APP_ENV", "development"),
		Port: envStr("APP_PORT", "8080"),

		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envStr("DB_PORT", "5432"),
		DBUser:     envStr("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     envStr("DB_NAME", "resort_booking"),

		RedisHost:     envStr("REDIS_HOST", "localhost"),
		RedisPort:     envStr("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		Currency:    strings.ToUpper(envStr("CURRENCY", "PHP")),
	}

	var err error
	if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.CartTTL, err = envDuration("CART_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.PendingTTL, err = envDuration("PENDING_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CleanupInterval, err = envDuration("CLEANUP_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}

	pct, err := envInt("DOWNPAYMENT_PERCENT", 20)
	if err != nil {
		return Config{}, err
	}
	if pct < 0 || pct > 100 {
		return Config{}, fmt.Errorf("DOWNPAYMENT_PERCENT must be between 0 and 100, got %d", pct)
	}
	cfg.DownpaymentPercent = int64(pct)

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q", key, v)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, v)
	}
	return d, nil
}
