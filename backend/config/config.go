package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"academy/backend/progression"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	JWTSecret     string
	JWTTTL        time.Duration
	ServerPort    string
	CORSOrigins   string
	SignerKeyHash string

	LedgerMode     string // store or indexer
	IndexerURL     string
	IndexerTimeout time.Duration
	RedisAddr      string
	CacheTTL       time.Duration

	LevelCurveBase   uint64
	StreakMilestones progression.Milestones
	QuizPassPercent  int
	DailyXPCap       uint64

	LogFormat string
	LogLevel  string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "academy"),
		SQLitePath:    getEnv("SQLITE_PATH", "academy.db"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),
		SignerKeyHash: getEnv("SIGNER_KEY_HASH", ""),
		LedgerMode:    getEnv("LEDGER_MODE", "store"),
		IndexerURL:    getEnv("INDEXER_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.JWTTTL, err = getEnvDuration("JWT_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.IndexerTimeout, err = getEnvDuration("INDEXER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.LevelCurveBase, err = getEnvUint("LEVEL_CURVE_BASE", progression.DefaultBase); err != nil {
		return nil, err
	}
	if cfg.DailyXPCap, err = getEnvUint("DAILY_XP_CAP", 0); err != nil {
		return nil, err
	}
	if cfg.QuizPassPercent, err = getEnvInt("QUIZ_PASS_PERCENT", 60); err != nil {
		return nil, err
	}
	if cfg.QuizPassPercent < 0 || cfg.QuizPassPercent > 100 {
		return nil, fmt.Errorf("QUIZ_PASS_PERCENT must be within 0-100, got %d", cfg.QuizPassPercent)
	}

	cfg.StreakMilestones = progression.DefaultMilestones
	if raw, ok := os.LookupEnv("STREAK_MILESTONES"); ok {
		if cfg.StreakMilestones, err = progression.ParseMilestones(raw); err != nil {
			return nil, fmt.Errorf("STREAK_MILESTONES: %w", err)
		}
	}

	switch cfg.LedgerMode {
	case "store":
	case "indexer":
		if cfg.IndexerURL == "" {
			return nil, errors.New("INDEXER_URL is required when LEDGER_MODE=indexer")
		}
	default:
		return nil, fmt.Errorf("unknown LEDGER_MODE %q", cfg.LedgerMode)
	}

	return cfg, nil
}

// Curve returns the configured level curve.
func (c *Config) Curve() progression.Curve {
	return progression.Curve{Base: c.LevelCurveBase}
}

// Milestones returns the configured streak milestones.
func (c *Config) Milestones() progression.Milestones {
	if len(c.StreakMilestones) == 0 {
		return progression.DefaultMilestones
	}
	return c.StreakMilestones
}

// AllowedOrigins splits CORSOrigins for logging and validation.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvUint(key string, defaultValue uint64) (uint64, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
