package config

import (
	"testing"
	"time"

	"academy/backend/progression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "store", cfg.LedgerMode)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 60, cfg.QuizPassPercent)
	assert.Equal(t, progression.DefaultCurve, cfg.Curve())
	assert.Equal(t, progression.DefaultMilestones, cfg.Milestones())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("LEVEL_CURVE_BASE", "50")
	t.Setenv("STREAK_MILESTONES", "3,10")
	t.Setenv("DAILY_XP_CAP", "500")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, progression.Curve{Base: 50}, cfg.Curve())
	assert.Equal(t, progression.Milestones{3, 10}, cfg.Milestones())
	assert.Equal(t, uint64(500), cfg.DailyXPCap)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"JWT_TTL", "forever"},
		{"LEVEL_CURVE_BASE", "-1"},
		{"QUIZ_PASS_PERCENT", "150"},
		{"STREAK_MILESTONES", "30,7"},
		{"LEDGER_MODE", "chain"},
		{"LEDGER_MODE", "indexer"},
	}

	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
