package config

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-delivery-service/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)
	for _, key := range []string{"PORT", "HOME_PATH", "TICK_INTERVAL", "SCORE_PER_CORRECT", "CASDOOR_ENABLED", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/", cfg.HomePath)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 0.25, cfg.ScorePerCorrect)
	assert.False(t, cfg.Casdoor.Enabled)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("HOME_PATH", "/dashboard")
	t.Setenv("TICK_INTERVAL", "250ms")
	t.Setenv("SCORE_PER_CORRECT", "0.5")
	t.Setenv("ASSESSMENT_CACHE_TTL", "not-a-duration")
	t.Setenv("CASDOOR_ENABLED", "true")
	t.Setenv("AUTO_MIGRATE", "maybe")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "/dashboard", cfg.HomePath)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 0.5, cfg.ScorePerCorrect)
	assert.Equal(t, 10*time.Minute, cfg.AssessmentCacheTTL)
	assert.True(t, cfg.Casdoor.Enabled)
	assert.True(t, cfg.AutoMigrate)
}

func TestEventConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := EventConfig{KafkaBrokers: "broker-1:9092, broker-2:9092"}
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.GetKafkaBrokers())

	for _, cfg := range []EventConfig{
		{Enabled: false, Publisher: "kafka"},
		{Enabled: true, Publisher: "mock"},
		{Enabled: true, Publisher: "rabbitmq"},
	} {
		publisher, err := cfg.CreateEventPublisher(logger)
		require.NoError(t, err)
		assert.IsType(t, &events.MockEventPublisher{}, publisher)
	}
}

// chdirTemp switches into a fresh temp dir and restores the previous working
// directory on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
