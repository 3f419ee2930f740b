package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "123:abc", cfg.TelegramToken)
	require.Equal(t, "https://www.lunch-card.ch/saldo/saldo.aspx?crd=", cfg.SaldoBaseURL)
	require.Equal(t, "0 14 * * *", cfg.CheckSchedule)
	require.Equal(t, 10*time.Second, cfg.SnapshotInterval)
	require.Equal(t, 4, cfg.CheckConcurrency)
	require.Equal(t, "data.json", cfg.DataFile)
	require.Empty(t, cfg.MongoURI)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("CARD_CHECK_CRON", "*/30 * * * *")
	t.Setenv("SNAPSHOT_INTERVAL", "1m")
	t.Setenv("CHECK_CONCURRENCY", "8")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "*/30 * * * *", cfg.CheckSchedule)
	require.Equal(t, time.Minute, cfg.SnapshotInterval)
	require.Equal(t, 8, cfg.CheckConcurrency)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	t.Setenv("CHECK_CONCURRENCY", "0")
	_, err := Load()
	require.Error(t, err)
	t.Setenv("CHECK_CONCURRENCY", "4")

	t.Setenv("SNAPSHOT_INTERVAL", "-1s")
	_, err = Load()
	require.Error(t, err)
	t.Setenv("SNAPSHOT_INTERVAL", "10s")

	t.Setenv("LUNCHCHECK_BASE_URL", "   ")
	_, err = Load()
	require.Error(t, err)
}
