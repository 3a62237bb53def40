package main

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/subscriptions/internal/app"
)

func TestSetupLogger(t *testing.T) {
	defer log.SetFormatter(&log.TextFormatter{})
	defer log.SetLevel(log.InfoLevel)

	cfg := app.DefaultConfig()
	cfg.LogFormat = "json"
	cfg.LogLevel = "debug"
	setupLogger(cfg)
	_, isJSON := log.StandardLogger().Formatter.(*log.JSONFormatter)
	require.True(t, isJSON)
	require.Equal(t, log.DebugLevel, log.GetLevel())

	cfg.LogFormat = "text"
	cfg.LogLevel = "loud"
	setupLogger(cfg)
	_, isText := log.StandardLogger().Formatter.(*log.TextFormatter)
	require.True(t, isText)
	require.Equal(t, log.InfoLevel, log.GetLevel())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SUBS_LOCALE=pt_BR\n"), 0o600))
	t.Setenv("SUBS_LOCALE", "")
	require.NoError(t, os.Unsetenv("SUBS_LOCALE"))

	loadDotEnv(path)
	require.Equal(t, "pt_BR", os.Getenv("SUBS_LOCALE"))

	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "pt_BR", cfg.Locale)

	// Отсутствующий файл не прерывает запуск.
	loadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}
