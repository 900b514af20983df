package applog_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgecraft/audiograph/internal/applog"
)

func TestForAttachesComponent(t *testing.T) {
	logger := applog.For("graph")
	assert.NotNil(t, logger)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, applog.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, applog.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, applog.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, applog.ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, applog.ParseLevel("bogus"))
}

func TestGlobalFallback(t *testing.T) {
	assert.NotPanics(t, func() {
		applog.Global().Info("smoke test")
	})
}
