package conf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgecraft/audiograph/internal/conf"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	settings, err := conf.Load()
	require.NoError(t, err)
	require.Equal(t, conf.DefaultSampleRate, settings.Engine.SampleRate)
	require.Equal(t, conf.MaxVoices, settings.Engine.MaxVoices)
	require.Equal(t, conf.DefaultStreamChunkSize, settings.Streaming.ChunkSize)
	require.Equal(t, conf.DefaultPrefetchQueueDepth, settings.Streaming.PrefetchQueueDepth)

	require.FileExists(t, filepath.Join(dir, "config.yaml"))
}

func TestGetSettingsReflectsLastLoad(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	settings, err := conf.Load()
	require.NoError(t, err)
	require.Same(t, settings, conf.GetSettings())
}
