package cli

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obras/internal/config"
)

func TestSetupLogger_FallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("loud", true, &buf)

	assert.Contains(t, buf.String(), "Falling back to info level")
	buf.Reset()
	logger.Debug("hidden")
	assert.Zero(t, buf.Len())
	logger.Info("shown")
	assert.Contains(t, buf.String(), `"component":"app"`)
}

func TestBootstrap_MemoryBackend(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("error", false, &buf)
	cfg := &config.Config{
		DataBackend:     "memory",
		ReportCacheSize: 4,
		ReportCacheTTL:  time.Minute,
		// a publisher is requested but AMQP is not configured
	}

	rt, err := Bootstrap(context.Background(), cfg, logger, Options{Publisher: true})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, rt.Close()) })

	assert.Len(t, rt.Service.Catalog().Projects, 4)
	_, err = rt.Renderers.Renderer()
	assert.NoError(t, err)

	first, err := rt.Service.Report(context.Background(), "1")
	require.NoError(t, err)
	second, err := rt.Service.Report(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data)
	assert.Zero(t, rt.Caches.Sweep())
}

func TestBootstrap_YAMLBackendMissingFile(t *testing.T) {
	logger := SetupLogger("error", false, &bytes.Buffer{})
	cfg := &config.Config{DataBackend: "yaml", SeedFile: "/nonexistent/obras.yaml"}

	_, err := Bootstrap(context.Background(), cfg, logger, Options{})
	assert.Error(t, err)
}

func TestBootstrap_SQLiteBackend(t *testing.T) {
	logger := SetupLogger("error", false, &bytes.Buffer{})
	dir := t.TempDir()
	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: dir + string(os.PathSeparator) + "obras.db"}

	rt, err := Bootstrap(context.Background(), cfg, logger, Options{})
	require.NoError(t, err)
	assert.NoError(t, rt.Close())
	// closing twice is a no-op
	assert.NoError(t, rt.Close())
}
