package application

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/protoframe-go/internal/framing/layout"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunLoadsFramingConfig(t *testing.T) {
	path := writeConfig(t, `
framing:
  format: serial2
  max-payload: 128
  chunk-size: 1024

logging:
  receiver:
    level: debug
`)
	t.Setenv("PROTOFRAME_CONFIG_FILE_PATH", path)

	app := New()
	require.NoError(t, app.Run())

	opts, err := app.Framing()
	require.NoError(t, err)
	assert.Equal(t, "serial2", opts.Format)
	assert.Equal(t, 128, opts.MaxPayload)
	assert.Equal(t, 1024, opts.ChunkSize)

	format, err := opts.Layout()
	require.NoError(t, err)
	assert.Equal(t, layout.FormatSerial2, format)

	// logging 段落里声明过的名字返回专属 Logger，其余退回全局。
	assert.NotNil(t, app.Logger("receiver"))
	assert.NotNil(t, app.Logger("unknown"))
}

func TestRunMissingConfigFile(t *testing.T) {
	t.Setenv("PROTOFRAME_CONFIG_FILE_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	app := New()
	assert.Error(t, app.Run())
}

func TestFramingWithoutSection(t *testing.T) {
	path := writeConfig(t, "logging: {}\n")
	t.Setenv("PROTOFRAME_CONFIG_FILE_PATH", path)

	app := New()
	require.NoError(t, app.Run())

	opts, err := app.Framing()
	require.NoError(t, err)
	assert.Empty(t, opts.Format)
	assert.Zero(t, opts.MaxPayload)
}
