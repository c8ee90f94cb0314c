package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViperFromBytes(t *testing.T) {
	data := []byte(`
app:
  name: gotp-test
  server:
    http:
      read_timeout_seconds: 7
storage:
  driver: sqlite
snapshot:
  encryption_key: "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="
instrument:
  log_mask_fields: " secret, ,uri "
  trace_sample_ratio: 0.5
`)

	cfg, err := NewViperFromBytes("yaml", data)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cfg.Close() })

	assert.Equal(t, "gotp-test", cfg.GetString("app.name"))
	assert.Equal(t, 7*time.Second, cfg.GetSecond("app.server.http.read_timeout_seconds"))
	assert.Equal(t, "sqlite", cfg.GetString("storage.driver"))
	assert.Equal(t, []string{"secret", "uri"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.InDelta(t, 0.5, cfg.GetFloat64("instrument.trace_sample_ratio"), 0.0001)
	assert.Len(t, cfg.GetBinary("snapshot.encryption_key"), 32)
	assert.False(t, cfg.GetBool("instrument.enabled"))
}

func TestNewViperFromBytes_Defaults(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte("app: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, "gotp", cfg.GetString("app.name"))
	assert.Equal(t, "file", cfg.GetString("storage.driver"))
	assert.Equal(t, time.Second, cfg.GetSecond("stream.tick_seconds"))
	assert.Equal(t, 32, cfg.GetInt("app.server.max_goroutine"))
	assert.Nil(t, cfg.GetBinary("snapshot.encryption_key"))
	assert.Empty(t, cfg.GetArray("missing.key"))
}

func TestNewViperFromBytes_EnvOverride(t *testing.T) {
	t.Setenv("GOTP_STORAGE_DRIVER", "memory")

	cfg, err := NewViperFromBytes("yaml", []byte("storage:\n  driver: file\n"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.GetString("storage.driver"))
}

func TestNewViperFromBytes_Errors(t *testing.T) {
	_, err := NewViperFromBytes(" ", nil)
	assert.ErrorIs(t, err, ErrConfigType)

	_, err = NewViperFromBytes("yaml", []byte("app: [unclosed"))
	assert.Error(t, err)
}

func TestGetBinary_Malformed(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte("snapshot:\n  encryption_key: \"%%%\"\n"))
	require.NoError(t, err)
	assert.Nil(t, cfg.GetBinary("snapshot.encryption_key"))
}

func TestNewViper_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("app:\n  name: from-file\n"), 0o600))

	cfg, err := NewViper(file, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GetString("app.name"))

	_, err = NewViper(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}
