package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestNew(t *testing.T) {
	cases := []struct {
		name string
		cfg  *Config
	}{
		{"defaults", DefaultConfig()},
		{"json to stderr", &Config{Level: "debug", Format: "json", Output: "stderr", TimeFormat: "2006-01-02"}},
		{"warn console", &Config{Level: "warn", Format: "console", Output: "stdout", TimeFormat: "15:04:05"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := New(tc.cfg)
			require.NoError(t, err)
			require.NotNil(t, log)
			log.Info("probe")
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(&Config{Level: "info", Format: "json", Output: path, TimeFormat: "2006-01-02"})
	require.NoError(t, err)

	log.Info("delivery started")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "delivery started")
}

func TestNew_FileOutputFallsBackToStdout(t *testing.T) {
	// An unopenable path must not fail logger construction
	log, err := New(&Config{Level: "info", Format: "json", Output: "/nonexistent-dir/app.log", TimeFormat: "2006-01-02"})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"WARN", zapcore.WarnLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseLevel(tc.in), tc.in)
	}
}

func TestSync(t *testing.T) {
	log, err := New(&Config{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "s.log"), TimeFormat: "2006-01-02"})
	require.NoError(t, err)
	log.Info("before sync")
	assert.NoError(t, Sync(log))
}
