package dice_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/dice"
)

func TestConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		config := dice.DefaultConfig()
		require.NoError(t, config.Validate(), "The default configuration should be valid")

		assert.Equal(t, dice.ModelAuto, config.Model)
		assert.Equal(t, dice.DefaultTimeoutMs, config.TimeoutMs)
		assert.Equal(t, "/dev/snd/hwC0D0", config.HwdepDevice)

		level, err := config.SlogLevel()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelInfo, level)
	})

	t.Run("Parse", func(t *testing.T) {
		config, err := dice.ParseConfig([]byte("hwdep_device: /dev/snd/hwC2D0\nmodel: K8\nlog_level: debug\n"))
		require.NoError(t, err, "ParseConfig should succeed")

		assert.Equal(t, "/dev/snd/hwC2D0", config.HwdepDevice)
		assert.Equal(t, "K8", config.Model, "Model names are matched without case")
		assert.Equal(t, dice.DefaultTimeoutMs, config.TimeoutMs, "Missing keys should keep their defaults")

		level, err := config.SlogLevel()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, level)
	})

	t.Run("Invalid", func(t *testing.T) {
		tests := []struct {
			name string
			yaml string
		}{
			{"Model", "model: k6\n"},
			{"Timeout", "timeout_ms: 0\n"},
			{"Interval", "measure_interval_ms: -5\n"},
			{"LogLevel", "log_level: verbose\n"},
			{"Syntax", "model: [k8\n"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := dice.ParseConfig([]byte(tt.yaml))
				assert.Error(t, err, "The configuration should be rejected")
			})
		}
	})

	t.Run("Load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dice.yaml")

		config := dice.DefaultConfig()
		config.Model = "itwin"
		config.TraceFile = "/tmp/trace.cbor"

		data, err := config.Marshal()
		require.NoError(t, err, "Marshal should succeed")
		require.NoError(t, os.WriteFile(path, data, 0644))

		loaded, err := dice.LoadConfig(path)
		require.NoError(t, err, "LoadConfig should succeed")
		assert.Equal(t, config, loaded, "The configuration should survive a round trip")

		_, err = dice.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err, "A missing file should fail")
	})
}
