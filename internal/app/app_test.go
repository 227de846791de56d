package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/restobridge/internal/config"
)

func ptr[T any](v T) *T { return &v }

func TestNewConfig_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "one-shot mode with an input path",
			cfg:  Config{InputPath: "photo.jpg"},
		},
		{
			name: "serve mode without an input path",
			cfg:  Config{Serve: true},
		},
		{
			name:    "serve and input path are mutually exclusive",
			cfg:     Config{Serve: true, InputPath: "photo.jpg"},
			wantErr: "not both",
		},
		{
			name:    "neither serve nor input path",
			cfg:     Config{},
			wantErr: "input path is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	base := config.Default()

	t.Run("nil overrides leave settings untouched", func(t *testing.T) {
		t.Parallel()
		got := applyOverrides(base, &Config{})
		assert.Equal(t, base, got)
	})

	t.Run("provided overrides win over settings", func(t *testing.T) {
		t.Parallel()
		got := applyOverrides(base, &Config{
			Port:         ptr(9000),
			Root:         ptr("/opt/pipeline"),
			Python:       ptr("/usr/bin/python3.11"),
			OutputFolder: ptr("out"),
			GPU:          ptr("0"),
			WithScratch:  ptr(false),
			HR:           ptr(true),
		})

		assert.Equal(t, 9000, got.Bridge.Port)
		assert.Equal(t, "/opt/pipeline", got.Pipeline.Root)
		assert.Equal(t, "/usr/bin/python3.11", got.Pipeline.Python)
		assert.Equal(t, "out", got.Pipeline.OutputFolder)
		assert.Equal(t, "0", got.Pipeline.GPU)
		assert.False(t, got.Pipeline.WithScratch)
		assert.True(t, got.Pipeline.HR)
	})

	t.Run("false override is distinct from absent", func(t *testing.T) {
		t.Parallel()
		got := applyOverrides(base, &Config{WithScratch: ptr(false)})
		assert.False(t, got.Pipeline.WithScratch, "explicit -with-scratch=false must override the default")
	})
}

func TestLogOptionValidation(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.True(t, ValidLogLevel(level), level)
	}
	assert.False(t, ValidLogLevel("verbose"))
	assert.False(t, ValidLogLevel(""))

	assert.True(t, ValidLogFormat("text"))
	assert.True(t, ValidLogFormat("json"))
	assert.False(t, ValidLogFormat("xml"))
}

func TestNewLogger_LevelGating(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	logger := newLogger("error", "text", out)
	logger.Info("quiet")
	logger.Error("loud")

	assert.NotContains(t, out.String(), "quiet")
	assert.Contains(t, out.String(), "loud")
}

func TestNewApp_MergesSettingsUnderOverrides(t *testing.T) {
	// Uses t.Chdir so the default settings file lookup hits an empty dir.
	t.Chdir(t.TempDir())

	out := &bytes.Buffer{}
	cfg, err := NewConfig(Config{
		InputPath: "photo.jpg",
		LogFormat: "text",
		LogLevel:  "error",
		Root:      ptr("/opt/pipeline"),
	})
	require.NoError(t, err)

	application, err := NewApp(out, cfg)
	require.NoError(t, err)

	settings := application.Settings()
	assert.Equal(t, "/opt/pipeline", settings.Pipeline.Root)
	assert.Equal(t, "python3", settings.Pipeline.Python, "unoverridden values keep their defaults")
}
