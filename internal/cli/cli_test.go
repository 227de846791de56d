package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_OneShotPositional(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"photo.jpg"}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)
	require.NotNil(t, cfg)

	assert.Equal(t, "photo.jpg", cfg.InputPath)
	assert.False(t, cfg.Serve)

	// No override flags were set, so all overrides stay nil.
	assert.Nil(t, cfg.Root)
	assert.Nil(t, cfg.Python)
	assert.Nil(t, cfg.GPU)
	assert.Nil(t, cfg.WithScratch)
	assert.Nil(t, cfg.HR)
	assert.Nil(t, cfg.Port)
}

func TestParse_OverridesOnlyWhenProvided(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{
		"-input", "photo.jpg",
		"-root", "/opt/old-photos",
		"-gpu", "0",
		"-with-scratch=false",
	}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	require.NotNil(t, cfg.Root)
	assert.Equal(t, "/opt/old-photos", *cfg.Root)
	require.NotNil(t, cfg.GPU)
	assert.Equal(t, "0", *cfg.GPU)
	require.NotNil(t, cfg.WithScratch)
	assert.False(t, *cfg.WithScratch)

	assert.Nil(t, cfg.Python)
	assert.Nil(t, cfg.HR)
}

func TestParse_ServeMode(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"-serve", "-port", "9900"}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.True(t, cfg.Serve)
	require.NotNil(t, cfg.Port)
	assert.Equal(t, 9900, *cfg.Port)
	assert.Empty(t, cfg.InputPath)
}

func TestParse_NoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_InvalidValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
	}{
		{name: "bad log level", args: []string{"-log-level", "loud", "photo.jpg"}},
		{name: "bad log format", args: []string{"-log-format", "xml", "photo.jpg"}},
		{name: "serve and input", args: []string{"-serve", "photo.jpg"}},
		{name: "unknown flag", args: []string{"-frobnicate", "photo.jpg"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
