package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "offgas", cmd.Use)
	assert.Contains(t, cmd.Long, "uptake")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"process", "summary", "serve", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "c", cfg.Shorthand)

	require.NotNil(t, cmd.PersistentFlags().Lookup("output-dir"))
}

func TestProcessCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	process, _, err := cmd.Find([]string{"process"})
	require.NoError(t, err)
	assert.NotNil(t, process.Flags().Lookup("xlsx"))
	assert.NotNil(t, process.Flags().Lookup("bom"))

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "p", serve.Flags().Lookup("port").Shorthand)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	code := Execute(context.Background(), []string{"version"}, &out, &out)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out.String(), "offgas v")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("x"), ExitFailure},
		{"exit error", NewExitError(3, "custom"), 3},
		{"wrapped", WrapExitError(ExitFailure, "run failed", errors.New("boom")), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	cause := errors.New("sheet missing")
	err := WrapExitError(ExitFailure, "run failed", cause)
	assert.Equal(t, "run failed: sheet missing", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "custom", NewExitError(2, "custom").Error())
}
