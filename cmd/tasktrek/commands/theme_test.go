package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestThemeCmd_RunsWithoutWeatherKey(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("WEATHER_API_KEY", "")

	out, err := runRoot(t, "theme", "get", "--visitor", "v-1")
	require.NoError(t, err)
	assert.Equal(t, "(none)\n", out)

	out, err = runRoot(t, "theme", "set", "DARK", "--visitor", "v-1")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)
}

func TestThemeCmd_RejectsUnknownTheme(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	_, err := runRoot(t, "theme", "set", "sepia", "--visitor", "v-1")
	assert.Error(t, err)
}

func TestForecastCmd_StillNeedsWeatherKey(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("WEATHER_API_KEY", "")

	_, err := runRoot(t, "forecast", "--city", "Paris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_API_KEY")
}
