package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoutes(t *testing.T) {
	routes, err := ParseRoutes([]byte(`
routes:
  - source: Krung Thep Aphiwat
    destination: Surat Thani
  - source: Bangkok
    destination: Pattaya
`))
	require.NoError(t, err)

	assert.Equal(t, []Route{
		{Source: "Krung Thep Aphiwat", Destination: "Surat Thani"},
		{Source: "Bangkok", Destination: "Pattaya"},
	}, routes)
	assert.Equal(t, "Bangkok to Pattaya", routes[1].String())
}

func TestParseRoutesRejectsInvalid(t *testing.T) {
	_, err := ParseRoutes([]byte(`routes: []`))
	assert.ErrorIs(t, err, ErrNoRoutes)

	_, err = ParseRoutes([]byte(`
routes:
  - source: Bangkok
`))
	assert.Error(t, err)

	_, err = ParseRoutes([]byte(`routes: [`))
	assert.Error(t, err)
}

func TestLoadRoutes(t *testing.T) {
	dir := t.TempDir()

	routes, err := LoadRoutes(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRoutes, routes)

	path := filepath.Join(dir, "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routes:\n  - source: A\n    destination: B\n"), 0o644))

	routes, err = LoadRoutes(path)
	require.NoError(t, err)
	assert.Equal(t, []Route{{Source: "A", Destination: "B"}}, routes)
}

func TestSettingsValidate(t *testing.T) {
	settings := DefaultSettings()
	require.NoError(t, settings.Validate())

	location, err := settings.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Bangkok", location.String())

	invalid := DefaultSettings()
	invalid.PortalURL = "not a url"
	assert.Error(t, invalid.Validate())

	invalid = DefaultSettings()
	invalid.NavigationTimeout = 0
	assert.Error(t, invalid.Validate())

	invalid = DefaultSettings()
	invalid.Timezone = "Mars/Olympus_Mons"
	assert.Error(t, invalid.Validate())

	invalid = DefaultSettings()
	invalid.RequestDelay = -time.Second
	assert.Error(t, invalid.Validate())
}
