package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFullDocument(t *testing.T) {
	doc := `
root = "/data/ofml"
default_language = "EN"
price_date = "2026-01-15"
disable_property_cache = true
registry_dsn = "user:pass@tcp(db:3306)/registry"
`
	cfg, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "/data/ofml", cfg.Root)
	require.Equal(t, "EN", cfg.DefaultLanguage)
	require.True(t, cfg.DisablePropertyCache)
	require.NotNil(t, cfg.PriceDate)
	require.Equal(t, 2026, cfg.PriceDate.Year())
}

func TestParseDefaultsLanguageToDE(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`root = "/data/ofml"`))
	require.NoError(t, err)
	require.Equal(t, "DE", cfg.DefaultLanguage)
	require.Nil(t, cfg.PriceDate)
}

func TestLoadFileMissingYieldsDefault(t *testing.T) {
	cfg, err := LoadFile("/nonexistent/ofmlcore.toml")
	require.NoError(t, err)
	require.Equal(t, "DE", cfg.DefaultLanguage)
}

func TestParseInvalidPriceDate(t *testing.T) {
	_, err := Parse(strings.NewReader(`price_date = "not-a-date"`))
	require.Error(t, err)
}
