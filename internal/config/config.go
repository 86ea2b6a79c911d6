// Package config loads the engine's optional ofmlcore.toml configuration
// file: the data root, default language, price-date override, and
// property-cache toggle.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// tomlFile is the top-level ofmlcore.toml document.
type tomlFile struct {
	Root            string `toml:"root"`
	DefaultLanguage string `toml:"default_language"`
	PriceDate       string `toml:"price_date"`
	DisablePropertyCache bool `toml:"disable_property_cache"`
	RegistryDSN     string `toml:"registry_dsn"`
}

// Config is the converted, ready-to-use engine configuration.
type Config struct {
	Root                 string
	DefaultLanguage      string
	PriceDate            *time.Time
	DisablePropertyCache bool
	RegistryDSN          string
}

// Default returns the configuration used when no ofmlcore.toml is found.
func Default() *Config {
	return &Config{DefaultLanguage: "DE"}
}

// LoadFile opens path and parses it as an ofmlcore.toml configuration. A
// missing file is not an error; it yields Default().
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: open file %q: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads TOML content from r and returns the corresponding Config.
func Parse(r io.Reader) (*Config, error) {
	var tf tomlFile
	if _, err := toml.NewDecoder(r).Decode(&tf); err != nil {
		return nil, fmt.Errorf("config: decode error: %w", err)
	}
	return convert(&tf)
}

func convert(tf *tomlFile) (*Config, error) {
	cfg := &Config{
		Root:                 tf.Root,
		DefaultLanguage:      tf.DefaultLanguage,
		DisablePropertyCache: tf.DisablePropertyCache,
		RegistryDSN:          tf.RegistryDSN,
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "DE"
	}
	if tf.PriceDate != "" {
		t, err := time.Parse("2006-01-02", tf.PriceDate)
		if err != nil {
			return nil, fmt.Errorf("config: invalid price_date %q: %w", tf.PriceDate, err)
		}
		cfg.PriceDate = &t
	}
	return cfg, nil
}
