// Package config loads ontopath settings from a YAML file with ONTOPATH_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrUnknownPreset is returned by Config.Preset for names not configured.
var ErrUnknownPreset = errors.New("unknown preset")

type Config struct {
	Log     LogConfig         `mapstructure:"log" yaml:"log"`
	Parse   ParseConfig       `mapstructure:"parse" yaml:"parse"`
	Search  SearchConfig      `mapstructure:"search" yaml:"search"`
	DataDir string            `mapstructure:"data_dir" yaml:"data_dir"`
	Sources map[string]string `mapstructure:"sources" yaml:"sources"`
	Presets map[string]Preset `mapstructure:"presets" yaml:"presets"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

type ParseConfig struct {
	Namespaces   []string `mapstructure:"namespaces" yaml:"namespaces"`
	KeepObsolete bool     `mapstructure:"keep_obsolete" yaml:"keep_obsolete"`
	Relations    []string `mapstructure:"relations" yaml:"relations"`
}

type SearchConfig struct {
	Mode     string `mapstructure:"mode" yaml:"mode"`
	Workers  int    `mapstructure:"workers" yaml:"workers"`
	MaxDepth int    `mapstructure:"max_depth" yaml:"max_depth"`
}

// Preset is a named, reusable query shape.
type Preset struct {
	Relations []string `mapstructure:"relations" yaml:"relations"`
	Targets   []string `mapstructure:"targets" yaml:"targets"`
	Exclude   []string `mapstructure:"exclude" yaml:"exclude"`
	Mode      string   `mapstructure:"mode" yaml:"mode,omitempty"`
}

// UberonSample maps sample terms to the anatomy they derive from while
// skipping anatomy classes too general to be useful.
var UberonSample = Preset{
	Relations: []string{
		"is_a",
		"related_to",
		"part_of",
		"derives_from",
		"intersection_of",
		"union_of",
		"is_model_for",
		"replaced_by",
		"develops_from",
	},
	Targets: []string{"UBERON"},
	Exclude: []string{
		"UBERON:0000061", // anatomical structure
		"UBERON:0000479", // tissue
		"UBERON:0000467", // anatomical system
		"UBERON:0011216", // organ system subdivision
		"UBERON:0000922", // embryo
		"CL:0000048",     // multi fate stem cell
	},
	Mode: "any",
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Search: SearchConfig{
			Mode:    "any",
			Workers: 1,
		},
		DataDir: "data",
		Sources: map[string]string{
			"sensory-minimal": "http://ontologies.berkeleybop.org/uberon/subsets/sensory-minimal.obo",
			"uberon-extended": "http://purl.obolibrary.org/obo/uberon/ext.obo",
			"uberon-basic":    "http://purl.obolibrary.org/obo/uberon.obo",
		},
		Presets: map[string]Preset{
			"uberon-sample": UberonSample,
		},
	}
}

// DiscoverPath picks the config file: the flag value, $ONTOPATH_CONFIG, or
// ~/.ontopath/config.yaml.
func DiscoverPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if envPath := os.Getenv("ONTOPATH_CONFIG"); envPath != "" {
		return envPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ontopath", "config.yaml")
	}
	return filepath.Join(home, ".ontopath", "config.yaml")
}

// Load reads path (a missing file is not an error), applies ONTOPATH_*
// environment overrides and fills unset sections from Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ONTOPATH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"log.level", "log.format",
		"parse.namespaces", "parse.keep_obsolete", "parse.relations",
		"search.mode", "search.workers", "search.max_depth",
		"data_dir",
	} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	if cfg.Search.Mode == "" {
		cfg.Search.Mode = def.Search.Mode
	}
	if cfg.Search.Workers == 0 {
		cfg.Search.Workers = def.Search.Workers
	}
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string, len(def.Sources))
	}
	for name, url := range def.Sources {
		if _, ok := cfg.Sources[name]; !ok {
			cfg.Sources[name] = url
		}
	}
	if cfg.Presets == nil {
		cfg.Presets = make(map[string]Preset, len(def.Presets))
	}
	for name, p := range def.Presets {
		if _, ok := cfg.Presets[name]; !ok {
			cfg.Presets[name] = p
		}
	}
}

// Preset returns a named preset.
func (c *Config) Preset(name string) (Preset, error) {
	p, ok := c.Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Save writes cfg to path as YAML, creating the parent directory.
func Save(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
