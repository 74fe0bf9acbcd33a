// Package config loads and layers the analyzer's run configuration (spec §2.2/§6): a built-in
// Profile's defaults, optionally overridden by a YAML/JSON config file, optionally overridden again by
// explicit CLI flags. Grounded on the layering shape of the teacher corpus's dittofs config loader
// (profile/file/flag precedence via viper), scaled down to the handful of knobs spec §6 actually
// exposes.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Profile selects a named bundle of defaults (spec §6).
type Profile string

const (
	ProfileDefault     Profile = "default"
	ProfileQuick       Profile = "quick"
	ProfileForensic    Profile = "forensic"
	ProfilePerformance Profile = "performance"
)

// Valid reports whether p is one of the four documented profiles.
func (p Profile) Valid() bool {
	switch p {
	case ProfileDefault, ProfileQuick, ProfileForensic, ProfilePerformance:
		return true
	default:
		return false
	}
}

// Config is the fully-resolved set of knobs the driver, hash pipeline, anomaly pass, and attribute
// decoder read from, after profile defaults, config file, and CLI flags have all been layered.
type Config struct {
	ChunkSize               int  `mapstructure:"chunk_size"`
	Hash                    bool `mapstructure:"hash"`
	HashWorkers             int  `mapstructure:"hash_processes"`
	NoMultiprocessingHashes bool `mapstructure:"no_multiprocessing_hashes"`
	Anomaly                 bool `mapstructure:"anomaly"`
	Multihash               bool `mapstructure:"multihash"`
	ExtendedAttrs           bool `mapstructure:"extended_attrs"`
	AllAttrs                bool `mapstructure:"all_attrs"`
}

// defaults returns the built-in defaults for each profile, per spec §6's table:
//
//	default:     chunk=1000, hash=off, anomaly=on,  multihash=on
//	quick:       chunk=5000, hash=off, anomaly=off, extended-attrs=off
//	forensic:    chunk=500,  hash=on,  anomaly=on,  all-attrs=on
//	performance: chunk=10000,hash=off, anomaly=off
func defaults(p Profile) Config {
	switch p {
	case ProfileQuick:
		return Config{ChunkSize: 5000, Hash: false, Anomaly: false, Multihash: true, ExtendedAttrs: false}
	case ProfileForensic:
		return Config{ChunkSize: 500, Hash: true, Anomaly: true, Multihash: true, ExtendedAttrs: true, AllAttrs: true}
	case ProfilePerformance:
		return Config{ChunkSize: 10000, Hash: false, Anomaly: false, Multihash: false, ExtendedAttrs: true}
	default:
		return Config{ChunkSize: 1000, Hash: false, Anomaly: true, Multihash: true, ExtendedAttrs: true}
	}
}

// Overrides carries the CLI flags that, when explicitly set, take precedence over both the profile
// defaults and the config file (spec §2.2: "built-in profile defaults < config file < explicit
// flags"). A nil field means "flag not passed", so the lower layer's value survives.
type Overrides struct {
	ChunkSize               *int
	Hash                    *bool
	HashWorkers             *int
	NoMultiprocessingHashes *bool
	Anomaly                 *bool
	Multihash               *bool
	ExtendedAttrs           *bool
	AllAttrs                *bool
}

// Load resolves a Config by layering profile defaults, an optional config file at configPath (YAML or
// JSON; empty string means no file), and overrides, in that precedence order.
func Load(profile Profile, configPath string, overrides Overrides) (*Config, error) {
	if profile == "" {
		profile = ProfileDefault
	}
	if !profile.Valid() {
		return nil, fmt.Errorf("config: unknown profile %q", profile)
	}

	v := viper.New()
	base := defaults(profile)
	v.SetDefault("chunk_size", base.ChunkSize)
	v.SetDefault("hash", base.Hash)
	v.SetDefault("hash_processes", base.HashWorkers)
	v.SetDefault("no_multiprocessing_hashes", base.NoMultiprocessingHashes)
	v.SetDefault("anomaly", base.Anomaly)
	v.SetDefault("multihash", base.Multihash)
	v.SetDefault("extended_attrs", base.ExtendedAttrs)
	v.SetDefault("all_attrs", base.AllAttrs)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if strings.HasSuffix(configPath, ".json") {
			v.SetConfigType("json")
		} else {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	applyOverrides(&cfg, overrides)
	return &cfg, nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.ChunkSize != nil {
		cfg.ChunkSize = *o.ChunkSize
	}
	if o.Hash != nil {
		cfg.Hash = *o.Hash
	}
	if o.HashWorkers != nil {
		cfg.HashWorkers = *o.HashWorkers
	}
	if o.NoMultiprocessingHashes != nil {
		cfg.NoMultiprocessingHashes = *o.NoMultiprocessingHashes
	}
	if o.Anomaly != nil {
		cfg.Anomaly = *o.Anomaly
	}
	if o.Multihash != nil {
		cfg.Multihash = *o.Multihash
	}
	if o.ExtendedAttrs != nil {
		cfg.ExtendedAttrs = *o.ExtendedAttrs
	}
	if o.AllAttrs != nil {
		cfg.AllAttrs = *o.AllAttrs
	}
}
