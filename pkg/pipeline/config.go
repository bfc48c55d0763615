package pipeline

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/waymerge/waymerge/pkg/errors"
)

// Config mirrors the waymerge.toml file format. Options set on the command
// line win over file settings, so Apply only fills zero fields.
//
// Example:
//
//	keep = ["motorway", "trunk", "primary"]
//	formats = ["json", "svg"]
//	labels = true
//	cache_dir = "/var/cache/waymerge"
type Config struct {
	Keep      []string `toml:"keep"`
	Drop      []string `toml:"drop"`
	MaxPasses int      `toml:"max_passes"`
	Formats   []string `toml:"formats"`
	Labels    bool     `toml:"labels"`
	Width     float64  `toml:"width"`

	// CacheDir and Redis select the cache backend. They are read by the
	// caller when constructing a Runner, not merged by Apply.
	CacheDir string `toml:"cache_dir"`
	Redis    string `toml:"redis"`
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// Apply copies file settings onto options, skipping any field the caller
// already set.
func (c Config) Apply(opts *Options) {
	if len(opts.Keep) == 0 {
		opts.Keep = c.Keep
	}
	if len(opts.Drop) == 0 {
		opts.Drop = c.Drop
	}
	if opts.MaxPasses == 0 {
		opts.MaxPasses = c.MaxPasses
	}
	if len(opts.Formats) == 0 {
		opts.Formats = c.Formats
	}
	if !opts.Labels {
		opts.Labels = c.Labels
	}
	if opts.Width == 0 {
		opts.Width = c.Width
	}
}
