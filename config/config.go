// Package config loads proctree settings from an optional file, PROCTREE_
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"proctree/process"
	"proctree/process_tree"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key looked up in the environment
const EnvPrefix = "PROCTREE"

// Keys shared with the command line flags
const (
	KeyExcludeServices    = "excludeServices"
	KeyExcludeParentNames = "excludeParentNames"
	KeyExcludeParentIDs   = "excludeParentIds"
	KeyAttributes         = "attributes"
	KeyServiceSource      = "serviceSource"
	KeyProcfsPath         = "procfsPath"
	KeyProcessSource      = "processSource"
	KeyOutput             = "output"
	KeyTimeout            = "timeout"
)

// Output formats
const (
	OutputText  = "text"
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	ExcludeServices    bool          `mapstructure:"excludeServices"`
	ExcludeParentNames []string      `mapstructure:"excludeParentNames"`
	ExcludeParentIDs   []int         `mapstructure:"excludeParentIds"`
	Attributes         []string      `mapstructure:"attributes"`
	ServiceSource      string        `mapstructure:"serviceSource"`
	ProcfsPath         string        `mapstructure:"procfsPath"`
	ProcessSource      string        `mapstructure:"processSource"`
	Output             string        `mapstructure:"output"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// New returns a viper instance with the defaults and environment binding in
// place. Flags may be bound onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyExcludeServices, true)
	v.SetDefault(KeyExcludeParentNames, []string{process_tree.DefaultExcludedParentName})
	v.SetDefault(KeyExcludeParentIDs, []int{})
	v.SetDefault(KeyAttributes, []string{})
	v.SetDefault(KeyServiceSource, "scm")
	v.SetDefault(KeyProcfsPath, "/proc")
	v.SetDefault(KeyProcessSource, "psutil")
	v.SetDefault(KeyOutput, OutputText)
	v.SetDefault(KeyTimeout, time.Duration(0))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file at path and decodes the result. Without a path
// proctree.{yaml,json} is looked up in the working directory and
// $HOME/.config/proctree, and a missing file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("proctree")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/proctree")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	switch strings.ToLower(c.ServiceSource) {
	case "scm", "wmi":
	default:
		return fmt.Errorf("%w: serviceSource %q, want scm or wmi", ErrInvalidConfig, c.ServiceSource)
	}

	switch strings.ToLower(c.ProcessSource) {
	case "psutil", "procfs":
	default:
		return fmt.Errorf("%w: processSource %q, want psutil or procfs", ErrInvalidConfig, c.ProcessSource)
	}

	switch c.Output {
	case OutputText, OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("%w: output %q", ErrInvalidConfig, c.Output)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %s", ErrInvalidConfig, c.Timeout)
	}

	return nil
}

// ParentExclusion builds the parent exclusion predicate, nil when nothing is
// excluded.
func (c *Config) ParentExclusion() process_tree.ParentExclusion {
	var predicates []process_tree.ParentExclusion

	if len(c.ExcludeParentNames) > 0 {
		predicates = append(predicates, process_tree.ExcludeParentNames(c.ExcludeParentNames...))
	}

	if len(c.ExcludeParentIDs) > 0 {
		ids := make([]process.ProcessID, 0, len(c.ExcludeParentIDs))
		for _, id := range c.ExcludeParentIDs {
			ids = append(ids, process.ProcessID(id))
		}
		predicates = append(predicates, process_tree.ExcludeParentIDs(ids...))
	}

	switch len(predicates) {
	case 0:
		return nil
	case 1:
		return predicates[0]
	}
	return process_tree.AnyParentExclusion(predicates...)
}

// ForestOptions returns the forest options described by the config
func (c *Config) ForestOptions() []process_tree.ForestOption {
	return []process_tree.ForestOption{process_tree.WithParentExclusion(c.ParentExclusion())}
}
