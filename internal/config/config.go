package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/meshstats-cli/internal/utils"
)

const dirName = ".meshstats"

// Global configuration structure.
type Global struct {
	Precision    int       `mapstructure:"precision" yaml:"precision"`
	Percentiles  []float64 `mapstructure:"percentiles" yaml:"percentiles"`
	RegionSuffix string    `mapstructure:"region_suffix" yaml:"region_suffix"`

	// Export defaults
	Layout    string `mapstructure:"layout" yaml:"layout"`
	Format    string `mapstructure:"format" yaml:"format"`
	Locale    string `mapstructure:"locale" yaml:"locale"`
	Overwrite string `mapstructure:"overwrite" yaml:"overwrite"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	RunsDir string `mapstructure:"runs_dir" yaml:"runs_dir"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{"precision", "percentiles", "region_suffix", "layout", "format", "locale", "overwrite", "output_dir", "runs_dir"}

// Path returns cfgFile, or ~/.meshstats/config.yaml when it is empty.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.meshstats/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("MESHSTATS")
	v.AutomaticEnv()

	v.SetDefault("precision", 3)
	v.SetDefault("percentiles", []float64{5, 15, 25, 50, 75, 85, 95})
	v.SetDefault("region_suffix", "ROI")
	v.SetDefault("layout", "separate")
	v.SetDefault("format", "csv")
	v.SetDefault("locale", "dot")
	v.SetDefault("overwrite", "ask")
	v.SetDefault("output_dir", ".")
	v.SetDefault("runs_dir", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve runs_dir default: ~/.meshstats/runs
	if c.RunsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.RunsDir = filepath.Join(home, dirName, "runs")
	}
	dir, err := utils.ExpandHome(c.RunsDir)
	if err != nil {
		return nil, err
	}
	c.RunsDir = dir
	return &c, nil
}
