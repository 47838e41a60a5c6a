package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const dirName = ".filmcorr"

// Global configuration structure.
type Global struct {
	// Input data
	Input       string   `mapstructure:"input" yaml:"input"`
	Delimiter   string   `mapstructure:"delimiter" yaml:"delimiter"`
	Sheet       string   `mapstructure:"sheet" yaml:"sheet"`
	MaxRows     int      `mapstructure:"max_rows" yaml:"max_rows"`
	NullMarkers []string `mapstructure:"null_markers" yaml:"null_markers"`

	// Column names
	BudgetColumn   string `mapstructure:"budget_column" yaml:"budget_column"`
	GrossColumn    string `mapstructure:"gross_column" yaml:"gross_column"`
	ReleasedColumn string `mapstructure:"released_column" yaml:"released_column"`
	CompanyColumn  string `mapstructure:"company_column" yaml:"company_column"`
	YearColumn     string `mapstructure:"year_column" yaml:"year_column"`

	// Cleaning and correlation
	RowPolicy   string  `mapstructure:"row_policy" yaml:"row_policy"`
	Threshold   float64 `mapstructure:"threshold" yaml:"threshold"`
	DedupePairs bool    `mapstructure:"dedupe_pairs" yaml:"dedupe_pairs"`
	SampleRows  int     `mapstructure:"sample_rows" yaml:"sample_rows"`

	// Charts and run manifests
	Plots      bool   `mapstructure:"plots" yaml:"plots"`
	PlotFormat string `mapstructure:"plot_format" yaml:"plot_format"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"input", "delimiter", "sheet", "max_rows", "null_markers",
	"budget_column", "gross_column", "released_column", "company_column", "year_column",
	"row_policy", "threshold", "dedupe_pairs", "sample_rows",
	"plots", "plot_format", "output_dir",
	"log_level", "log_format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input", "movies.csv")
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("null_markers", []string{})
	v.SetDefault("budget_column", "budget")
	v.SetDefault("gross_column", "gross")
	v.SetDefault("released_column", "released")
	v.SetDefault("company_column", "company")
	v.SetDefault("year_column", "yearcorrect")
	v.SetDefault("row_policy", "abort")
	v.SetDefault("threshold", 0.5)
	v.SetDefault("dedupe_pairs", false)
	v.SetDefault("sample_rows", 5)
	v.SetDefault("plots", true)
	v.SetDefault("plot_format", "png")
	v.SetDefault("output_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Defaults returns the built-in configuration, ignoring files and env.
// output_dir is left empty when no home directory can be resolved.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	if dir, err := defaultDir(); err == nil {
		c.OutputDir = filepath.Join(dir, "runs")
	}
	return &c
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Path returns the config file used when cfgFile is empty.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := defaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.filmcorr/config.yaml, creating the directory if necessary.
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
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FILMCORR")
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve output_dir default: ~/.filmcorr/runs
	if c.OutputDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		c.OutputDir = filepath.Join(dir, "runs")
	}
	return &c, nil
}
