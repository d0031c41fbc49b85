// Package config loads livepulse settings from defaults, an optional YAML
// file, LIVEPULSE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spektr-org/livepulse/engine"
)

// EnvPrefix is prepended to every environment key: server.addr is read from
// LIVEPULSE_SERVER_ADDR.
const EnvPrefix = "LIVEPULSE"

// Config is the full runtime configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Export   ExportConfig   `mapstructure:"export"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Chart    ChartConfig    `mapstructure:"chart"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	CSVBOM bool   `mapstructure:"csv_bom"`
	Title  string `mapstructure:"title"`
}

type AnalysisConfig struct {
	Periods             int `mapstructure:"periods"`
	MovingAverageWindow int `mapstructure:"moving_average_window"`
}

type ChartConfig struct {
	Type    string   `mapstructure:"type"`
	Palette []string `mapstructure:"palette"`
}

// ChartStyle combines chart and analysis settings into the engine's style.
func (c *Config) ChartStyle() engine.ChartStyle {
	style := engine.DefaultChartStyle()
	if c.Chart.Type != "" {
		style.ChartType = c.Chart.Type
	}
	if len(c.Chart.Palette) > 0 {
		style.Palette = append([]string(nil), c.Chart.Palette...)
	}
	style.Window = c.Analysis.MovingAverageWindow
	return style
}

// ============================================================================
// FLAGS
// ============================================================================

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"dev":        "log.development",
	"addr":       "server.addr",
	"export-dir": "export.dir",
	"periods":    "analysis.periods",
	"window":     "analysis.moving_average_window",
}

// RegisterFlags adds the configuration flags to fs. Load binds any of them
// that are present, so callers may register a subset by hand instead.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.Bool("dev", false, "Human-readable development logging")
	fs.String("addr", ":8080", "HTTP listen address for --serve")
	fs.String("export-dir", ".", "Directory for exported documents")
	fs.Int("periods", 2, "Number of comparison periods (0 disables)")
	fs.Int("window", 7, "Moving-average window for charts (0 disables)")
}

// ============================================================================
// LOADER
// ============================================================================

// Loader reads configuration with precedence flags > env > file > defaults.
type Loader struct {
	path  string
	flags *pflag.FlagSet
}

// NewLoader creates a loader. An empty path searches ./livepulse.yaml and
// ./config/livepulse.yaml; flags may be nil.
func NewLoader(path string, flags *pflag.FlagSet) *Loader {
	return &Loader{path: path, flags: flags}
}

// Load builds and validates the configuration. A missing default file is not
// an error; an explicitly named file must exist and parse.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	if l.path != "" {
		v.SetConfigFile(l.path)
	} else {
		v.SetConfigName("livepulse")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if l.flags != nil {
		for name, key := range flagKeys {
			f := l.flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration with nothing but defaults applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_bytes", int64(32<<20))
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("export.dir", ".")
	v.SetDefault("export.csv_bom", true)
	v.SetDefault("export.title", "Live Stream Analytics Report")

	v.SetDefault("analysis.periods", 2)
	v.SetDefault("analysis.moving_average_window", 7)

	v.SetDefault("chart.type", "line")
	v.SetDefault("chart.palette", engine.DefaultChartStyle().Palette)
}

// ============================================================================
// VALIDATION
// ============================================================================

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Analysis.Periods < 0 {
		return fmt.Errorf("analysis.periods must not be negative, got %d", c.Analysis.Periods)
	}
	if c.Analysis.MovingAverageWindow < 0 {
		return fmt.Errorf("analysis.moving_average_window must not be negative, got %d", c.Analysis.MovingAverageWindow)
	}
	switch c.Chart.Type {
	case "line", "bar", "area":
	default:
		return fmt.Errorf("chart.type %q: want line, bar or area", c.Chart.Type)
	}
	for _, color := range c.Chart.Palette {
		if !hexColor.MatchString(color) {
			return fmt.Errorf("chart.palette: %q is not a #RRGGBB colour", color)
		}
	}
	return nil
}
