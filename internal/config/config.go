// Package config loads plugbridge options from defaults, a config file,
// PLUGBRIDGE_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "PLUGBRIDGE"
	DefaultConfigName = "plugbridge"
)

// Output formats accepted by the format key.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options is the merged configuration of a plugbridge run.
type Options struct {
	Output      string `mapstructure:"output"`
	DryRun      bool   `mapstructure:"dry_run"`
	Concurrency int    `mapstructure:"concurrency"`
	Format      string `mapstructure:"format"`
	LogLevel    string `mapstructure:"log_level"`
	All         bool   `mapstructure:"all"`

	// ConfigFile is the config file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"output":      "output",
	"dry-run":     "dry_run",
	"concurrency": "concurrency",
	"format":      "format",
	"log-level":   "log_level",
	"all":         "all",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output", "dist")
	v.SetDefault("dry_run", false)
	v.SetDefault("concurrency", 4)
	v.SetDefault("format", FormatText)
	v.SetDefault("log_level", "info")
	v.SetDefault("all", false)
}

// Load merges all configuration sources and builds the run logger, which
// writes text records to logOut. cfgFile, when set, must exist; otherwise
// plugbridge.yaml is looked up in the working directory and in
// $HOME/.config/plugbridge. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet, logOut io.Writer) (Options, *slog.Logger, error) {
	var opts Options
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return opts, nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		opts.ConfigFile = v.ConfigFileUsed()
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return opts, nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	if err := v.Unmarshal(&opts); err != nil {
		return opts, nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := opts.validate(); err != nil {
		return opts, nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.LogLevel)); err != nil {
		return opts, nil, fmt.Errorf("invalid log_level %q: %w", opts.LogLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	if opts.ConfigFile != "" {
		logger.Debug("using configuration file", "path", opts.ConfigFile)
	}

	return opts, logger, nil
}

func (o Options) validate() error {
	switch o.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q: must be %s or %s", o.Format, FormatText, FormatJSON)
	}
	if o.Concurrency < 1 {
		return fmt.Errorf("invalid concurrency %d: must be at least 1", o.Concurrency)
	}
	if o.Output == "" {
		return errors.New("output directory must not be empty")
	}
	return nil
}
