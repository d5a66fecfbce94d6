package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. PIXELBATCH_WORKERS=8.
const EnvPrefix = "PIXELBATCH"

// Load resolves every setting into cfg and applies positional args.
// Precedence, highest first: flags the user set, PIXELBATCH_* environment
// variables, the --config file, flag defaults (which come from cfg).
// fs must have been populated by BindFlags and already parsed.
func Load(cfg *Config, fs *pflag.FlagSet, args []string) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	if file := v.GetString(flagConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		cfg.ConfigFile = file
	}

	cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(v.GetString(flagMode))))
	cfg.Workers = v.GetInt(flagWorkers)
	cfg.Brightness = v.GetFloat64(flagBrightness)
	cfg.JPEGQuality = v.GetInt(flagJPEGQuality)
	cfg.Extension = v.GetString(flagExtension)
	cfg.Classes = splitList(v.GetStringSlice(flagClasses))
	cfg.Verbose = v.GetBool(flagVerbose)
	cfg.ColorMode = ColorMode(strings.ToLower(v.GetString(flagColor)))
	if v.GetBool(flagNoColor) {
		cfg.ColorMode = ColorNever
	}
	cfg.LogFile = v.GetString(flagLog)
	cfg.MetricsFile = v.GetString(flagMetricsFile)
	cfg.CheckOnly = v.GetBool(flagCheck)
	cfg.Analyze = v.GetBool(flagAnalyze)

	return parsePositionalArgs(args, cfg)
}
