package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"aqi-query/internal/airnow"
	"aqi-query/internal/domain"
	"aqi-query/internal/util"
)

const (
	DefaultMetricsAddr = ":3030"
	DefaultLogDir      = "log"
)

var (
	ErrMissingAPIKey  = errors.New("an AirNow API key is required (--apikey or AIR_NOW_API_KEY)")
	ErrMissingZipCode = errors.New("a zip code is required (--zipcode or ZIP_CODE)")
	ErrUnexpectedArgs = errors.New("unexpected positional arguments")
)

const metricsFlagName = "prometheus-enabled"

// MetricsFlag is the tri-state --prometheus-enabled switch: absent, or
// present with an explicit (or implied true) value.
type MetricsFlag struct {
	Present bool
	Value   bool
}

func (m MetricsFlag) Enabled() bool {
	return m.Present && m.Value
}

// Config holds everything read at startup.
type Config struct {
	APIKey          string
	ZipCode         string
	Metrics         MetricsFlag
	MetricsAddr     string
	CollectInterval time.Duration
	APIBaseURL      string
	LogDir          string
	LogLevel        int
}

// EffectiveLogLevel is LogLevel when one was configured. Otherwise one-shot
// runs log warnings and above so the console shows just the table, and
// continuous runs log at info.
func (c Config) EffectiveLogLevel() int {
	if c.LogLevel != 0 {
		return c.LogLevel
	}
	if c.Metrics.Enabled() {
		return util.LOG_LEVEL_INFO
	}
	return util.LOG_LEVEL_WARN
}

// RequestURL is the AirNow query built from the configured base URL, zip code and key.
func (c Config) RequestURL() (string, error) {
	return airnow.BuildRequestURL(c.APIBaseURL, c.ZipCode, c.APIKey, airnow.DefaultDistance)
}

var envBindings = map[string]string{
	"apikey":             "AIR_NOW_API_KEY",
	"zipcode":            "ZIP_CODE",
	"prometheus-enabled": "PROMETHEUS_ENABLED",
	"metrics-addr":       "METRICS_ADDR",
	"collect-interval":   "COLLECT_INTERVAL",
	"api-url":            "AIRNOW_API_URL",
	"log-dir":            "LOG_DIR",
	"log-level":          "LOG_LEVEL",
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("apikey", "", "AirNow API key")
	fs.String("zipcode", "", "zip code to query")
	fs.String(metricsFlagName, "", "serve gauges on /metrics and refresh them on a timer")
	fs.Lookup(metricsFlagName).NoOptDefVal = "true"
	fs.String("metrics-addr", DefaultMetricsAddr, "bind address of the metrics exporter")
	fs.Duration("collect-interval", domain.DefaultCollectInterval, "time between collection cycles")
	fs.String("api-url", airnow.DefaultBaseURL, "AirNow current observation endpoint")
	fs.String("log-dir", DefaultLogDir, "directory for the log file")
	fs.Int("log-level", 0, "1=error 2=warn 3=info 4=debug (default warn in one-shot mode, info with metrics)")
	return fs
}

// Load parses args, falling back to environment variables and an optional
// .env file for anything not given on the command line.
func Load(name string, args []string) (Config, error) {
	// a missing .env is normal; real env vars still apply
	_ = godotenv.Load()

	fs := newFlagSet(name)
	if err := fs.Parse(joinMetricsValue(args)); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("%w: %q", ErrUnexpectedArgs, fs.Args())
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("binding flags: %w", err)
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	metrics, err := parseMetricsFlag(v.GetString(metricsFlagName))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIKey:          strings.TrimSpace(v.GetString("apikey")),
		ZipCode:         strings.TrimSpace(v.GetString("zipcode")),
		Metrics:         metrics,
		MetricsAddr:     v.GetString("metrics-addr"),
		CollectInterval: v.GetDuration("collect-interval"),
		APIBaseURL:      v.GetString("api-url"),
		LogDir:          v.GetString("log-dir"),
		LogLevel:        v.GetInt("log-level"),
	}

	if cfg.APIKey == "" {
		return Config{}, ErrMissingAPIKey
	}
	if cfg.ZipCode == "" {
		return Config{}, ErrMissingZipCode
	}
	if cfg.CollectInterval <= 0 {
		return Config{}, fmt.Errorf("collect-interval must be positive, got %s", cfg.CollectInterval)
	}
	return cfg, nil
}

func parseMetricsFlag(raw string) (MetricsFlag, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MetricsFlag{}, nil
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return MetricsFlag{}, fmt.Errorf("invalid prometheus-enabled value %q: %w", raw, err)
	}
	return MetricsFlag{Present: true, Value: enabled}, nil
}

// joinMetricsValue rewrites "--prometheus-enabled <bool>" as
// "--prometheus-enabled=<bool>". The flag takes an optional value, so pflag
// would otherwise read the bare flag as true and leave the bool positional.
func joinMetricsValue(args []string) []string {
	joined := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			joined = append(joined, args[i:]...)
			break
		}
		if arg == "--"+metricsFlagName && i+1 < len(args) {
			if _, err := strconv.ParseBool(args[i+1]); err == nil {
				joined = append(joined, arg+"="+args[i+1])
				i++
				continue
			}
		}
		joined = append(joined, arg)
	}
	return joined
}
