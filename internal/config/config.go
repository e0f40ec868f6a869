package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eugenenazirov/confcascade/internal/envstore"
	"github.com/eugenenazirov/confcascade/internal/provider"
	"github.com/eugenenazirov/confcascade/internal/yamlsource"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "CONFCASCADE_"

// Canonical keys, as written in the YAML file.
const (
	keyAddr                 = "addr"
	keyEnvFiles             = "env_files"
	keyEncoding             = "encoding"
	keyDebug                = "debug"
	keyDefaultsFile         = "defaults_file"
	keyLogLevel             = "log_level"
	keyShutdownGracePeriod  = "shutdown_grace_period"
	keyReadHeaderTimeout    = "read_header_timeout"
	keyWriteTimeout         = "write_timeout"
	keyIdleTimeout          = "idle_timeout"
	keyEnableRequestLogging = "enable_request_logging"
	keyRateLimitRPS         = "rate_limit.rps"
	keyRateLimitBurst       = "rate_limit.burst"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Addr                 string
	EnvFiles             []string
	Encoding             string
	Debug                bool
	DefaultsFile         string
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// CLIOverrides holds command-line flag overrides. Nil fields are unset.
type CLIOverrides struct {
	ConfigFile     string
	Addr           *string
	EnvFiles       []string
	Encoding       *string
	Debug          *bool
	DefaultsFile   *string
	LogLevel       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load resolves configuration against the process environment.
func Load(overrides *CLIOverrides) (Config, error) {
	return LoadFrom(context.Background(), envstore.NewOSStore(), overrides)
}

// LoadFrom resolves configuration against the given environment store.
func LoadFrom(ctx context.Context, env envstore.Store, overrides *CLIOverrides) (Config, error) {
	layers := make([]provider.Provider, 0, 4)

	if overrides != nil {
		layers = append(layers, provider.NewRecord(overrides.mapping(), nil))

		// Load from YAML file if specified
		if overrides.ConfigFile != "" {
			yamlValues, err := loadFromFile(overrides.ConfigFile)
			if err != nil {
				return Config{}, fmt.Errorf("load YAML config: %w", err)
			}
			layers = append(layers, provider.NewRecord(yamlValues, nil))
		}
	}

	layers = append(layers,
		provider.NewRecord(envSource{store: env}, nil),
		provider.NewRecord(defaultValues(), nil),
	)

	cfg, err := resolve(ctx, provider.NewComposite(layers...))
	if err != nil {
		return Config{}, err
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultValues returns the built-in defaults as raw strings.
func defaultValues() provider.StringMapping {
	return provider.StringMapping{
		keyAddr:                 ":8080",
		keyEnvFiles:             ".env",
		keyEncoding:             "utf8",
		keyDebug:                "false",
		keyDefaultsFile:         "",
		keyLogLevel:             "info",
		keyShutdownGracePeriod:  "10s",
		keyReadHeaderTimeout:    "5s",
		keyWriteTimeout:         "15s",
		keyIdleTimeout:          "60s",
		keyEnableRequestLogging: "true",
		keyRateLimitRPS:         "25",
		keyRateLimitBurst:       "50",
	}
}

// EnvName returns the environment variable consulted for a canonical key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// envSource reads canonical keys from prefixed environment variables.
// Blank variables are treated as unset.
type envSource struct {
	store envstore.Store
}

func (s envSource) Lookup(key string) (any, bool) {
	v, ok := s.store.Lookup(EnvName(key))
	if !ok || strings.TrimSpace(v) == "" {
		return nil, false
	}
	return strings.TrimSpace(v), true
}

func (o *CLIOverrides) mapping() provider.StringMapping {
	values := provider.StringMapping{}
	if o.Addr != nil && *o.Addr != "" {
		values[keyAddr] = *o.Addr
	}
	if len(o.EnvFiles) > 0 {
		values[keyEnvFiles] = strings.Join(o.EnvFiles, ",")
	}
	if o.Encoding != nil && *o.Encoding != "" {
		values[keyEncoding] = *o.Encoding
	}
	if o.Debug != nil {
		values[keyDebug] = strconv.FormatBool(*o.Debug)
	}
	if o.DefaultsFile != nil && *o.DefaultsFile != "" {
		values[keyDefaultsFile] = *o.DefaultsFile
	}
	if o.LogLevel != nil && *o.LogLevel != "" {
		values[keyLogLevel] = *o.LogLevel
	}
	if o.RateLimitRPS != nil && *o.RateLimitRPS >= 0 {
		values[keyRateLimitRPS] = strconv.FormatFloat(*o.RateLimitRPS, 'f', -1, 64)
	}
	if o.RateLimitBurst != nil && *o.RateLimitBurst >= 0 {
		values[keyRateLimitBurst] = strconv.Itoa(*o.RateLimitBurst)
	}
	return values
}

// loadFromFile loads a YAML file and renders its scalars as strings so the
// file layer reads like every other layer.
func loadFromFile(path string) (provider.StringMapping, error) {
	raw, err := yamlsource.Load(path)
	if err != nil {
		return nil, err
	}

	values := make(provider.StringMapping, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			values[k] = val
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprint(item))
			}
			values[k] = strings.Join(parts, ",")
		default:
			values[k] = fmt.Sprint(val)
		}
	}
	return values, nil
}

func resolve(ctx context.Context, p provider.Provider) (Config, error) {
	r := resolver{ctx: ctx, p: p}

	var cfg Config
	cfg.Addr = r.str(keyAddr)
	cfg.EnvFiles = r.list(keyEnvFiles)
	cfg.Encoding = r.str(keyEncoding)
	cfg.Debug = r.boolean(keyDebug)
	cfg.DefaultsFile = r.str(keyDefaultsFile)
	cfg.LogLevel = r.str(keyLogLevel)
	cfg.ShutdownGracePeriod = r.duration(keyShutdownGracePeriod)
	cfg.ReadHeaderTimeout = r.duration(keyReadHeaderTimeout)
	cfg.WriteTimeout = r.duration(keyWriteTimeout)
	cfg.IdleTimeout = r.duration(keyIdleTimeout)
	cfg.EnableRequestLogging = r.boolean(keyEnableRequestLogging)
	cfg.RateLimitRPS = r.number(keyRateLimitRPS)
	cfg.RateLimitBurst = r.integer(keyRateLimitBurst)

	if r.err != nil {
		return Config{}, r.err
	}
	return cfg, nil
}

// resolver keeps the first error so fields can be read in a flat sequence.
type resolver struct {
	ctx context.Context
	p   provider.Provider
	err error
}

func (r *resolver) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s (%s): %w", key, EnvName(key), err)
	}
}

func (r *resolver) str(key string) string {
	if r.err != nil {
		return ""
	}
	v, err := r.p.RequireString(r.ctx, key)
	if err != nil {
		r.fail(key, err)
		return ""
	}
	return strings.TrimSpace(v)
}

func (r *resolver) list(key string) []string {
	raw := r.str(key)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *resolver) boolean(key string) bool {
	raw := r.str(key)
	if r.err != nil {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail(key, fmt.Errorf("invalid boolean %q", raw))
		return false
	}
	return b
}

func (r *resolver) duration(key string) time.Duration {
	raw := r.str(key)
	if r.err != nil {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		r.fail(key, fmt.Errorf("invalid duration %q", raw))
		return 0
	}
	return d
}

func (r *resolver) number(key string) float64 {
	if r.err != nil {
		return 0
	}
	n, err := r.p.RequireNumber(r.ctx, key)
	if err != nil {
		r.fail(key, err)
		return 0
	}
	return n
}

func (r *resolver) integer(key string) int {
	n := r.number(key)
	if r.err != nil {
		return 0
	}
	if n != math.Trunc(n) || math.IsInf(n, 0) {
		r.fail(key, fmt.Errorf("expected an integer, got %v", n))
		return 0
	}
	return int(n)
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	var errs []error
	if cfg.Addr == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", EnvName(keyAddr)))
	}
	if len(cfg.EnvFiles) == 0 {
		errs = append(errs, fmt.Errorf("%s must name at least one file", EnvName(keyEnvFiles)))
	}
	if cfg.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("%s must be >= 0", EnvName(keyRateLimitRPS)))
	}
	if cfg.RateLimitBurst < 0 {
		errs = append(errs, fmt.Errorf("%s must be >= 0", EnvName(keyRateLimitBurst)))
	}
	return errors.Join(errs...)
}
