package dotenv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/eugenenazirov/confcascade/internal/envstore"
	"github.com/eugenenazirov/confcascade/internal/provider"
)

// Report summarises a Load.
type Report struct {
	// Applied lists the keys written to the store.
	Applied []string
	// Preserved lists the keys found in files but kept at their existing value.
	Preserved []string
	// Failed lists the files that could not be read or parsed.
	Failed []string
}

// Loader merges .env files into a Store.
type Loader struct {
	store    envstore.Store
	logger   *zap.Logger
	paths    []string
	encoding string
	debug    bool
	out      io.Writer
}

// New constructs a Loader writing into store. A nil logger discards warnings.
func New(store envstore.Store, logger *zap.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{
		store:  store,
		logger: logger,
		paths:  []string{DefaultPath},
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(l)
	}
	if len(l.paths) == 0 {
		l.paths = []string{DefaultPath}
	}
	return l
}

// Paths returns the files the loader reads, in load order.
func (l *Loader) Paths() []string {
	return append([]string(nil), l.paths...)
}

// Load reads every configured file, applies the variables that were not
// already present in the store and returns a provider over the store with
// defaults as fallback. The store is only written after all files are read.
func (l *Loader) Load(ctx context.Context, defaults provider.Source) (*provider.Record, Report, error) {
	var report Report

	existing := make(map[string]struct{})
	for _, key := range l.store.Keys() {
		existing[key] = struct{}{}
	}

	merged := make(map[string]string)
	for _, path := range l.paths {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		l.debugf("loading path %s\n", path)

		parsed, err := l.readFile(path)
		if err != nil {
			l.logger.Warn("failed to load env file",
				zap.String("path", path),
				zap.Error(err),
			)
			report.Failed = append(report.Failed, path)
			continue
		}
		for k, v := range parsed {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, present := existing[key]; present {
			l.debugf("Env var %s is present. Skipping .env override\n", key)
			report.Preserved = append(report.Preserved, key)
			continue
		}
		if err := l.store.Set(key, merged[key]); err != nil {
			return nil, report, fmt.Errorf("set %s: %w", key, err)
		}
		report.Applied = append(report.Applied, key)
	}

	l.logger.Debug("env files loaded",
		zap.Strings("paths", l.paths),
		zap.Int("applied", len(report.Applied)),
		zap.Int("preserved", len(report.Preserved)),
		zap.Int("failed", len(report.Failed)),
	)

	return provider.NewRecord(provider.Strings(l.store), defaults), report, nil
}

func (l *Loader) readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data, err = decode(data, l.encoding)
	if err != nil {
		return nil, err
	}

	parsed, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return parsed, nil
}

func (l *Loader) debugf(format string, args ...any) {
	if !l.debug {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}
