package dotenv

import (
	"io"
)

// DefaultPath is the file loaded when no path is configured.
const DefaultPath = ".env"

// Option configures a Loader.
type Option func(*Loader)

// WithPaths sets the files to load, lowest priority first. Empty entries are ignored.
func WithPaths(paths ...string) Option {
	return func(l *Loader) {
		l.paths = l.paths[:0]
		for _, p := range paths {
			if p != "" {
				l.paths = append(l.paths, p)
			}
		}
	}
}

// WithEncoding sets the IANA name of the files' character encoding.
func WithEncoding(name string) Option {
	return func(l *Loader) {
		l.encoding = name
	}
}

// WithDebug enables diagnostic lines describing each file and each preserved variable.
func WithDebug(enabled bool) Option {
	return func(l *Loader) {
		l.debug = enabled
	}
}

// WithDebugWriter redirects debug lines, which go to stdout by default.
func WithDebugWriter(w io.Writer) Option {
	return func(l *Loader) {
		if w != nil {
			l.out = w
		}
	}
}
