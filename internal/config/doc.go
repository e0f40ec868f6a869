// Package config loads the runtime configuration of the confcascade binary
// from multiple sources (CLI flags, a YAML file, environment variables,
// built-in defaults) with precedence: CLI flags > YAML config > Environment
// variables > Defaults. The sources are chained with provider.Composite, the
// same cascade the binary serves to its users.
package config
