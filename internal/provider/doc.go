// Package provider implements typed configuration lookups over key-value
// sources. A Record reads from a primary source and an optional default
// source; a Composite chains providers so that the first one holding a value
// answers. Lookups are strict about types: a value that exists but cannot be
// read as the requested type is an error, never a missing value.
package provider
