// Package application provides application initialization and dependency wiring.
// It loads .env files into the environment, layers the optional YAML defaults
// file underneath, and builds the lookup handler, router, and HTTP server,
// keeping the main package focused on CLI parsing and orchestration.
package application
