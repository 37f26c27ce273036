// Package config loads the dispatch engine's process configuration
// (mocks.*, server.*, log.*) and its service fixtures (the Service /
// Operation / Response definitions the dispatch pipeline serves), both
// from YAML or JSON files with the format auto-detected from the file
// extension.
package config
