// Package config loads shell configuration from the environment using
// kelseyhightower/envconfig.
//
// Sections:
//   - Server: listen host and port
//   - Shell: product name, protocol and wildcard host for app origins
//   - Remote: session gRPC address, change feed URL, token-info URL
//   - Store: driver (memory or sqlite), database path, YAML seed file
//   - Logging, RateLimit
package config
