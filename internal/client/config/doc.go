// Package config loads runtime configuration for the vaultgate CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the credential store REST API
//	-t int      request timeout (seconds)
//	-d string   sqlite DSN of the local item cache
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "https://vault.example.com/api",
//	  "request_timeout": "10s",
//	  "database_dsn": "vaultgate.db"
//	}
//
// Primary API
//
//   - type Config                     — ServerBaseURL, RequestTimeout, DatabaseDSN
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
