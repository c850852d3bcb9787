// Package config loads and validates botlink configuration.
//
// Configuration comes from a YAML file with environment variable
// overrides (BOTLINK_* pattern). Defaults are applied first, then file
// values, then environment values, so a minimal config file only needs
// the device identity and broker credentials.
package config
