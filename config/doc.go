// Package config loads datafeed configuration from a YAML file, an optional
// .env file, and the process environment.
//
// Values are resolved in that order, later sources winning. Environment
// variables map onto nested keys by underscore splitting, so
// PREFETCH_BATCH_SIZE sets prefetch.batch_size. An env prefix can be
// stripped first with WithEnvPrefix.
//
// # Usage
//
//	var cfg Config
//	err := config.LoadConfig("datafeed", &cfg, config.WithConfigFile(path))
package config
