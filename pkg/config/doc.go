// Package config loads typed configuration structs from environment
// variables with optional .env file support.
//
// Structs declare their settings with `env` tags understood by
// github.com/caarlos0/env; Load parses them once per type and caches the
// result for the lifetime of the process. MustLoad panics on failure and
// suits required startup configuration. LoadFresh bypasses the cache for
// tests.
package config
