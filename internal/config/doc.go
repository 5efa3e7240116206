// Package config provides configuration management for pubscan.
//
// It defines the pipeline's fixed bounds (page caps, timeouts, the
// confidence floor), the Config struct populated from CLI flags, and an
// optional YAML config file with per-site overrides.
package config
