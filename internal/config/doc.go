// Package config loads, normalizes, and validates stemmix configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PORT and the S3_* storage credentials. The Config type centralizes every
// knob the service and CLI need, so the scratch directory and external tool
// names are discovered in one pass and injected from there.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
