// Package config loads, normalizes, and validates ladle configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LADLE_VISION_API_KEY. The Config type centralizes every knob the CLI and
// pipeline need, and the Workspace type resolves the per-video directory
// layout so path conventions live in one place.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
