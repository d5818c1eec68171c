// Package config loads, normalizes, and validates presskit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// pipeline needs: theme tags, the build and site trees, the renderer and
// transcoder commands, and staging destinations.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths, canonical log formats, and clear validation errors.
package config
