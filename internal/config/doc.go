// Package config loads, validates, and normalizes reloop configuration.
//
// Configuration lives in a TOML file (default ~/.config/reloop/config.toml)
// with sections for paths, external tools, similarity engine tuning, and
// logging. Load applies defaults for anything omitted, expands ~ in paths,
// and rejects unusable values before any component sees the config.
package config
