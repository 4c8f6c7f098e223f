// SPDX-License-Identifier: MPL-2.0

// Package config loads stevedore's tool configuration: engine preference,
// verbosity, and build/run defaults. Values come from defaults, the TOML
// config file, and STEVEDORE_* environment variables, in ascending
// precedence.
package config
