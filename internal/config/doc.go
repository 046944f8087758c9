// Package config loads the service configuration.
//
// Values are resolved in this order, later sources winning:
//
//  1. built-in defaults
//  2. an optional YAML file
//  3. environment variables (a .env file in the working directory is loaded
//     first when present; it never overrides variables already set)
//
// Command-line flags are applied on top by the cli package.
package config
