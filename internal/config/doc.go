// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. Besides the HTTP settings it carries the
// package catalog definition (packages and service fee) used to seed pricing.
package config
