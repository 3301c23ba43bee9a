// Package config loads the YAML application configuration, .env files and
// sets up logging.
package config
