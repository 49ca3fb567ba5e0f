// Package config handles configuration loading for curlkit.
//
// It provides functionality for:
//   - Loading configuration from .curlkit.json / .curlkit.yaml files
//   - Default configuration values
//   - Conversion into client options
package config
