package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/curlkit/curlkit/packages/client"
)

// Config represents the curlkit configuration file. Field names mirror
// the request options they feed.
type Config struct {
	Base            string            `json:"base,omitempty" yaml:"base,omitempty"`
	Timeout         int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // seconds
	FollowRedirects *bool             `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	FailOnHTTPError *bool             `json:"failOnHttpError,omitempty" yaml:"failOnHttpError,omitempty"`
	Verbose         *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"` // Default headers for all requests
	Cookies         map[string]string `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	Jar             string            `json:"jar,omitempty" yaml:"jar,omitempty"` // off, memory or a file path
	Type            string            `json:"type,omitempty" yaml:"type,omitempty"`
	Auth            *AuthConfig       `json:"auth,omitempty" yaml:"auth,omitempty"`
	Proxy           *ProxyConfig      `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Overrides       map[string]any    `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
	HistoryDB       string            `json:"historyDb,omitempty" yaml:"historyDb,omitempty"`
}

// AuthConfig holds file-sourced credentials.
type AuthConfig struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Scheme   string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
}

// ProxyConfig holds file-sourced proxy settings.
type ProxyConfig struct {
	URL      string `json:"url" yaml:"url"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// BoolPtr returns a pointer to a bool value, for the tri-state fields.
func BoolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetNoColor returns the no color setting, defaulting to false.
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names, in lookup
// order.
var ConfigFilenames = []string{
	".curlkit.json",
	"curlkit.json",
	".curlkit.yaml",
	".curlkit.yml",
	"curlkit.yaml",
	"curlkit.yml",
}

// LoadConfig loads configuration from the specified path or searches
// the current directory for known config files.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory.
// Missing config files are not an error; defaults are returned.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file. The
// extension picks the decoder; anything that is not .json decodes as
// YAML.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	return config, nil
}

// Merge merges another config into this one, with other taking
// precedence.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Base != "" {
		result.Base = other.Base
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Jar != "" {
		result.Jar = other.Jar
	}
	if other.Type != "" {
		result.Type = other.Type
	}
	if other.Auth != nil {
		result.Auth = other.Auth
	}
	if other.Proxy != nil {
		result.Proxy = other.Proxy
	}
	if other.HistoryDB != "" {
		result.HistoryDB = other.HistoryDB
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.FailOnHTTPError != nil {
		result.FailOnHTTPError = other.FailOnHTTPError
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	// Merge headers
	if len(other.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range other.Headers {
			result.Headers[k] = v
		}
	}

	// Merge cookies
	if len(other.Cookies) > 0 {
		if result.Cookies == nil {
			result.Cookies = make(map[string]string)
		}
		for k, v := range other.Cookies {
			result.Cookies[k] = v
		}
	}

	// Merge raw overrides
	if len(other.Overrides) > 0 {
		if result.Overrides == nil {
			result.Overrides = make(map[string]any)
		}
		for k, v := range other.Overrides {
			result.Overrides[k] = v
		}
	}

	return &result
}

// Options converts the file configuration into client options, ready to
// merge under CLI flags.
func (c *Config) Options() *client.Options {
	opts := &client.Options{
		Base:            c.Base,
		Timeout:         c.Timeout,
		FollowRedirects: c.FollowRedirects,
		MaxRedirects:    c.MaxRedirects,
		Jar:             c.Jar,
		Type:            c.Type,
		FailOnHTTPError: c.FailOnHTTPError,
		Verbose:         c.Verbose,
		Headers:         c.Headers,
		Cookies:         c.Cookies,
		Overrides:       c.Overrides,
	}

	if c.Auth != nil {
		opts.Auth = &client.Auth{
			Username: c.Auth.Username,
			Password: c.Auth.Password,
			Scheme:   c.Auth.Scheme,
		}
	}
	if c.Proxy != nil {
		opts.Proxy = &client.Proxy{
			URL:      c.Proxy.URL,
			Username: c.Proxy.Username,
			Password: c.Proxy.Password,
		}
	}

	return opts
}

// SaveConfig saves the configuration to a file, JSON or YAML by
// extension.
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	default:
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
