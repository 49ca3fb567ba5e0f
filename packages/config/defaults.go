package config

// DefaultConfig returns a configuration with default values. Zero
// values defer to the client's own defaults at merge time.
func DefaultConfig() *Config {
	return &Config{
		Timeout:      0,
		MaxRedirects: 0,
		Jar:          "",
		Headers:      nil,
		HistoryDB:    "",
	}
}
