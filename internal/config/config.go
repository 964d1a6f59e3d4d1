package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used when no config file is present or a key is missing.
const (
	DefaultModel            = "gpt-4o"
	DefaultEmbeddingModel   = "text-embedding-3-small"
	DefaultBaseURL          = "https://api.openai.com/v1"
	DefaultMaxTokens        = 1000
	DefaultClarifyMaxTokens = 50
	DefaultRequestTimeout   = 60 * time.Second
	DefaultHistoryDir       = "wirescore_data"
)

// Config holds parameters loaded from an optional YAML file. Missing keys
// fall back to defaults via the getters, so an empty Config is usable.
type Config struct {
	values map[string]any
}

// Empty returns a Config with no file-backed values.
func Empty() *Config {
	return &Config{values: map[string]any{}}
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return &Config{values: values}, nil
}

// GetString returns a string-typed parameter, or "" if absent or mistyped.
func (c *Config) GetString(key string) string {
	value, ok := c.values[key]
	if !ok {
		return ""
	}
	str, ok := value.(string)
	if !ok {
		return ""
	}
	return str
}

// GetStringOrDefault returns a string-typed parameter, or defaultValue if
// absent or mistyped.
func (c *Config) GetStringOrDefault(key, defaultValue string) string {
	value := c.GetString(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetIntOrDefault returns an integer-typed parameter, or defaultValue if
// absent or mistyped.
func (c *Config) GetIntOrDefault(key string, defaultValue int) int {
	value, ok := c.values[key]
	if !ok {
		return defaultValue
	}
	intValue, ok := value.(int)
	if !ok {
		return defaultValue
	}
	return intValue
}

// GetDurationOrDefault returns a duration parameter given as integer
// milliseconds, or defaultValue if absent or negative.
func (c *Config) GetDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	intValue := c.GetIntOrDefault(key, -1)
	if intValue < 0 {
		return defaultValue
	}
	return time.Duration(intValue) * time.Millisecond
}
