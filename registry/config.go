package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes provider endpoints and the auto-middleware alias table
// loaded from YAML, grounded in the teacher's LoadAgentConfig
// (agent/config_loader.go).
type Config struct {
	Providers []ProviderConfig `yaml:"providers"`

	// ModelAliases maps a short model tag (e.g. "fast", "reasoning") to the
	// concrete "provider:model" id and the middleware names that should be
	// auto-attached when a caller resolves through the alias instead of a
	// literal provider:model string.
	ModelAliases map[string]ModelAlias `yaml:"model_aliases"`
}

type ProviderConfig struct {
	ID      string `yaml:"id"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Org     string `yaml:"org,omitempty"`
	Project string `yaml:"project,omitempty"`
}

type ModelAlias struct {
	Target     string   `yaml:"target"`
	Middleware []string `yaml:"middleware"`
}

// LoadConfig reads and parses a YAML registry config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("registry: parse config YAML: %w", err)
	}
	return cfg, nil
}

// Resolve looks up a model alias and returns its target "provider:model" id
// and the middleware names to auto-attach, or ok=false if tag is not an
// alias (the caller should treat it as a literal provider:model id).
func (c *Config) Resolve(tag string) (target string, middleware []string, ok bool) {
	if c == nil || c.ModelAliases == nil {
		return "", nil, false
	}
	alias, exists := c.ModelAliases[tag]
	if !exists {
		return "", nil, false
	}
	return alias.Target, alias.Middleware, true
}
