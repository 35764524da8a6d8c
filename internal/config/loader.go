package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".opsdeck"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("OPSDECK_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := resolveHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := resolveHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

func resolveHomeDir() (string, error) {
	if h := strings.TrimSpace(os.Getenv("OPSDECK_HOME")); h != "" {
		if strings.HasPrefix(h, "~") {
			base, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(base, h[1:]), nil
		}
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return home, nil
}

// Load loads the configuration from file and environment variables.
// Priority: environment > file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := loadResolvedConfig(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Override with environment variables for each group.
	for _, group := range []struct {
		prefix string
		target any
	}{
		{"OPSDECK_PATHS", &cfg.Paths},
		{"OPSDECK_AGENTS", &cfg.Agents},
		{"OPSDECK_GATEWAY", &cfg.Gateway},
		{"OPSDECK_SHEETS", &cfg.Sheets},
		{"OPSDECK_MAIL", &cfg.Mail},
		{"OPSDECK_SLACK", &cfg.Slack},
		{"OPSDECK_EVENTS", &cfg.Events},
	} {
		if err := envconfig.Process(group.prefix, group.target); err != nil {
			return nil, fmt.Errorf("process %s environment: %w", group.prefix, err)
		}
	}

	// Expand ~ in paths.
	expandHome := func(p *string) {
		if strings.HasPrefix(*p, "~") {
			if home, err := os.UserHomeDir(); err == nil {
				*p = filepath.Join(home, (*p)[1:])
			}
		}
	}
	expandHome(&cfg.Paths.State)
	expandHome(&cfg.Paths.BillingDB)

	return cfg, nil
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// loadResolvedConfig reads the config file and substitutes ${VAR}
// placeholders from the process environment. Unset variables resolve to
// the empty string.
func loadResolvedConfig(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	substituteEnvValues(raw)
	return json.Marshal(raw)
}

func substituteEnvValues(obj map[string]any) {
	for k, v := range obj {
		obj[k] = substituteValue(v)
	}
}

func substituteValue(v any) any {
	switch val := v.(type) {
	case string:
		return envPattern.ReplaceAllStringFunc(val, func(m string) string {
			name := envPattern.FindStringSubmatch(m)[1]
			return os.Getenv(name)
		})
	case map[string]any:
		substituteEnvValues(val)
		return val
	case []any:
		for i, item := range val {
			val[i] = substituteValue(item)
		}
		return val
	default:
		return v
	}
}
