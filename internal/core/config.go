package core

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config stores assistant connection settings.
type Config struct {
	AssistantBaseURL string `json:"assistant_base_url,omitempty"`
	AssistantAPIKey  string `json:"assistant_api_key,omitempty"`
	AssistantModel   string `json:"assistant_model,omitempty"`
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ripple", "config.json"), nil
}

// ReadConfig reads the config file if present. A missing file returns an
// empty config, not an error.
func ReadConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// WriteConfig writes the config file, creating the directory as needed.
func WriteConfig(config Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
