package config

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Render encodes the config (secrets redacted) as "yaml" or "toml".
func Render(cfg *Config, format string) ([]byte, error) {
	redacted := cfg.Redacted()

	switch format {
	case "", "yaml", "yml":
		data, err := yaml.Marshal(redacted)
		if err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return data, nil
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(redacted); err != nil {
			return nil, fmt.Errorf("failed to encode toml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want yaml or toml)", format)
	}
}
