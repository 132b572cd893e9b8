package handlers

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/paia-tech/hsj-operator/internal/config"
)

// PrintConfig writes cfg to w as YAML with secrets masked.
func PrintConfig(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Redacted()); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
