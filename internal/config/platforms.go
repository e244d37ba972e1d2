package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Platforms is the platform mapping kept as YAML text.
// In a configuration file it may be written either as a block string or as
// a nested mapping; both decode to the same text.
type Platforms string

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Platforms) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*p = Platforms(node.Value)
		return nil
	}

	text, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("re-encode platforms: %w", err)
	}

	*p = Platforms(text)

	return nil
}
