package catalog

import "gopkg.in/yaml.v3"

// Model describes one inference model offered by a provider.
type Model struct {
	// Model identifier (set during YAML unmarshaling from the map key)
	ID string `yaml:"-" json:"id"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	SupportsTools  bool `yaml:"supports_tools" json:"supports_tools"`
	SupportsVision bool `yaml:"supports_vision" json:"supports_vision"`

	ContextWindow int `yaml:"context_window" json:"context_window"`
	MaxOutput     int `yaml:"max_output" json:"max_output"`
}

// Provider represents all models for a provider.
type Provider struct {
	DisplayName string  `yaml:"display_name" json:"display_name"`
	Models      []Model `yaml:"-" json:"models"`
}

// UnmarshalYAML preserves the model order defined in the YAML file while
// still unmarshaling models as a mapping keyed by model id.
func (p *Provider) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		DisplayName string    `yaml:"display_name"`
		Models      yaml.Node `yaml:"models"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	p.DisplayName = raw.DisplayName

	// Mapping nodes alternate key, value
	for i := 0; i+1 < len(raw.Models.Content); i += 2 {
		var m Model
		if err := raw.Models.Content[i+1].Decode(&m); err != nil {
			return err
		}
		m.ID = raw.Models.Content[i].Value
		p.Models = append(p.Models, m)
	}
	return nil
}
