// Package identity resolves raw author handles to canonical contributor names.
package identity

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Alias lists the handles a canonical contributor name is known by.
type Alias struct {
	Name    string
	Handles []string
}

// Mapper resolves handles against an ordered alias table. The first matching entry wins.
// A nil Mapper maps every handle to itself.
type Mapper struct {
	aliases []Alias
}

// NewMapper creates a Mapper; aliases are consulted in the order given.
func NewMapper(aliases ...Alias) *Mapper {
	return &Mapper{aliases: aliases}
}

// ParseAliases decodes a JSON (or YAML) object of canonical name to handle list.
// Key order of the document is kept, so precedence matches what the user wrote.
func ParseAliases(raw string) (*Mapper, error) {
	if strings.TrimSpace(raw) == "" {
		return NewMapper(), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse users aliases: %w", err)
	}
	if len(doc.Content) == 0 {
		return NewMapper(), nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse users aliases: expected an object of name to aliases, got %s", root.Tag)
	}

	aliases := make([]Alias, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		var handles []string
		if err := root.Content[i+1].Decode(&handles); err != nil {
			return nil, fmt.Errorf("failed to parse aliases of %q: %w", root.Content[i].Value, err)
		}
		aliases = append(aliases, Alias{Name: root.Content[i].Value, Handles: handles})
	}
	return NewMapper(aliases...), nil
}

// Map returns the canonical name for handle, or handle itself when no alias matches.
func (m *Mapper) Map(handle string) string {
	if m == nil {
		return handle
	}
	for _, alias := range m.aliases {
		if slices.Contains(alias.Handles, handle) {
			return alias.Name
		}
	}
	return handle
}

// Aliases returns the configured table in precedence order.
func (m *Mapper) Aliases() []Alias {
	if m == nil {
		return nil
	}
	return m.aliases
}
