package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vk/predictgen/internal/apiconfig"
	"github.com/vk/predictgen/internal/cfn"
	"github.com/vk/predictgen/internal/synth"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Parameter is a deployment parameter the document refers to.
type Parameter struct {
	Type        string `yaml:"Type" json:"Type"`
	Default     string `yaml:"Default,omitempty" json:"Default,omitempty"`
	Description string `yaml:"Description,omitempty" json:"Description,omitempty"`
}

// Document is the output of one compilation.
type Document struct {
	Parameters map[string]Parameter     `yaml:"Parameters,omitempty" json:"Parameters,omitempty"`
	Conditions map[string]cfn.Expr      `yaml:"Conditions,omitempty" json:"Conditions,omitempty"`
	Resources  Resources                `yaml:"Resources" json:"Resources"`
	Resolvers  []synth.ResolverArtifact `yaml:"Resolvers,omitempty" json:"Resolvers,omitempty"`
	// Schema is the generated input types, as SDL.
	Schema             string                             `yaml:"Schema,omitempty" json:"Schema,omitempty"`
	Auth               *apiconfig.AuthSettings            `yaml:"Auth,omitempty" json:"Auth,omitempty"`
	FieldAuth          map[string]*apiconfig.AuthSettings `yaml:"FieldAuth,omitempty" json:"FieldAuth,omitempty"`
	ConflictResolution *apiconfig.ConflictSettings        `yaml:"ConflictResolution,omitempty" json:"ConflictResolution,omitempty"`
	// Evaluated holds names and ARNs resolved for one concrete deployment,
	// keyed by "<LogicalID>.<Property>".
	Evaluated map[string]string `yaml:"Evaluated,omitempty" json:"Evaluated,omitempty"`
}

// Resources is the ordered resource section. It marshals as a mapping from
// logical ID to resource that keeps the slice order.
type Resources []synth.Resource

// MarshalYAML implements yaml.Marshaler.
func (rs Resources) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, r := range rs {
		var value yaml.Node
		if err := value.Encode(r); err != nil {
			return nil, fmt.Errorf("encoding resource %s: %w", r.LogicalID, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.LogicalID},
			&value,
		)
	}
	return node, nil
}

// MarshalJSON implements json.Marshaler.
func (rs Resources) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range rs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.LogicalID)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encoding resource %s: %w", r.LogicalID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Lookup returns the resource with the given logical ID.
func (rs Resources) Lookup(id string) (synth.Resource, bool) {
	for _, r := range rs {
		if r.LogicalID == id {
			return r, true
		}
	}
	return synth.Resource{}, false
}

// IDs lists the logical IDs in document order.
func (rs Resources) IDs() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.LogicalID
	}
	return out
}

// Marshal renders d in format.
func (d *Document) Marshal(format string) ([]byte, error) {
	switch format {
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
