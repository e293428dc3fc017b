package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// DecodeYAMLOutput parses the YAML document a successful run produced.
func DecodeYAMLOutput(t *testing.T, result *HarnessResult) map[string]any {
	t.Helper()
	require.NoError(t, result.Err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(result.Output), &doc), "output is not valid YAML:\n%s", result.Output)
	return doc
}

// ResourceIDs returns the logical IDs of the Resources section in document
// order.
func ResourceIDs(t *testing.T, result *HarnessResult) []string {
	t.Helper()
	require.NoError(t, result.Err)

	var doc struct {
		Resources yaml.Node `yaml:"Resources"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(result.Output), &doc))
	require.Equal(t, yaml.MappingNode, doc.Resources.Kind, "Resources is not a mapping")

	var ids []string
	for i := 0; i < len(doc.Resources.Content); i += 2 {
		ids = append(ids, doc.Resources.Content[i].Value)
	}
	return ids
}
