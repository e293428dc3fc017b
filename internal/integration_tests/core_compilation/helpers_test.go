package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// dig walks a decoded YAML document along path. Strings index mappings and
// ints index sequences.
func dig(t *testing.T, doc any, path ...any) any {
	t.Helper()
	cur := doc
	for _, p := range path {
		switch key := p.(type) {
		case string:
			m, ok := cur.(map[string]any)
			require.True(t, ok, "expected a mapping at %q, got %T", key, cur)
			cur, ok = m[key]
			require.True(t, ok, "missing key %q", key)
		case int:
			s, ok := cur.([]any)
			require.True(t, ok, "expected a sequence at %d, got %T", key, cur)
			require.Less(t, key, len(s))
			cur = s[key]
		}
	}
	return cur
}

func schema(typeName, fieldName, actions string) string {
	return `
type "` + typeName + `" {
  field "` + fieldName + `" {
    directive "predictions" {
      actions = ` + actions + `
    }
  }
}
`
}

func api(storage string) string {
	return `
api "demo" {
  storage = "` + storage + `"
}
`
}
