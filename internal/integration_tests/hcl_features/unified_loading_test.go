package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/predictgen/internal/app"
	"github.com/vk/predictgen/internal/testutil"
)

// Test for: one type declared across several files
func TestHCL_TypeSpreadAcrossFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"a_labels.hcl": `
type "Query" {
  field "labels" {
    directive "predictions" {
      actions = ["identifyLabels"]
    }
  }
}
`,
		"nested/b_translate.hcl": `
type "Query" {
  field "translate" {
    directive "predictions" {
      actions = ["translateText"]
    }
  }
}
`,
		"api.hcl": `
api "demo" {
  storage = "storage123"
}
`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	model := result.App.Model()
	require.Len(t, model.Schema.Types, 1)
	require.Len(t, model.Schema.Types[0].Fields, 2)
	require.Equal(t, "labels", model.Schema.Types[0].Fields[0].Name)
	require.Equal(t, "translate", model.Schema.Types[0].Fields[1].Name)

	ids := testutil.ResourceIDs(t, result)
	require.Contains(t, ids, "QueryLabelsResolver")
	require.Contains(t, ids, "QueryTranslateResolver")
}

// Test for: the env and hash placeholders survive interpolation
func TestHCL_PlaceholdersSurviveInterpolation(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"schema.hcl": `
type "Query" {
  field "translate" {
    directive "predictions" {
      actions = ["translateText"]
    }
  }
}
`,
		"api.hcl": `
api "demo" {
  storage = "media${hash}-${env}"
}
`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{Env: "prod", StackName: "amplify-app-prod-7f3a", Evaluate: true})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, "media${hash}-${env}", result.App.Model().API.Storage)

	doc := testutil.DecodeYAMLOutput(t, result)
	evaluated, ok := doc["Evaluated"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "arn:aws:s3:::media7f3a-prod/*", evaluated["StorageArn"])
}

func TestHCL_LoadingErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		files   map[string]string
		contain string
	}{
		{
			name: "field declared twice across files",
			files: map[string]string{
				"a.hcl": `type "Query" {
  field "dup" {}
}
`,
				"b.hcl": `type "Query" {
  field "dup" {}
}
`,
			},
			contain: "field 'dup' declared more than once",
		},
		{
			name: "second api block",
			files: map[string]string{
				"a.hcl": `api "one" {}`,
				"b.hcl": `api "two" {}`,
			},
			contain: "api 'two' declared, but api 'one' was already declared",
		},
		{
			name: "unknown variable in a directive",
			files: map[string]string{
				"a.hcl": `
type "Query" {
  field "f" {
    directive "predictions" {
      actions = [var.action]
    }
  }
}
`,
			},
			contain: "argument 'actions'",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := testutil.RunIntegrationTest(t, tc.files, app.Config{})

			require.Error(t, result.Err)
			require.ErrorContains(t, result.Err, "failed to load configuration")
			require.ErrorContains(t, result.Err, tc.contain)
		})
	}
}
