package integration_tests

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vk/predictgen/internal/app"
	"github.com/vk/predictgen/internal/testutil"
)

// Test for: a two-action chain without an environment
func TestCompile_LabelsThenTranslate_NoEnvironment(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"schema.hcl": schema("Query", "speakTranslatedLabelText", `["identifyLabels", "translateText"]`),
		"api.hcl":    api("storage123"),
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	doc := testutil.DecodeYAMLOutput(t, result)

	stages := dig(t, doc, "Resolvers", 0, "Stages").([]any)
	require.Len(t, stages, 2)
	require.Equal(t, "identifyLabels", dig(t, stages[0], "Action", "Name"))
	require.Equal(t, "translateText", dig(t, stages[1], "Action", "Name"))
	require.Contains(t, dig(t, stages[1], "Action", "RequestTemplate"), "$ctx.prev.result")
	require.Equal(t, "PIPELINE", dig(t, doc, "Resolvers", 0, "Kind"))

	arn := dig(t, doc, "Resources", "PredictionsIAMRole", "Properties", "Policies", 0, "PolicyDocument", "Statement", 0, "Resource")
	require.Equal(t, "arn:aws:s3:::storage123/*", arn)

	wantIDs := []string{
		"PredictionsIAMRole",
		"RekognitionDataSource",
		"TranslateDataSource",
		"identifyLabelsFunction",
		"translateTextFunction",
		"QuerySpeakTranslatedLabelTextResolver",
	}
	if diff := cmp.Diff(wantIDs, testutil.ResourceIDs(t, result)); diff != "" {
		t.Errorf("resource order mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, "NONE", dig(t, doc, "Parameters", "env", "Default"))
	require.NotContains(t, doc, "Conditions")

	fnDeps := dig(t, doc, "Resources", "translateTextFunction", "DependsOn")
	require.Equal(t, []any{"PredictionsIAMRole", "TranslateDataSource"}, fnDeps)
}

// Test for: env-dependent storage keeps both branches
func TestCompile_EnvironmentStorageKeepsBothBranches(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"schema.hcl": schema("Query", "translateThis", `["translateText"]`),
		"api.hcl":    api("storage123-$${env}"),
	}
	cfg := app.Config{Env: "dev", StackName: "amplify-app-dev-abc123", Evaluate: true}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, cfg)

	// --- Assert ---
	require.NoError(t, result.Err)
	doc := testutil.DecodeYAMLOutput(t, result)

	branches := dig(t, doc, "Resources", "PredictionsIAMRole", "Properties", "Policies", 0, "PolicyDocument", "Statement", 0, "Resource", "Fn::If").([]any)
	require.Len(t, branches, 3)
	require.Equal(t, "HasEnvironmentParameter", branches[0])
	require.Equal(t, "arn:aws:s3:::storage123-${env}/*", dig(t, branches[1], "Fn::Sub", 0))
	require.Equal(t, map[string]any{"Ref": "env"}, dig(t, branches[1], "Fn::Sub", 1, "env"))
	require.Equal(t, "arn:aws:s3:::storage123/*", branches[2])

	require.Equal(t, "dev", dig(t, doc, "Parameters", "env", "Default"))
	require.Contains(t, dig(t, doc, "Conditions"), "HasEnvironmentParameter")

	evaluated := dig(t, doc, "Evaluated")
	require.Equal(t, "arn:aws:s3:::storage123-dev/*", dig(t, evaluated, "StorageArn"))
	require.Equal(t, "predictionsIAMRole-api-dev", dig(t, evaluated, "PredictionsIAMRole.RoleName"))
}

// Test for: the same definition evaluated without an environment
func TestCompile_EnvironmentStorageWithoutEnvironment(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"schema.hcl": schema("Query", "translateThis", `["translateText"]`),
		"api.hcl":    api("storage123-$${env}"),
	}
	cfg := app.Config{StackName: "amplify-app-dev-abc123", Evaluate: true}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, cfg)

	// --- Assert ---
	require.NoError(t, result.Err)
	doc := testutil.DecodeYAMLOutput(t, result)
	require.Equal(t, "arn:aws:s3:::storage123/*", dig(t, doc, "Evaluated", "StorageArn"))
	require.Equal(t, "predictionsIAMRole-api", dig(t, doc, "Evaluated", "PredictionsIAMRole.RoleName"))
}

// Test for: text to speech brings in the generated function
func TestCompile_TextToSpeechDefinesFunction(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"schema.hcl": schema("Query", "speakTranslatedImageText", `["identifyText", "translateText", "convertTextToSpeech"]`),
		"api.hcl":    api("storage123"),
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	wantIDs := []string{
		"PredictionsLambdaIAMRole",
		"PredictionsLambda",
		"PredictionsIAMRole",
		"RekognitionDataSource",
		"TranslateDataSource",
		"LambdaDataSource",
		"identifyTextFunction",
		"translateTextFunction",
		"convertTextToSpeechFunction",
		"QuerySpeakTranslatedImageTextResolver",
	}
	if diff := cmp.Diff(wantIDs, testutil.ResourceIDs(t, result)); diff != "" {
		t.Errorf("resource order mismatch (-want +got):\n%s", diff)
	}

	doc := testutil.DecodeYAMLOutput(t, result)
	var policyNames []any
	for _, p := range dig(t, doc, "Resources", "PredictionsIAMRole", "Properties", "Policies").([]any) {
		policyNames = append(policyNames, dig(t, p, "PolicyName"))
	}
	require.Equal(t, []any{
		"PredictionsStorageAccess",
		"identifyTextAccess",
		"translateTextAccess",
		"PredictionsLambdaAccess",
	}, policyNames)
	require.Equal(t, "AWS_LAMBDA", dig(t, doc, "Resources", "LambdaDataSource", "Properties", "Type"))
}

// Test for: fields sharing an action share its function and policy
func TestCompile_SharedActionsAcrossFields(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"schema.hcl": `
type "Query" {
  field "translateOne" {
    directive "predictions" {
      actions = ["translateText"]
    }
  }
  field "translateLabels" {
    directive "predictions" {
      actions = ["identifyLabels", "translateText"]
    }
  }
}
`,
		"api.hcl": api("storage123"),
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	doc := testutil.DecodeYAMLOutput(t, result)

	ids := testutil.ResourceIDs(t, result)
	count := 0
	for _, id := range ids {
		if id == "translateTextFunction" {
			count++
		}
	}
	require.Equal(t, 1, count)
	require.Len(t, dig(t, doc, "Resolvers").([]any), 2)
	require.Len(t, dig(t, doc, "Resources", "PredictionsIAMRole", "Properties", "Policies").([]any), 3)
	require.Contains(t, dig(t, doc, "Schema"), "input TranslateOneInput {")
	require.Contains(t, dig(t, doc, "Schema"), "  identifyLabels: TranslateLabelsIdentifyLabelsInput!")
}

// Test for: a schema without the directive compiles to an empty document
func TestCompile_NoDirectives(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"schema.hcl": `
type "Query" {
  field "echo" {}
}
`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Empty(t, testutil.ResourceIDs(t, result))
}
