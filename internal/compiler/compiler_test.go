package compiler

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/vk/predictgen/internal/apiconfig"
	"github.com/vk/predictgen/internal/catalog"
	"github.com/vk/predictgen/internal/cfn"
	"github.com/vk/predictgen/internal/compileerr"
	"github.com/vk/predictgen/internal/config"
	"github.com/vk/predictgen/internal/naming"
)

func predictField(name string, actions ...string) *config.FieldDef {
	vals := make([]cty.Value, len(actions))
	for i, a := range actions {
		vals[i] = cty.StringVal(a)
	}
	return &config.FieldDef{
		Name: name,
		Directives: []*config.Directive{{
			Name: "predictions",
			Args: []config.Argument{{Name: "actions", Value: cty.TupleVal(vals)}},
		}},
	}
}

func testModel(storage string, fields ...*config.FieldDef) *config.Model {
	return &config.Model{
		Schema: &config.Schema{Types: []*config.TypeDef{{Name: "Query", Fields: fields}}},
		API:    &config.API{Name: "demo", Storage: storage, Auth: cty.NilVal, Conflict: cty.NilVal},
	}
}

func storageArn(t *testing.T, doc *Document) cfn.Expr {
	t.Helper()
	role, ok := doc.Resources.Lookup(naming.IAMRoleID)
	require.True(t, ok)
	policy := role.Properties["Policies"].([]any)[0].(map[string]any)
	statement := policy["PolicyDocument"].(map[string]any)["Statement"].([]any)[0].(map[string]any)
	return statement["Resource"].(cfn.Expr)
}

func TestCompile_LabelsThenTranslate(t *testing.T) {
	m := testModel("storage123", predictField("speakTranslatedLabelText", "identifyLabels", "translateText"))

	doc, err := New(nil).Compile(context.Background(), m, Options{})
	require.NoError(t, err)

	require.Len(t, doc.Resolvers, 1)
	r := doc.Resolvers[0]
	require.Len(t, r.Stages, 2)
	assert.Equal(t, "identifyLabels", r.Stages[0].Action.Name)
	assert.Equal(t, "translateText", r.Stages[1].Action.Name)
	assert.Contains(t, r.Stages[1].Action.RequestTemplate, "$ctx.prev.result")

	assert.Equal(t, cfn.String("arn:aws:s3:::storage123/*"), storageArn(t, doc))
	assert.Nil(t, doc.Conditions)
	assert.Equal(t, naming.NoEnvValue, doc.Parameters[naming.EnvParam].Default)
	assert.Contains(t, doc.Schema, "input SpeakTranslatedLabelTextInput {")
	assert.Nil(t, doc.Evaluated)
}

func TestCompile_EnvironmentBucket(t *testing.T) {
	m := testModel("storage123-${env}", predictField("translateThis", "translateText"))

	doc, err := New(nil).Compile(context.Background(), m, Options{Env: "dev", StackName: "amplify-app-dev-abc", Evaluate: true})
	require.NoError(t, err)

	arn := storageArn(t, doc)
	withEnv, err := naming.Resolve(arn, "dev", "amplify-app-dev-abc")
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:s3:::storage123-dev/*", withEnv)
	withoutEnv, err := naming.Resolve(arn, "", "amplify-app-dev-abc")
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:s3:::storage123/*", withoutEnv)

	require.Contains(t, doc.Conditions, naming.HasEnvironmentCondition)
	assert.Equal(t, "dev", doc.Parameters[naming.EnvParam].Default)
	assert.Equal(t, "arn:aws:s3:::storage123-dev/*", doc.Evaluated["StorageArn"])
	assert.Equal(t, "predictionsIAMRole-api-dev", doc.Evaluated["PredictionsIAMRole.RoleName"])
}

func TestCompile_BucketOverride(t *testing.T) {
	m := testModel("", predictField("translateThis", "translateText"))

	_, err := New(nil).Compile(context.Background(), m, Options{})
	var ce *compileerr.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"storage"}, ce.Missing)

	doc, err := New(nil).Compile(context.Background(), m, Options{Bucket: "override"})
	require.NoError(t, err)
	assert.Equal(t, cfn.String("arn:aws:s3:::override/*"), storageArn(t, doc))
}

func TestCompile_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		model   *config.Model
		matches func(error) bool
	}{
		{
			name:    "unknown action",
			model:   testModel("b", predictField("f", "describeImage")),
			matches: compileerr.IsUnsupportedAction,
		},
		{
			name:    "chaining after text to speech",
			model:   testModel("b", predictField("f", "convertTextToSpeech", "translateText")),
			matches: compileerr.IsDependencyResolution,
		},
		{
			name: "duplicate api auth",
			model: func() *config.Model {
				m := testModel("b", predictField("f", "translateText"))
				m.API.Auth = cty.ObjectVal(map[string]cty.Value{
					"primary":    cty.ObjectVal(map[string]cty.Value{"type": cty.StringVal("API_KEY")}),
					"additional": cty.TupleVal([]cty.Value{cty.ObjectVal(map[string]cty.Value{"type": cty.StringVal("API_KEY")})}),
				})
				return m
			}(),
			matches: compileerr.IsDuplicateAuthType,
		},
		{
			name: "colliding resolver IDs",
			model: func() *config.Model {
				m := testModel("b", predictField("fooBar", "translateText"))
				m.Schema.Types = append(m.Schema.Types, &config.TypeDef{
					Name:   "QueryFoo",
					Fields: []*config.FieldDef{predictField("bar", "translateText")},
				})
				return m
			}(),
			matches: compileerr.IsConfig,
		},
		{
			name: "lambda conflict handler without arn",
			model: func() *config.Model {
				m := testModel("b", predictField("f", "translateText"))
				m.API.Conflict = cty.ObjectVal(map[string]cty.Value{"strategy": cty.StringVal("LAMBDA")})
				return m
			}(),
			matches: compileerr.IsConfig,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := New(nil).Compile(context.Background(), tc.model, Options{})
			require.Error(t, err)
			assert.Nil(t, doc, "no partial document on failure")
			assert.True(t, tc.matches(err), "unexpected error: %v", err)
		})
	}
}

func TestCompile_EmptyModel(t *testing.T) {
	doc, err := New(nil).Compile(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, doc.Resources)
	assert.Empty(t, doc.Resolvers)
	assert.Empty(t, doc.Schema)
}

func TestCompile_AuthSettings(t *testing.T) {
	f := predictField("translateThis", "translateText")
	f.Directives[0].Args = append(f.Directives[0].Args, config.Argument{
		Name: "auth",
		Value: cty.ObjectVal(map[string]cty.Value{
			"primary": cty.ObjectVal(map[string]cty.Value{"type": cty.StringVal("AMAZON_COGNITO_USER_POOLS")}),
		}),
	})
	m := testModel("b", f)
	m.API.Auth = cty.ObjectVal(map[string]cty.Value{
		"primary": cty.ObjectVal(map[string]cty.Value{"type": cty.StringVal("AWS_IAM")}),
	})

	doc, err := New(nil).Compile(context.Background(), m, Options{})
	require.NoError(t, err)

	assert.Equal(t, "AWS_IAM", doc.Auth.AuthenticationType)
	fieldAuth := doc.FieldAuth["Query.translateThis"]
	require.NotNil(t, fieldAuth)
	assert.Equal(t, "AMAZON_COGNITO_USER_POOLS", fieldAuth.AuthenticationType)
	assert.Contains(t, doc.Parameters, apiconfig.AuthUserPoolParam)
}

func TestCompile_IsDeterministic(t *testing.T) {
	m := testModel("media-${env}-${hash}",
		predictField("speakTranslatedImageText", "identifyText", "translateText", "convertTextToSpeech"),
		predictField("labels", "identifyLabels"),
	)
	c := New(catalog.Default())

	render := func() (string, string) {
		doc, err := c.Compile(context.Background(), m, Options{Env: "dev"})
		require.NoError(t, err)
		y, err := doc.Marshal(FormatYAML)
		require.NoError(t, err)
		j, err := doc.Marshal(FormatJSON)
		require.NoError(t, err)
		return string(y), string(j)
	}

	wantYAML, wantJSON := render()
	var wg sync.WaitGroup
	results := make([][2]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := c.Compile(context.Background(), m, Options{Env: "dev"})
			if err != nil {
				return
			}
			y, _ := doc.Marshal(FormatYAML)
			j, _ := doc.Marshal(FormatJSON)
			results[i] = [2]string{string(y), string(j)}
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		assert.Equal(t, wantYAML, r[0], "yaml run %d differs", i)
		assert.Equal(t, wantJSON, r[1], "json run %d differs", i)
	}
	gotYAML, gotJSON := render()
	assert.Equal(t, wantYAML, gotYAML)
	assert.Equal(t, wantJSON, gotJSON)
}

func TestMarshal_KeepsResourceOrder(t *testing.T) {
	m := testModel("b", predictField("speak", "identifyText", "convertTextToSpeech"))
	doc, err := New(nil).Compile(context.Background(), m, Options{})
	require.NoError(t, err)
	want := doc.Resources.IDs()

	t.Run("yaml", func(t *testing.T) {
		out, err := doc.Marshal(FormatYAML)
		require.NoError(t, err)

		var parsed struct {
			Resources yaml.Node `yaml:"Resources"`
		}
		require.NoError(t, yaml.Unmarshal(out, &parsed))
		var got []string
		for i := 0; i < len(parsed.Resources.Content); i += 2 {
			got = append(got, parsed.Resources.Content[i].Value)
		}
		assert.Equal(t, want, got)
	})

	t.Run("json", func(t *testing.T) {
		out, err := doc.Marshal(FormatJSON)
		require.NoError(t, err)
		require.True(t, json.Valid(out))
		assert.True(t, strings.HasSuffix(string(out), "}\n"))

		last := -1
		for _, id := range want {
			idx := strings.Index(string(out), `"`+id+`": {`)
			require.Greater(t, idx, last, "%s out of order", id)
			last = idx
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := doc.Marshal("toml")
		assert.Error(t, err)
	})
}
