package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func load(t *testing.T, files map[string]string) (*Loader, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return NewLoader(), dir
}

func TestLoad_DirectiveArgumentsKeepSourceOrder(t *testing.T) {
	l, dir := load(t, map[string]string{"main.hcl": `
type "Query" {
  field "f" {
    directive "predictions" {
      zeta    = 1
      actions = ["identifyText"]
      alpha   = "${env}"
    }
  }
}
`})

	model, err := l.Load(context.Background(), dir)
	require.NoError(t, err)

	args := model.Schema.Types[0].Fields[0].Directives[0].Args
	require.Len(t, args, 3)
	assert.Equal(t, "zeta", args[0].Name)
	assert.Equal(t, "actions", args[1].Name)
	assert.Equal(t, "alpha", args[2].Name)
	assert.True(t, args[2].Value.RawEquals(cty.StringVal("${env}")))
}

func TestLoad_APIBlock(t *testing.T) {
	l, dir := load(t, map[string]string{"api.hcl": `
api "demo" {
  storage  = "media-${hash}"
  auth     = { primary = { type = "AWS_IAM" } }
}
`})

	model, err := l.Load(context.Background(), dir)
	require.NoError(t, err)
	require.NotNil(t, model.API)
	assert.Equal(t, "demo", model.API.Name)
	assert.Equal(t, "media-${hash}", model.API.Storage)
	assert.True(t, model.API.Auth.Type().IsObjectType())
	assert.Equal(t, cty.NilVal, model.API.Conflict)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		errText string
	}{
		{name: "syntax", content: `type "Query" {`, errText: "failed to parse"},
		{name: "unknown block argument", content: `type "Query" { bogus = 1 }`, errText: "failed to decode"},
		{name: "duplicate field", content: `type "Query" {
  field "a" {}
  field "a" {}
}`, errText: "field 'a' declared more than once"},
		{name: "directive with a nested block", content: `type "Query" {
  field "a" {
    directive "predictions" {
      nested {}
    }
  }
}`, errText: "directive 'predictions'"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, dir := load(t, map[string]string{"main.hcl": tc.content})
			_, err := l.Load(context.Background(), dir)
			assert.ErrorContains(t, err, tc.errText)
		})
	}
}
