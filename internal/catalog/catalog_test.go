package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/predictgen/internal/compileerr"
	"github.com/vk/predictgen/internal/vtl"
)

func TestDefault_Actions(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{
		"convertTextToSpeech",
		"identifyEntities",
		"identifyLabels",
		"identifyText",
		"translateText",
	}, c.Actions())
}

func TestLookup_UnknownAction(t *testing.T) {
	_, err := Default().Lookup("describeImage")
	require.Error(t, err)

	var ue *compileerr.UnsupportedActionError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "describeImage", ue.Action)
}

func TestDescriptor(t *testing.T) {
	c := Default()

	t.Run("translateText consumes the previous result", func(t *testing.T) {
		d, err := c.Descriptor("translateText")
		require.NoError(t, err)
		assert.Equal(t, "translateText", d.Name)
		assert.Contains(t, d.RequestTemplate, "$util.defaultIfNull($ctx.args.input.translateText.text, $ctx.prev.result)")
		assert.Contains(t, d.RequestTemplate, `"X-Amz-Target": "AWSShineFrontendService_20170701.TranslateText"`)
		assert.Contains(t, d.ResponseTemplate, "$util.toJson($result.TranslatedText)")
		assert.Equal(t, []string{"translate:TranslateText"}, d.RequiredPermissions)
	})

	t.Run("identifyLabels marks the result as a list", func(t *testing.T) {
		d, err := c.Descriptor("identifyLabels")
		require.NoError(t, err)
		assert.Contains(t, d.RequestTemplate, `$util.qr($ctx.stash.put("isList", true))`)
		assert.Contains(t, d.RequestTemplate, `"MaxLabels": 10`)
		assert.Contains(t, d.ResponseTemplate, "#foreach( $label in $result.Labels )")
	})

	t.Run("convertTextToSpeech invokes the function", func(t *testing.T) {
		e, err := c.Lookup("convertTextToSpeech")
		require.NoError(t, err)
		assert.True(t, e.InvokesFunction)
		assert.False(t, e.ProducesResult)
		assert.Empty(t, e.Permissions)
		assert.Equal(t, LambdaDataSource, e.DataSource)

		d, err := c.Descriptor("convertTextToSpeech")
		require.NoError(t, err)
		assert.Contains(t, d.RequestTemplate, `"operation": "Invoke"`)
		assert.Nil(t, d.RequiredPermissions)
	})

	t.Run("templates are identical across calls", func(t *testing.T) {
		a, err := c.Descriptor("identifyText")
		require.NoError(t, err)
		b, err := Default().Descriptor("identifyText")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestLookup_ReturnsCopies(t *testing.T) {
	c := Default()
	e, err := c.Lookup("identifyText")
	require.NoError(t, err)
	e.Permissions[0] = "tampered"

	again, err := c.Lookup("identifyText")
	require.NoError(t, err)
	assert.Equal(t, "rekognition:DetectText", again.Permissions[0])
}

func TestInputFields(t *testing.T) {
	c := Default()
	fields, ok := c.InputFields("translateText")
	require.True(t, ok)
	require.Len(t, fields, 3)
	assert.Equal(t, "sourceLanguage", fields[0].Name)
	assert.True(t, fields[0].Required)
	assert.False(t, fields[2].Required)

	_, ok = c.InputFields("describeImage")
	assert.False(t, ok)
}

func TestRegister(t *testing.T) {
	entry := Entry{Action: "echo", Request: vtl.Obj{}, Response: vtl.Ref("ctx.result"), DataSource: "Echo"}

	t.Run("frozen catalog rejects registration", func(t *testing.T) {
		assert.PanicsWithValue(t, "catalog is frozen", func() {
			Default().Register(entry)
		})
	})

	t.Run("unknown data source", func(t *testing.T) {
		assert.Panics(t, func() { New().Register(entry) })
	})

	t.Run("duplicate action", func(t *testing.T) {
		c := New()
		c.RegisterDataSource(DataSource{ID: "Echo", Kind: HTTP, Service: "echo"})
		c.Register(entry)
		assert.PanicsWithValue(t, "action 'echo' already registered", func() { c.Register(entry) })
	})

	t.Run("custom catalog", func(t *testing.T) {
		c := New()
		c.RegisterDataSource(DataSource{ID: "Echo", Kind: HTTP, Service: "echo"})
		c.Register(entry)
		c.Freeze()

		d, err := c.Descriptor("echo")
		require.NoError(t, err)
		assert.Equal(t, "{}", d.RequestTemplate)
		assert.Equal(t, "$ctx.result", d.ResponseTemplate)

		ds, ok := c.DataSource("Echo")
		require.True(t, ok)
		assert.Equal(t, HTTP, ds.Kind)
	})
}
