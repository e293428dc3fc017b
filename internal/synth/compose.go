package synth

import (
	"errors"
	"fmt"

	"github.com/vk/predictgen/internal/cfn"
	"github.com/vk/predictgen/internal/compileerr"
	"github.com/vk/predictgen/internal/naming"
	"github.com/vk/predictgen/internal/vtl"
)

// Kind is the resolver kind. Only PIPELINE is produced: the shared stash
// steps make every resolver a pipeline.
type Kind string

const Pipeline Kind = "PIPELINE"

// ResolverArtifact is the compiled resolver of one field.
type ResolverArtifact struct {
	TypeName  string          `yaml:"TypeName" json:"TypeName"`
	FieldName string          `yaml:"FieldName" json:"FieldName"`
	Kind      Kind            `yaml:"Kind" json:"Kind"`
	Stages    []PipelineStage `yaml:"Stages" json:"Stages"`
	// PreRequestTemplate stays an expression because the bucket it stashes
	// may depend on the environment.
	PreRequestTemplate   cfn.Expr `yaml:"PreRequestTemplate" json:"PreRequestTemplate"`
	PostResponseTemplate string   `yaml:"PostResponseTemplate" json:"PostResponseTemplate"`
}

// LogicalID is the ID of the resolver resource.
func (r ResolverArtifact) LogicalID() string {
	return naming.ResolverID(r.TypeName, r.FieldName)
}

// StashDefaults is the shared request step that runs after the bucket is
// stashed.
func StashDefaults() string {
	return vtl.Print(vtl.Seq(
		vtl.QuietRef(`ctx.stash.put("isList", false)`),
		vtl.Obj{},
	))
}

// ReconcileResult is the shared response step. List results come back from
// the stages as one delimited string and are split here.
func ReconcileResult() string {
	return vtl.Print(vtl.Seq(
		vtl.Comment("If the result is a list return the result as a list"),
		vtl.IfElse{
			Cond: vtl.Ref(`ctx.stash.get("isList")`),
			Then: vtl.Seq(
				vtl.Set{Target: "result", Value: vtl.Ref(`ctx.result.split("[ ,]+")`)},
				vtl.ToJSON{Value: vtl.Ref("result")},
			),
			Else: vtl.ToJSON{Value: vtl.Ref("ctx.result")},
		},
	))
}

// Compose assembles stages into the resolver of typeName.fieldName. The
// shared steps are always injected, so the result is a PIPELINE resolver even
// for a single stage. Stages must already be in ascending order; Compose
// never reorders them.
func Compose(typeName, fieldName string, stages []PipelineStage, bucketBinding cfn.Expr) (ResolverArtifact, error) {
	if len(stages) == 0 {
		return ResolverArtifact{}, errors.New("resolver without stages")
	}
	for i := 1; i < len(stages); i++ {
		if stages[i].Order <= stages[i-1].Order {
			return ResolverArtifact{}, fmt.Errorf("stage %q at order %d follows order %d",
				stages[i].Action.Name, stages[i].Order, stages[i-1].Order)
		}
	}

	var pre cfn.Expr = cfn.String(StashDefaults())
	if bucketBinding != nil {
		pre = cfn.Join{Sep: "\n", Parts: []cfn.Expr{bucketBinding, pre}}
	}
	return ResolverArtifact{
		TypeName:             typeName,
		FieldName:            fieldName,
		Kind:                 Pipeline,
		Stages:               append([]PipelineStage(nil), stages...),
		PreRequestTemplate:   pre,
		PostResponseTemplate: ReconcileResult(),
	}, nil
}

// Resource renders r as a resolver resource that depends on its functions.
func (r ResolverArtifact) Resource() Resource {
	functions := make([]any, 0, len(r.Stages))
	deps := make([]string, 0, len(r.Stages))
	for _, s := range r.Stages {
		functions = append(functions, cfn.GetAtt{Resource: string(s.Function), Attribute: "FunctionId"})
		deps = append(deps, string(s.Function))
	}
	return Resource{
		LogicalID: r.LogicalID(),
		Type:      ResolverType,
		Properties: map[string]any{
			"ApiId":                   cfn.Ref{Name: naming.AppSyncAPIIDParam},
			"TypeName":                r.TypeName,
			"FieldName":               r.FieldName,
			"Kind":                    string(r.Kind),
			"PipelineConfig":          map[string]any{"Functions": functions},
			"RequestMappingTemplate":  r.PreRequestTemplate,
			"ResponseMappingTemplate": r.PostResponseTemplate,
		},
		DependsOn: deps,
	}
}

// DefineResolver composes the resolver of typeName.fieldName and defines
// its resource. Two fields whose resolver IDs collide are a ConfigError
// naming both.
func (c *Context) DefineResolver(typeName, fieldName string, stages []PipelineStage) (ResolverArtifact, error) {
	at := compileerr.Location{Type: typeName, Field: fieldName}
	id := naming.ResolverID(typeName, fieldName)
	if owner, ok := c.resolvers[id]; ok {
		return ResolverArtifact{}, &compileerr.ConfigError{
			At:      at,
			Variant: "resolver",
			Err:     fmt.Errorf("logical ID %s is already used by %s", id, owner),
		}
	}

	r, err := Compose(typeName, fieldName, stages, naming.StashBucket(c.bucket, c.env.Configured()))
	if err != nil {
		return ResolverArtifact{}, fmt.Errorf("composing %s.%s: %w", typeName, fieldName, err)
	}
	if err := c.Define(r.Resource()); err != nil {
		return ResolverArtifact{}, err
	}
	c.resolvers[id] = at
	return r, nil
}
