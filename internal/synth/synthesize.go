package synth

import (
	"github.com/vk/predictgen/internal/catalog"
	"github.com/vk/predictgen/internal/cfn"
	"github.com/vk/predictgen/internal/compileerr"
	"github.com/vk/predictgen/internal/naming"
)

// PipelineStage is one step of a pipeline resolver.
type PipelineStage struct {
	// Order is the position in the declared action chain, starting at 0.
	Order      int                `yaml:"Order" json:"Order"`
	Action     catalog.Descriptor `yaml:"Action" json:"Action"`
	DataSource ResourceRef        `yaml:"DataSource" json:"DataSource"`
	Function   ResourceRef        `yaml:"Function" json:"Function"`
}

// Synthesize binds action, requested by at, to dataSource and returns the
// stage at position order. The pipeline function for action is defined on first use and
// shared by later stages running the same action.
//
// It fails with an UnsupportedActionError when the catalog has no entry for
// action, and with a DependencyResolutionError when dataSource or the service
// role is not defined in this compilation.
func (c *Context) Synthesize(at compileerr.Location, order int, action string, dataSource ResourceRef) (PipelineStage, error) {
	desc, err := c.catalog.Descriptor(action)
	if err != nil {
		return PipelineStage{}, &compileerr.UnsupportedActionError{At: at, Action: action}
	}
	fn := ResourceRef(naming.FunctionID(action))
	for _, dep := range []ResourceRef{naming.IAMRoleID, dataSource} {
		if !c.Defined(dep) {
			return PipelineStage{}, &compileerr.DependencyResolutionError{Missing: string(dep), Referrer: string(fn)}
		}
	}

	if !c.Defined(fn) {
		err := c.Define(Resource{
			LogicalID: string(fn),
			Type:      FunctionType,
			Properties: map[string]any{
				"ApiId":                   cfn.Ref{Name: naming.AppSyncAPIIDParam},
				"Name":                    string(fn),
				"DataSourceName":          string(dataSource),
				"FunctionVersion":         mappingTemplateVersion,
				"RequestMappingTemplate":  desc.RequestTemplate,
				"ResponseMappingTemplate": desc.ResponseTemplate,
			},
			DependsOn: []string{naming.IAMRoleID, string(dataSource)},
		})
		if err != nil {
			return PipelineStage{}, err
		}
	}

	return PipelineStage{Order: order, Action: desc, DataSource: dataSource, Function: fn}, nil
}

// SynthesizeChain synthesizes one stage per action, in declared order, each
// bound to the data source its catalog entry names.
func (c *Context) SynthesizeChain(at compileerr.Location, actions []string) ([]PipelineStage, error) {
	stages := make([]PipelineStage, 0, len(actions))
	for i, action := range actions {
		entry, err := c.catalog.Lookup(action)
		if err != nil {
			return nil, &compileerr.UnsupportedActionError{At: at, Action: action}
		}
		stage, err := c.Synthesize(at, i, action, ResourceRef(entry.DataSource))
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, nil
}
