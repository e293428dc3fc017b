package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/predictgen/internal/config"
	"github.com/vk/predictgen/internal/ctxlog"
	"github.com/vk/predictgen/internal/fsutil"
)

const manifestExt = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file found under paths, in path order, and merges
// them into one model. Types and fields keep their declaration order across
// files. At most one api block may be declared.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, manifestExt)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{Schema: &config.Schema{}}
	types := make(map[string]*config.TypeDef)
	var apiFile string

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, t := range root.Types {
			def, err := l.translateType(ctx, t)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			if existing, ok := types[def.Name]; ok {
				if err := mergeFields(existing, def); err != nil {
					return nil, fmt.Errorf("%s: %w", file, err)
				}
				continue
			}
			types[def.Name] = def
			model.Schema.Types = append(model.Schema.Types, def)
		}

		for _, a := range root.APIs {
			if model.API != nil {
				return nil, fmt.Errorf("%s: api '%s' declared, but api '%s' was already declared in %s", file, a.Name, model.API.Name, apiFile)
			}
			api, err := l.translateAPI(ctx, a)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.API = api
			apiFile = file
		}
	}

	logger.Debug("HCL loading complete.", "files", len(files), "types", len(model.Schema.Types), "has_api", model.API != nil)
	return model, nil
}

// mergeFields appends the fields of extra, a later declaration of the same
// type, to into.
func mergeFields(into, extra *config.TypeDef) error {
	for _, f := range extra.Fields {
		for _, existing := range into.Fields {
			if existing.Name == f.Name {
				return fmt.Errorf("type '%s': field '%s' declared more than once", into.Name, f.Name)
			}
		}
		into.Fields = append(into.Fields, f)
	}
	return nil
}
