// This file translates the decoded HCL blocks into the format-agnostic
// configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/predictgen/internal/config"
	"github.com/vk/predictgen/internal/ctxlog"
)

// translateType converts one type block, evaluating every directive argument.
func (l *Loader) translateType(ctx context.Context, t *TypeBlock) (*config.TypeDef, error) {
	logger := ctxlog.FromContext(ctx).With("type", t.Name)
	logger.Debug("Translating HCL type to internal config model.", "fields", len(t.Fields))

	def := &config.TypeDef{Name: t.Name}
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if seen[f.Name] {
			return nil, fmt.Errorf("type '%s': field '%s' declared more than once", t.Name, f.Name)
		}
		seen[f.Name] = true

		field := &config.FieldDef{Name: f.Name}
		for _, d := range f.Directives {
			directive, err := l.translateDirective(d)
			if err != nil {
				return nil, fmt.Errorf("type '%s', field '%s': %w", t.Name, f.Name, err)
			}
			field.Directives = append(field.Directives, directive)
		}
		def.Fields = append(def.Fields, field)
	}
	return def, nil
}

// translateDirective evaluates the directive's attributes in source order.
func (l *Loader) translateDirective(d *DirectiveBlock) (*config.Directive, error) {
	attrs, diags := orderedAttributes(d.Body)
	if diags.HasErrors() {
		return nil, fmt.Errorf("directive '%s': %w", d.Name, diags)
	}
	directive := &config.Directive{Name: d.Name}
	for _, a := range attrs {
		val, diags := a.Expr.Value(evalContext())
		if diags.HasErrors() {
			return nil, fmt.Errorf("directive '%s', argument '%s': %w", d.Name, a.Name, diags)
		}
		directive.Args = append(directive.Args, config.Argument{Name: a.Name, Value: val})
	}
	return directive, nil
}

// translateAPI converts the api block. Absent auth and conflict settings are
// left as cty.NilVal.
func (l *Loader) translateAPI(ctx context.Context, a *APIBlock) (*config.API, error) {
	api := &config.API{Name: a.Name, Auth: cty.NilVal, Conflict: cty.NilVal}
	if a.Storage != nil {
		api.Storage = *a.Storage
	}
	if isExprDefined(ctx, a.Auth, "auth") {
		val, diags := a.Auth.Value(evalContext())
		if diags.HasErrors() {
			return nil, fmt.Errorf("api '%s', auth: %w", a.Name, diags)
		}
		api.Auth = val
	}
	if isExprDefined(ctx, a.Conflict, "conflict") {
		val, diags := a.Conflict.Value(evalContext())
		if diags.HasErrors() {
			return nil, fmt.Errorf("api '%s', conflict: %w", a.Name, diags)
		}
		api.Conflict = val
	}
	return api, nil
}
