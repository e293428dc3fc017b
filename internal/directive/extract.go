// Package directive turns the arguments of a predictions directive into the
// normalized configuration the synthesizer consumes.
package directive

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/predictgen/internal/apiconfig"
	"github.com/vk/predictgen/internal/compileerr"
	"github.com/vk/predictgen/internal/config"
	"github.com/vk/predictgen/internal/ctyval"
	"github.com/vk/predictgen/internal/naming"
	"github.com/vk/predictgen/internal/sdl"
)

// Name is the directive this package understands.
const Name = "predictions"

// Argument names.
const (
	ActionsArg = "actions"
	AuthArg    = "auth"
)

// InputSource reports the input members of an action. The catalog satisfies
// it.
type InputSource interface {
	InputFields(action string) ([]sdl.Field, bool)
}

// Config is the normalized configuration of one directive.
type Config struct {
	// Actions are the requested actions, verbatim and in declared order.
	Actions []string
	// Auth is the field-level authorization override, or nil.
	Auth *apiconfig.AuthConfig
	// FilterSchema is the input type fragment the field's argument uses, or
	// nil when no action has known inputs.
	FilterSchema *sdl.Fragment
}

// Extract reads d, attached to typeName.fieldName. Action names are neither
// validated nor deduplicated here.
func Extract(typeName, fieldName string, d *config.Directive, inputs InputSource) (*Config, error) {
	at := compileerr.Location{Type: typeName, Field: fieldName}
	if d == nil {
		return nil, &compileerr.ConfigError{At: at, Variant: Name, Missing: []string{ActionsArg}}
	}

	raw, ok := d.Arg(ActionsArg)
	if !ok || !ctyval.IsSet(raw) {
		return nil, &compileerr.ConfigError{At: at, Variant: Name, Missing: []string{ActionsArg}}
	}
	actions, err := actionList(raw)
	if err != nil {
		return nil, &compileerr.ConfigError{At: at, Variant: Name, Err: err}
	}

	cfg := &Config{Actions: actions}

	if authVal, ok := d.Arg(AuthArg); ok {
		auth, err := apiconfig.DecodeAuth(at, authVal)
		if err != nil {
			return nil, err
		}
		cfg.Auth = auth
	}

	if inputs != nil {
		cfg.FilterSchema = filterSchema(fieldName, actions, inputs)
	}
	return cfg, nil
}

func actionList(v cty.Value) ([]string, error) {
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, fmt.Errorf("%s must be a list of strings, got %s", ActionsArg, ty.FriendlyName())
	}
	actions, err := ctyval.StringList(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be a list of strings: %w", ActionsArg, err)
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("%s must name at least one action", ActionsArg)
	}
	for i, a := range actions {
		if a == "" {
			return nil, fmt.Errorf("%s[%d] is empty", ActionsArg, i)
		}
	}
	return actions, nil
}

// filterSchema builds <Field>Input with one member per action plus one
// <Field><Action>Input per action. Actions without known inputs are left
// out; synthesis rejects them later.
func filterSchema(fieldName string, actions []string, inputs InputSource) *sdl.Fragment {
	prefix := naming.Capitalize(fieldName)
	root := sdl.InputType{Name: prefix + "Input"}
	var perAction []sdl.InputType
	seen := map[string]bool{}
	for _, a := range actions {
		fields, ok := inputs.InputFields(a)
		if !ok || seen[a] {
			continue
		}
		seen[a] = true
		typeName := prefix + naming.Capitalize(a) + "Input"
		root.Fields = append(root.Fields, sdl.Field{Name: a, Type: typeName, Required: true})
		perAction = append(perAction, sdl.InputType{Name: typeName, Fields: fields})
	}
	if len(root.Fields) == 0 {
		return nil
	}
	return &sdl.Fragment{Types: append([]sdl.InputType{root}, perAction...)}
}
