// Package cfn models the intrinsic-function value tree that compiled
// resource descriptors are written in.
//
// An Expr is never evaluated while compiling. Conditional values keep both
// branches so the deployment target can pick one. Every node marshals to the
// canonical intrinsic form in both YAML and JSON, e.g. {"Fn::Join": [...]}.
package cfn

import (
	"encoding/json"
)

// Expr is a node of the intrinsic value tree.
type Expr interface {
	tree() any
}

// String is a literal string value.
type String string

// Ref references a parameter or a resource by logical name.
type Ref struct {
	Name string
}

// GetAtt reads an attribute of a resource.
type GetAtt struct {
	Resource  string
	Attribute string
}

// Join concatenates its parts with Sep.
type Join struct {
	Sep   string
	Parts []Expr
}

// Sub substitutes ${name} placeholders in Template. Vars may be empty.
type Sub struct {
	Template string
	Vars     map[string]Expr
}

// If selects Then when the named condition holds and Else otherwise.
type If struct {
	Cond string
	Then Expr
	Else Expr
}

// Select picks the element at Index from a list-valued expression.
type Select struct {
	Index int
	List  Expr
}

// Split splits Source on Sep into a list.
type Split struct {
	Sep    string
	Source Expr
}

// Equals compares two values. Only used in conditions.
type Equals struct {
	Left  Expr
	Right Expr
}

// Not negates a condition.
type Not struct {
	Cond Expr
}

func (s String) tree() any { return string(s) }
func (r Ref) tree() any    { return map[string]any{"Ref": r.Name} }

func (g GetAtt) tree() any {
	return map[string]any{"Fn::GetAtt": []any{g.Resource, g.Attribute}}
}

func (j Join) tree() any {
	return map[string]any{"Fn::Join": []any{j.Sep, trees(j.Parts)}}
}

func (s Sub) tree() any {
	if len(s.Vars) == 0 {
		return map[string]any{"Fn::Sub": s.Template}
	}
	vars := make(map[string]any, len(s.Vars))
	for k, v := range s.Vars {
		vars[k] = v.tree()
	}
	return map[string]any{"Fn::Sub": []any{s.Template, vars}}
}

func (i If) tree() any {
	return map[string]any{"Fn::If": []any{i.Cond, i.Then.tree(), i.Else.tree()}}
}

func (s Select) tree() any {
	return map[string]any{"Fn::Select": []any{s.Index, s.List.tree()}}
}

func (s Split) tree() any {
	return map[string]any{"Fn::Split": []any{s.Sep, s.Source.tree()}}
}

func (e Equals) tree() any {
	return map[string]any{"Fn::Equals": []any{e.Left.tree(), e.Right.tree()}}
}

func (n Not) tree() any {
	return map[string]any{"Fn::Not": []any{n.Cond.tree()}}
}

func trees(parts []Expr) []any {
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p.tree()
	}
	return out
}

func (r Ref) MarshalJSON() ([]byte, error)    { return json.Marshal(r.tree()) }
func (g GetAtt) MarshalJSON() ([]byte, error) { return json.Marshal(g.tree()) }
func (j Join) MarshalJSON() ([]byte, error)   { return json.Marshal(j.tree()) }
func (s Sub) MarshalJSON() ([]byte, error)    { return json.Marshal(s.tree()) }
func (i If) MarshalJSON() ([]byte, error)     { return json.Marshal(i.tree()) }
func (s Select) MarshalJSON() ([]byte, error) { return json.Marshal(s.tree()) }
func (s Split) MarshalJSON() ([]byte, error)  { return json.Marshal(s.tree()) }
func (e Equals) MarshalJSON() ([]byte, error) { return json.Marshal(e.tree()) }
func (n Not) MarshalJSON() ([]byte, error)    { return json.Marshal(n.tree()) }

func (r Ref) MarshalYAML() (any, error)    { return r.tree(), nil }
func (g GetAtt) MarshalYAML() (any, error) { return g.tree(), nil }
func (j Join) MarshalYAML() (any, error)   { return j.tree(), nil }
func (s Sub) MarshalYAML() (any, error)    { return s.tree(), nil }
func (i If) MarshalYAML() (any, error)     { return i.tree(), nil }
func (s Select) MarshalYAML() (any, error) { return s.tree(), nil }
func (s Split) MarshalYAML() (any, error)  { return s.tree(), nil }
func (e Equals) MarshalYAML() (any, error) { return e.tree(), nil }
func (n Not) MarshalYAML() (any, error)    { return n.tree(), nil }
