package config

import (
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of everything one compilation reads.
type Model struct {
	Schema *Schema
	API    *API
}

// Schema is an already-parsed annotated schema.
type Schema struct {
	Types []*TypeDef
}

// TypeDef is one object type and its fields, in declaration order.
type TypeDef struct {
	Name   string
	Fields []*FieldDef
}

// FieldDef is one field and the directives attached to it.
type FieldDef struct {
	Name       string
	Directives []*Directive
}

// Directive is a named annotation with ordered arguments.
type Directive struct {
	Name string
	Args []Argument
}

// Argument is one key/value argument of a directive.
type Argument struct {
	Name  string
	Value cty.Value
}

// Arg returns the value of the named argument, or cty.NilVal.
func (d *Directive) Arg(name string) (cty.Value, bool) {
	for _, a := range d.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return cty.NilVal, false
}

// Directive returns the first directive with the given name, or nil.
func (f *FieldDef) Directive(name string) *Directive {
	for _, d := range f.Directives {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// API holds the settings of the API the schema is compiled for.
type API struct {
	Name string
	// Storage is the bucket name actions read from and write to. It may
	// embed the ${env} and ${hash} placeholders.
	Storage string
	// Auth is the raw authorization block, decoded by the apiconfig package.
	Auth cty.Value
	// Conflict is the raw conflict-detection block, or cty.NilVal.
	Conflict cty.Value
}
