package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Types  []*TypeBlock `hcl:"type,block"`
	APIs   []*APIBlock  `hcl:"api,block"`
	Remain hcl.Body     `hcl:",remain"`
}

// TypeBlock is an object type of the annotated schema.
//
//	type "Query" {
//	  field "speakTranslatedImageText" { ... }
//	}
type TypeBlock struct {
	Name   string        `hcl:"name,label"`
	Fields []*FieldBlock `hcl:"field,block"`
}

// FieldBlock is a field and the directives attached to it.
type FieldBlock struct {
	Name       string            `hcl:"name,label"`
	Directives []*DirectiveBlock `hcl:"directive,block"`
}

// DirectiveBlock is a directive whose attributes are its arguments.
//
//	directive "predictions" {
//	  actions = ["identifyText", "translateText"]
//	}
type DirectiveBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// APIBlock holds the API-level settings.
type APIBlock struct {
	Name     string         `hcl:"name,label"`
	Storage  *string        `hcl:"storage,optional"`
	Auth     hcl.Expression `hcl:"auth,optional"`
	Conflict hcl.Expression `hcl:"conflict,optional"`
}
