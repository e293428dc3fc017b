// Package sdl holds generated schema fragments and prints them as GraphQL
// SDL text.
package sdl

import "strings"

// Field is one member of an input type.
type Field struct {
	Name     string
	Type     string
	Required bool
}

// InputType is a generated input object type.
type InputType struct {
	Name   string
	Fields []Field
}

// Fragment is an ordered set of generated input types.
type Fragment struct {
	Types []InputType
}

// String prints the fragment. Types and fields keep their order.
func (f *Fragment) String() string {
	if f == nil {
		return ""
	}
	blocks := make([]string, 0, len(f.Types))
	for _, t := range f.Types {
		var sb strings.Builder
		sb.WriteString("input " + t.Name + " {\n")
		for _, fld := range t.Fields {
			sb.WriteString("  " + fld.Name + ": " + fld.Type)
			if fld.Required {
				sb.WriteString("!")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("}\n")
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n")
}
