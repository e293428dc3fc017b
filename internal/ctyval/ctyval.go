// Package ctyval reads typed settings out of cty values.
//
// Directive arguments and API settings arrive as cty values of whatever shape
// the manifest author wrote (objects, maps, tuples, lists). These helpers
// convert them into Go values and report shape problems as plain errors; the
// callers decide which compile error that becomes.
package ctyval

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// IsSet reports whether v carries a usable value.
func IsSet(v cty.Value) bool {
	return v.IsKnown() && !v.IsNull()
}

// Attr returns the named attribute of an object or map value. Missing and
// null attributes are reported as absent.
func Attr(obj cty.Value, name string) (cty.Value, bool) {
	if !IsSet(obj) {
		return cty.NilVal, false
	}
	ty := obj.Type()
	switch {
	case ty.IsObjectType():
		if !ty.HasAttribute(name) {
			return cty.NilVal, false
		}
		v := obj.GetAttr(name)
		return v, IsSet(v)
	case ty.IsMapType():
		key := cty.StringVal(name)
		if !obj.HasIndex(key).True() {
			return cty.NilVal, false
		}
		v := obj.Index(key)
		return v, IsSet(v)
	default:
		return cty.NilVal, false
	}
}

// String reads the named attribute as a string. Numbers and bools are
// converted the way HCL converts them.
func String(obj cty.Value, name string) (string, bool, error) {
	v, ok := Attr(obj, name)
	if !ok {
		return "", false, nil
	}
	var s string
	if err := decode(v, cty.String, &s); err != nil {
		return "", true, fmt.Errorf("attribute %q: %w", name, err)
	}
	return s, true, nil
}

// Int reads the named attribute as a whole number.
func Int(obj cty.Value, name string) (int64, bool, error) {
	v, ok := Attr(obj, name)
	if !ok {
		return 0, false, nil
	}
	var n int64
	if err := decode(v, cty.Number, &n); err != nil {
		return 0, true, fmt.Errorf("attribute %q: %w", name, err)
	}
	return n, true, nil
}

// StringList converts a tuple, list or set of strings into a slice, keeping
// element order.
func StringList(v cty.Value) ([]string, error) {
	if !IsSet(v) {
		return nil, nil
	}
	var out []string
	if err := decode(v, cty.List(cty.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Elements returns the elements of a tuple or list value in order. A single
// object is returned as a one-element slice.
func Elements(v cty.Value) ([]cty.Value, error) {
	if !IsSet(v) {
		return nil, nil
	}
	ty := v.Type()
	if ty.IsObjectType() || ty.IsMapType() {
		return []cty.Value{v}, nil
	}
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, fmt.Errorf("expected a list, got %s", ty.FriendlyName())
	}
	out := make([]cty.Value, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		out = append(out, elem)
	}
	return out, nil
}

func decode(v cty.Value, want cty.Type, target any) error {
	converted, err := convert.Convert(v, want)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(converted, target)
}
