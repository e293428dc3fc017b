package cfn

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Scope supplies the values an expression is evaluated against.
type Scope struct {
	// Refs maps parameter and pseudo-parameter names to their values.
	Refs map[string]string
	// Attrs maps "Resource.Attribute" to a value.
	Attrs map[string]string
	// Conditions maps condition names to their truth value.
	Conditions map[string]bool
}

var subVarRegex = regexp.MustCompile(`\$\{([A-Za-z0-9_:.]+)\}`)

// Eval reduces e to a string within scope. List-valued results are joined
// with a comma. It fails on unknown references, conditions, and out of range
// selects.
func Eval(e Expr, scope Scope) (string, error) {
	v, err := eval(e, scope)
	if err != nil {
		return "", err
	}
	return strings.Join(v, ","), nil
}

func eval(e Expr, scope Scope) ([]string, error) {
	switch x := e.(type) {
	case String:
		return []string{string(x)}, nil
	case Ref:
		v, ok := scope.Refs[x.Name]
		if !ok {
			return nil, fmt.Errorf("unknown reference %q", x.Name)
		}
		return []string{v}, nil
	case GetAtt:
		key := x.Resource + "." + x.Attribute
		v, ok := scope.Attrs[key]
		if !ok {
			return nil, fmt.Errorf("unknown attribute %q", key)
		}
		return []string{v}, nil
	case Join:
		parts := make([]string, 0, len(x.Parts))
		for _, p := range x.Parts {
			s, err := Eval(p, scope)
			if err != nil {
				return nil, err
			}
			parts = append(parts, s)
		}
		return []string{strings.Join(parts, x.Sep)}, nil
	case Sub:
		return evalSub(x, scope)
	case If:
		cond, ok := scope.Conditions[x.Cond]
		if !ok {
			return nil, fmt.Errorf("unknown condition %q", x.Cond)
		}
		if cond {
			return eval(x.Then, scope)
		}
		return eval(x.Else, scope)
	case Select:
		list, err := eval(x.List, scope)
		if err != nil {
			return nil, err
		}
		if x.Index < 0 || x.Index >= len(list) {
			return nil, fmt.Errorf("select index %d out of range for list of %d", x.Index, len(list))
		}
		return []string{list[x.Index]}, nil
	case Split:
		src, err := Eval(x.Source, scope)
		if err != nil {
			return nil, err
		}
		return strings.Split(src, x.Sep), nil
	case Equals:
		l, err := Eval(x.Left, scope)
		if err != nil {
			return nil, err
		}
		r, err := Eval(x.Right, scope)
		if err != nil {
			return nil, err
		}
		return []string{strconv.FormatBool(l == r)}, nil
	case Not:
		c, err := Eval(x.Cond, scope)
		if err != nil {
			return nil, err
		}
		b, err := strconv.ParseBool(c)
		if err != nil {
			return nil, fmt.Errorf("Fn::Not operand is not a boolean: %q", c)
		}
		return []string{strconv.FormatBool(!b)}, nil
	case nil:
		return nil, fmt.Errorf("nil expression")
	default:
		return nil, fmt.Errorf("unsupported expression %T", e)
	}
}

func evalSub(s Sub, scope Scope) ([]string, error) {
	var firstErr error
	out := subVarRegex.ReplaceAllStringFunc(s.Template, func(m string) string {
		name := subVarRegex.FindStringSubmatch(m)[1]
		if v, ok := s.Vars[name]; ok {
			val, err := Eval(v, scope)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return val
		}
		if v, ok := scope.Refs[name]; ok {
			return v
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("unresolved placeholder %q in Fn::Sub", m)
		}
		return m
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return []string{out}, nil
}
