package vtl

import (
	"strconv"
	"strings"
)

const indentUnit = "  "

// Print renders n as template text.
func Print(n Node) string {
	if n == nil {
		return ""
	}
	return n.print("")
}

func (r Raw) print(string) string      { return string(r) }
func (r Ref) print(string) string      { return "$" + string(r) }
func (q QuietRef) print(string) string { return "$util.qr($" + string(q) + ")" }
func (s Str) print(string) string      { return `"` + string(s) + `"` }
func (i Int) print(string) string      { return strconv.Itoa(int(i)) }
func (c Comment) print(string) string  { return "## " + string(c) + " **" }

func (o Obj) print(indent string) string {
	if len(o) == 0 {
		return "{}"
	}
	inner := indent + indentUnit
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, f := range o {
		sb.WriteString(inner)
		sb.WriteString(strconv.Quote(f.Key))
		sb.WriteString(": ")
		sb.WriteString(f.Value.print(inner))
		if i < len(o)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(indent)
	sb.WriteString("}")
	return sb.String()
}

func (s Set) print(indent string) string {
	return "#set( " + s.Target.print(indent) + " = " + s.Value.print(indent) + " )"
}

func (i If) print(indent string) string {
	inner := indent + indentUnit
	return "#if( " + i.Cond.print(indent) + " )\n" +
		inner + i.Then.print(inner) + "\n" +
		indent + "#end"
}

func (i IfElse) print(indent string) string {
	inner := indent + indentUnit
	return "#if( " + i.Cond.print(indent) + " )\n" +
		inner + i.Then.print(inner) + "\n" +
		indent + "#else\n" +
		inner + i.Else.print(inner) + "\n" +
		indent + "#end"
}

func (f ForEach) print(indent string) string {
	inner := indent + indentUnit
	var sb strings.Builder
	sb.WriteString("#foreach( " + f.Key.print(indent) + " in " + f.Collection.print(indent) + " )\n")
	for _, n := range f.Body {
		sb.WriteString(inner + n.print(inner) + "\n")
	}
	sb.WriteString(indent + "#end")
	return sb.String()
}

func (c Compound) print(indent string) string {
	lines := make([]string, len(c))
	for i, n := range c {
		lines[i] = n.print(indent)
	}
	return strings.Join(lines, "\n"+indent)
}

func (t ToJSON) print(indent string) string {
	return "$util.toJson(" + t.Value.print(indent) + ")"
}
