// Package vtl builds resolver mapping templates as an expression tree and
// prints them into the template text format.
//
// The printer is order preserving: statements come out exactly in the order
// they were placed in a Compound, and object fields in declaration order.
package vtl

// Node is a mapping template expression.
type Node interface {
	print(indent string) string
}

// Raw is emitted verbatim.
type Raw string

// Ref is a variable reference. Path is written without the leading '$'.
type Ref string

// QuietRef evaluates Path and discards the result ($util.qr).
type QuietRef string

// Str is a double-quoted string literal. Embedded references are left for the
// template engine to interpolate.
type Str string

// Int is an integer literal.
type Int int

// Field is one key/value pair of an Obj.
type Field struct {
	Key   string
	Value Node
}

// Obj is a JSON-like object literal with ordered fields.
type Obj []Field

// Set assigns Value to the variable named by Target.
type Set struct {
	Target Ref
	Value  Node
}

// If renders Then only when Cond holds.
type If struct {
	Cond Node
	Then Node
}

// IfElse renders Then when Cond holds and Else otherwise.
type IfElse struct {
	Cond Node
	Then Node
	Else Node
}

// ForEach renders Body once per element of Collection, bound to Key.
type ForEach struct {
	Key        Ref
	Collection Ref
	Body       []Node
}

// Compound is a sequence of statements.
type Compound []Node

// Comment is a template comment.
type Comment string

// ToJSON serializes the value of Value ($util.toJson).
type ToJSON struct {
	Value Node
}

// F is shorthand for an object field.
func F(key string, value Node) Field {
	return Field{Key: key, Value: value}
}

// Seq is shorthand for a Compound.
func Seq(nodes ...Node) Compound {
	return Compound(nodes)
}
