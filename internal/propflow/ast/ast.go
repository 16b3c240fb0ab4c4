// Package ast is the markup tree propflow extracts component usage from.
//
// The node set is closed: every markup child is a Text, an Element, a
// Fragment or an ExprContainer, and every embedded expression is one of the
// Expr kinds below. Parentheses never appear; the parser drops them.
package ast

// Pos is a start position: Line is 1-based, Column is 0-based and counted in
// UTF-16 code units, the way JS tooling reports it.
type Pos struct {
	Line   int
	Column int
}

// Node is a markup child.
type Node interface {
	node()
}

// Expr is an embedded expression.
type Expr interface {
	expr()
}

type Text struct {
	Value string
}

func (*Text) node() {}

type NameKind int

const (
	// NameIdent is a plain tag name: <Card>, <div>.
	NameIdent NameKind = iota
	// NameMember is a dotted tag name: <Form.Field>.
	NameMember
	// NameNamespace is a namespaced tag name: <svg:rect>.
	NameNamespace
)

type Name struct {
	Kind NameKind
	// Value is the tag name source text.
	Value string
}

type AttrKind int

const (
	// AttrBool is a valueless attribute: <input disabled />.
	AttrBool AttrKind = iota
	// AttrString is a quoted string value.
	AttrString
	// AttrExpr is a {expression} value.
	AttrExpr
	// AttrElement is a markup value without braces: icon=<Icon />.
	AttrElement
	// AttrSpread is {...props} in the attribute list.
	AttrSpread
)

type Attr struct {
	Key  string
	Kind AttrKind
	// Value is the decoded string for AttrString.
	Value string
	// Expr is the wrapped expression for AttrExpr and AttrElement. It is nil
	// for an empty container.
	Expr Expr
}

// Element is a tag instantiation, self-closing or not.
type Element struct {
	Name        Name
	Attrs       []Attr
	Children    []Node
	SelfClosing bool
	// Truncated is set when nesting inside the element went past the
	// parser's limit and was not converted.
	Truncated   bool
	Pos         Pos
}

func (*Element) node() {}
func (*Element) expr() {}

// Fragment is <>...</>. It is markup but not an instantiation.
type Fragment struct {
	Children []Node
	Pos      Pos
}

func (*Fragment) node() {}
func (*Fragment) expr() {}

// ExprContainer is a {expression} markup child. Expr is nil for {} and
// {/* comments */}.
type ExprContainer struct {
	Expr Expr
	Pos  Pos
}

func (*ExprContainer) node() {}

type Ident struct {
	Name string
}

func (*Ident) expr() {}

type LitKind int

const (
	LitString LitKind = iota
	LitNumber
	LitBool
	LitNull
)

type Literal struct {
	Kind LitKind
	Str  string
	Num  float64
	Bool bool
	// Raw is the literal source text.
	Raw string
}

func (*Literal) expr() {}

// Logical is a short-circuit binary expression: &&, || or ??.
type Logical struct {
	Op          string
	Left, Right Expr
}

func (*Logical) expr() {}

// Conditional is test ? consequent : alternate.
type Conditional struct {
	Test, Consequent, Alternate Expr
}

func (*Conditional) expr() {}

// ArrowFunc is an arrow function. Body is nil when Block is set.
type ArrowFunc struct {
	Body  Expr
	Block bool
}

func (*ArrowFunc) expr() {}

// Other is any expression propflow does not look into.
type Other struct {
	Src string
}

func (*Other) expr() {}

// File is one parsed source file reduced to its top-level instantiations:
// elements with no enclosing element, in source order.
type File struct {
	Name  string
	Roots []*Element
	// SyntaxErrors is set when the parser recovered from malformed input.
	SyntaxErrors bool
}
