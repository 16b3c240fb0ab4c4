// Package extract turns markup elements into component usage trees.
package extract

import (
	"github.com/kilianc/propflow/internal/propflow/ast"
	"github.com/kilianc/propflow/internal/propflow/usage"
)

// DefaultMaxDepth bounds how deep below a top-level element extraction goes.
const DefaultMaxDepth = 256

type Options struct {
	// MaxDepth is the deepest nesting level that is still given children.
	// Nodes at that level are marked Truncated instead.
	MaxDepth int
}

func (o *Options) normalize() Options {
	if o == nil || o.MaxDepth <= 0 {
		return Options{MaxDepth: DefaultMaxDepth}
	}
	return *o
}

// Extractor builds component usage trees. It holds no state between calls
// and is safe for concurrent use.
type Extractor struct {
	opt Options
}

func New(opt *Options) *Extractor {
	return &Extractor{opt: opt.normalize()}
}

var defaultExtractor = New(nil)

// Extract builds the usage tree of n with default options.
func Extract(n ast.Node, file string) *usage.Node {
	return defaultExtractor.Extract(n, file)
}

// Extract builds the usage tree rooted at n. It returns nil unless n is an
// element. file is recorded as the location file of every node.
func (x *Extractor) Extract(n ast.Node, file string) *usage.Node {
	return x.extract(n, file, 0)
}

func (x *Extractor) extract(n ast.Node, file string, depth int) *usage.Node {
	el, ok := n.(*ast.Element)
	if !ok || el == nil {
		return nil
	}

	out := &usage.Node{
		Component: componentName(el.Name),
		Props:     extractProps(el.Attrs),
		Location: usage.Location{
			File:   file,
			Line:   el.Pos.Line,
			Column: el.Pos.Column,
		},
	}

	var nested []*ast.Element
	for _, c := range el.Children {
		nested = append(nested, childElements(c)...)
	}
	out.Truncated = el.Truncated
	if depth >= x.opt.MaxDepth {
		out.Truncated = out.Truncated || len(nested) > 0
		return out
	}

	for _, c := range nested {
		if child := x.extract(c, file, depth+1); child != nil {
			out.Children = append(out.Children, child)
		}
	}
	return out
}

func componentName(name ast.Name) string {
	if name.Kind != ast.NameIdent || name.Value == "" {
		return usage.Anonymous
	}
	return name.Value
}

func extractProps(attrs []ast.Attr) usage.Props {
	props := make(usage.Props, 0, len(attrs))
	for _, a := range attrs {
		switch a.Kind {
		case ast.AttrSpread:
			continue
		case ast.AttrExpr:
			props = props.Set(a.Key, classifyExpr(a.Expr))
		case ast.AttrString:
			props = props.Set(a.Key, usage.String(a.Value))
		default:
			// Valueless and element-valued attributes.
			props = props.Set(a.Key, usage.PropValue{})
		}
	}
	return props
}

func classifyExpr(ex ast.Expr) usage.PropValue {
	switch e := ex.(type) {
	case *ast.Ident:
		return usage.Identifier(e.Name)
	case *ast.Literal:
		switch e.Kind {
		case ast.LitString:
			return usage.String(e.Str)
		case ast.LitNumber:
			return usage.Number(e.Num)
		case ast.LitBool:
			return usage.Bool(e.Bool)
		default:
			return usage.Null()
		}
	default:
		return usage.Expr()
	}
}

// childElements returns the elements a markup child contributes to its
// parent's children, in order. Anything else contributes nothing.
func childElements(n ast.Node) []*ast.Element {
	switch c := n.(type) {
	case *ast.Element:
		return []*ast.Element{c}
	case *ast.ExprContainer:
		switch e := c.Expr.(type) {
		case *ast.Element:
			return []*ast.Element{e}
		case *ast.Logical:
			return elements(e.Right, e.Left)
		case *ast.Conditional:
			return elements(e.Consequent, e.Alternate)
		case *ast.ArrowFunc:
			if !e.Block {
				return elements(e.Body)
			}
		}
	}
	return nil
}

func elements(exprs ...ast.Expr) []*ast.Element {
	var out []*ast.Element
	for _, ex := range exprs {
		if el, ok := ex.(*ast.Element); ok && el != nil {
			out = append(out, el)
		}
	}
	return out
}
