package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianc/propflow/internal/propflow/ast"
	"github.com/kilianc/propflow/internal/propflow/usage"
)

func el(name string, attrs []ast.Attr, children ...ast.Node) *ast.Element {
	return &ast.Element{
		Name:     ast.Name{Kind: ast.NameIdent, Value: name},
		Attrs:    attrs,
		Children: children,
		Pos:      ast.Pos{Line: 1},
	}
}

func str(key, value string) ast.Attr {
	return ast.Attr{Key: key, Kind: ast.AttrString, Value: value}
}

func expr(key string, ex ast.Expr) ast.Attr {
	return ast.Attr{Key: key, Kind: ast.AttrExpr, Expr: ex}
}

func container(ex ast.Expr) *ast.ExprContainer {
	return &ast.ExprContainer{Expr: ex}
}

func names(nodes []*usage.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Component)
	}
	return out
}

func TestExtractConditionalScenario(t *testing.T) {
	icon := func(name string, col int) *ast.Element {
		e := el("Icon", []ast.Attr{str("name", name)})
		e.SelfClosing = true
		e.Pos = ast.Pos{Line: 3, Column: col}
		return e
	}
	card := el("Card", []ast.Attr{str("title", "Hi")},
		container(&ast.Conditional{
			Test:       &ast.Ident{Name: "flag"},
			Consequent: icon("a", 31),
			Alternate:  icon("b", 50),
		}),
	)
	card.Pos = ast.Pos{Line: 3, Column: 2}

	got := Extract(card, "app.jsx")
	require.NotNil(t, got)

	assert.Equal(t, "Card", got.Component)
	assert.Equal(t, usage.Props{{Key: "title", Value: usage.String("Hi")}}, got.Props)
	assert.Equal(t, usage.Location{File: "app.jsx", Line: 3, Column: 2}, got.Location)
	require.Len(t, got.Children, 2)
	assert.Equal(t, usage.Props{{Key: "name", Value: usage.String("a")}}, got.Children[0].Props)
	assert.Equal(t, usage.Props{{Key: "name", Value: usage.String("b")}}, got.Children[1].Props)
	assert.Equal(t, 31, got.Children[0].Location.Column)
	assert.Empty(t, got.Children[0].Children)
}

func TestExtractProps(t *testing.T) {
	tests := []struct {
		name string
		attr ast.Attr
		want usage.PropValue
	}{
		{"identifier", expr("x", &ast.Ident{Name: "y"}), usage.Identifier("y")},
		{"call", expr("x", &ast.Other{Src: "compute()"}), usage.Expr()},
		{"string literal", str("x", "hi"), usage.String("hi")},
		{"wrapped string", expr("x", &ast.Literal{Kind: ast.LitString, Str: "hi"}), usage.String("hi")},
		{"number", expr("x", &ast.Literal{Kind: ast.LitNumber, Num: 42}), usage.Number(42)},
		{"bool", expr("x", &ast.Literal{Kind: ast.LitBool, Bool: false}), usage.Bool(false)},
		{"null", expr("x", &ast.Literal{Kind: ast.LitNull}), usage.Null()},
		{"arrow", expr("x", &ast.ArrowFunc{Block: true}), usage.Expr()},
		{"element value", ast.Attr{Key: "x", Kind: ast.AttrElement, Expr: el("Icon", nil)}, usage.PropValue{}},
		{"valueless", ast.Attr{Key: "x", Kind: ast.AttrBool}, usage.PropValue{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(el("Box", []ast.Attr{tt.attr}), "box.jsx")
			require.NotNil(t, got)
			v, ok := got.Props.Get("x")
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestExtractPropSentinels(t *testing.T) {
	got := Extract(el("Box", []ast.Attr{
		expr("x", &ast.Ident{Name: "y"}),
		expr("z", &ast.Other{Src: "compute()"}),
		{Key: "disabled", Kind: ast.AttrBool},
	}), "box.jsx")
	require.NotNil(t, got)

	vals := make([]any, 0, len(got.Props))
	for _, p := range got.Props {
		vals = append(vals, p.Value.Value())
	}
	assert.Equal(t, []any{"y", usage.Expression, usage.Unknown}, vals)
}

func TestExtractPropOrder(t *testing.T) {
	got := Extract(el("Form", []ast.Attr{
		str("z", "1"),
		{Kind: ast.AttrSpread, Expr: &ast.Ident{Name: "rest"}},
		str("a", "2"),
		expr("m", &ast.Ident{Name: "m"}),
		str("z", "3"),
	}), "form.jsx")
	require.NotNil(t, got)

	assert.Equal(t, []string{"z", "a", "m"}, got.Props.Keys())
	z, _ := got.Props.Get("z")
	assert.Equal(t, usage.String("3"), z)
}

func TestExtractNameFallback(t *testing.T) {
	member := el("", nil)
	member.Name = ast.Name{Kind: ast.NameMember, Value: "Form.Field"}
	ns := el("", nil)
	ns.Name = ast.Name{Kind: ast.NameNamespace, Value: "svg:rect"}

	assert.Equal(t, usage.Anonymous, Extract(member, "f.jsx").Component)
	assert.Equal(t, usage.Anonymous, Extract(ns, "f.jsx").Component)
	assert.Equal(t, usage.Anonymous, Extract(el("", nil), "f.jsx").Component)
}

func TestExtractNonElement(t *testing.T) {
	assert.Nil(t, Extract(&ast.Text{Value: "hi"}, "f.jsx"))
	assert.Nil(t, Extract(&ast.Fragment{}, "f.jsx"))
	assert.Nil(t, Extract(container(el("A", nil)), "f.jsx"))
	assert.Nil(t, Extract(nil, "f.jsx"))
}

func TestExtractChildForms(t *testing.T) {
	root := el("Page", nil,
		&ast.Text{Value: "hello"},
		el("Header", nil),
		container(el("Nav", nil)),
		container(&ast.Logical{Op: "&&", Left: &ast.Ident{Name: "open"}, Right: el("Modal", nil)}),
		container(&ast.Logical{Op: "||", Left: el("Left", nil), Right: el("Right", nil)}),
		container(&ast.ArrowFunc{Body: el("Concise", nil)}),
		container(&ast.ArrowFunc{Block: true}),
		container(&ast.Other{Src: "items.map(i => <Item />)"}),
		container(&ast.Ident{Name: "slot"}),
		container(nil),
		&ast.Fragment{Children: []ast.Node{el("Hidden", nil)}},
		el("Footer", nil),
	)

	got := Extract(root, "page.jsx")
	require.NotNil(t, got)
	assert.Equal(t, []string{"Header", "Nav", "Modal", "Right", "Left", "Concise", "Footer"}, names(got.Children))
}

func TestExtractConditionalBranchOrder(t *testing.T) {
	got := Extract(el("Root", nil,
		container(&ast.Conditional{
			Test:       &ast.Ident{Name: "ok"},
			Consequent: el("Yes", nil),
			Alternate:  &ast.Literal{Kind: ast.LitNull},
		}),
		container(&ast.Conditional{
			Test:       &ast.Ident{Name: "ok"},
			Consequent: &ast.Conditional{Consequent: el("Deep", nil)},
			Alternate:  el("No", nil),
		}),
	), "root.jsx")
	require.NotNil(t, got)
	assert.Equal(t, []string{"Yes", "No"}, names(got.Children))
}

func TestExtractDepthFirst(t *testing.T) {
	root := el("A", nil,
		el("B", nil, el("C", nil, el("D", nil))),
		el("E", nil),
	)

	got := Extract(root, "a.jsx")
	require.NotNil(t, got)

	var order []string
	got.Walk(func(n *usage.Node, _ int) { order = append(order, n.Component) })
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, order)
}

func TestExtractIdempotent(t *testing.T) {
	root := el("A", []ast.Attr{expr("v", &ast.Ident{Name: "v"})},
		container(&ast.Logical{Op: "&&", Left: &ast.Ident{Name: "x"}, Right: el("B", nil)}),
	)
	x := New(nil)
	assert.Equal(t, x.Extract(root, "a.jsx"), x.Extract(root, "a.jsx"))
}

func TestExtractMaxDepth(t *testing.T) {
	root := el("L0", nil, el("L1", nil, el("L2", nil, el("L3", nil))))

	got := New(&Options{MaxDepth: 2}).Extract(root, "deep.jsx")
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Count())

	leaf := got.Children[0].Children[0]
	assert.Equal(t, "L2", leaf.Component)
	assert.True(t, leaf.Truncated)
	assert.Empty(t, leaf.Children)
	assert.False(t, got.Truncated)

	full := New(nil).Extract(root, "deep.jsx")
	assert.Equal(t, 4, full.Count())
}

func TestExtractKeepsParserTruncation(t *testing.T) {
	cut := el("C", nil)
	cut.Truncated = true
	root := el("A", nil, el("B", nil, cut))

	got := Extract(root, "deep.jsx")
	require.NotNil(t, got)
	assert.False(t, got.Truncated)

	var truncated []string
	got.Walk(func(n *usage.Node, _ int) {
		if n.Truncated {
			truncated = append(truncated, n.Component)
		}
	})
	assert.Equal(t, []string{"C"}, truncated)
}
