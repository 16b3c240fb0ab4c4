package parse

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kilianc/propflow/internal/propflow/ast"
)

// tree-sitter node types for the JSX subset of the javascript and tsx
// grammars.
const (
	nodeElement            = "jsx_element"
	nodeSelfClosingElement = "jsx_self_closing_element"
	nodeOpeningElement     = "jsx_opening_element"
	nodeClosingElement     = "jsx_closing_element"
	nodeFragment           = "jsx_fragment"
	nodeExpression         = "jsx_expression"
	nodeText               = "jsx_text"
	nodeAttribute          = "jsx_attribute"
	nodeNamespaceName      = "jsx_namespace_name"
	nodeCharRef            = "html_character_reference"
	nodeComment            = "comment"
)

type converter struct {
	src        []byte
	maxNesting int
	// cut counts nesting-limit cutoffs not yet claimed by an element.
	cut int
}

// topLevel walks the whole tree once, in source order, and converts every
// element that has no enclosing element. Fragments do not enclose.
func (c *converter) topLevel(root *sitter.Node) []*ast.Element {
	var roots []*ast.Element
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if isElement(n) {
			el, ok := c.markup(n, 0).(*ast.Element)
			c.cut = 0
			if ok {
				roots = append(roots, el)
				continue
			}
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if ch := n.Child(i); ch != nil {
				stack = append(stack, ch)
			}
		}
	}
	return roots
}

func isElement(n *sitter.Node) bool {
	switch n.Type() {
	case nodeElement, nodeSelfClosingElement, nodeFragment:
		return true
	}
	return false
}

// markup converts an element-like node to *ast.Element or *ast.Fragment.
func (c *converter) markup(n *sitter.Node, depth int) ast.Expr {
	pos := c.pos(n)
	switch n.Type() {
	case nodeSelfClosingElement:
		el := &ast.Element{
			Name:        c.tagName(n),
			Attrs:       c.attrs(n, depth),
			SelfClosing: true,
			Pos:         pos,
		}
		el.Truncated = c.claimCut()
		return el
	case nodeFragment:
		return &ast.Fragment{Children: c.children(n, depth), Pos: pos}
	}

	open := n.ChildByFieldName("open_tag")
	if open == nil || open.ChildByFieldName("name") == nil {
		// <>...</> in grammars without a dedicated fragment node.
		return &ast.Fragment{Children: c.children(n, depth), Pos: pos}
	}
	el := &ast.Element{
		Name:     c.tagName(open),
		Attrs:    c.attrs(open, depth),
		Children: c.children(n, depth),
		Pos:      pos,
	}
	el.Truncated = c.claimCut()
	return el
}

// claimCut reports whether a cutoff happened since the last element
// finished, and resets the count. The innermost element claims it.
func (c *converter) claimCut() bool {
	cut := c.cut > 0
	c.cut = 0
	return cut
}

func (c *converter) tagName(n *sitter.Node) ast.Name {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ast.Name{}
	}
	text := name.Content(c.src)
	switch name.Type() {
	case "identifier", "jsx_identifier":
		return ast.Name{Kind: ast.NameIdent, Value: text}
	case nodeNamespaceName:
		return ast.Name{Kind: ast.NameNamespace, Value: text}
	default:
		return ast.Name{Kind: ast.NameMember, Value: text}
	}
}

func (c *converter) attrs(n *sitter.Node, depth int) []ast.Attr {
	var out []ast.Attr
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch ch.Type() {
		case nodeAttribute:
			out = append(out, c.attr(ch, depth))
		case nodeExpression:
			out = append(out, ast.Attr{Kind: ast.AttrSpread, Expr: c.containerExpr(ch, depth)})
		}
	}
	return out
}

func (c *converter) attr(n *sitter.Node, depth int) ast.Attr {
	var named []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if ch := n.NamedChild(i); ch.Type() != nodeComment {
			named = append(named, ch)
		}
	}
	if len(named) == 0 {
		return ast.Attr{Kind: ast.AttrBool}
	}

	a := ast.Attr{Key: named[0].Content(c.src), Kind: ast.AttrBool}
	if len(named) < 2 {
		return a
	}
	switch v := named[1]; v.Type() {
	case "string":
		a.Kind = ast.AttrString
		a.Value = decodeEntities(stripQuotes(v.Content(c.src)))
	case nodeExpression:
		a.Kind = ast.AttrExpr
		a.Expr = c.containerExpr(v, depth)
	default:
		if isElement(v) {
			a.Kind = ast.AttrElement
			a.Expr = c.markup(v, depth+1)
		}
	}
	return a
}

func (c *converter) children(n *sitter.Node, depth int) []ast.Node {
	if depth >= c.maxNesting {
		if countType(n, nodeExpression) > 0 || hasElementChild(n) {
			c.cut++
		}
		return nil
	}
	var out []ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch ch.Type() {
		case nodeOpeningElement, nodeClosingElement, nodeComment:
		case nodeText, nodeCharRef:
			out = append(out, &ast.Text{Value: ch.Content(c.src)})
		case nodeExpression:
			out = append(out, &ast.ExprContainer{Expr: c.containerExpr(ch, depth), Pos: c.pos(ch)})
		default:
			if isElement(ch) {
				out = append(out, c.markup(ch, depth+1).(ast.Node))
			}
		}
	}
	return out
}

// containerExpr returns the expression inside {...}, or nil when there is
// none.
func (c *converter) containerExpr(n *sitter.Node, depth int) ast.Expr {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if ch := n.NamedChild(i); ch.Type() != nodeComment {
			return c.expr(ch, depth+1)
		}
	}
	return nil
}

func (c *converter) expr(n *sitter.Node, depth int) ast.Expr {
	if n == nil {
		return nil
	}
	src := n.Content(c.src)
	if depth >= c.maxNesting {
		c.cut++
		return &ast.Other{Src: src}
	}

	switch n.Type() {
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return c.expr(n.NamedChild(0), depth+1)
		}
	case "identifier", "undefined":
		return &ast.Ident{Name: src}
	case "string":
		return &ast.Literal{Kind: ast.LitString, Str: unquote(src), Raw: src}
	case "template_string":
		if countType(n, "template_substitution") == 0 && len(src) >= 2 {
			if s, ok := cook(src[1 : len(src)-1]); ok {
				return &ast.Literal{Kind: ast.LitString, Str: s, Raw: src}
			}
		}
	case "number":
		if f, ok := parseNumber(src); ok {
			return &ast.Literal{Kind: ast.LitNumber, Num: f, Raw: src}
		}
	case "true", "false":
		return &ast.Literal{Kind: ast.LitBool, Bool: src == "true", Raw: src}
	case "null":
		return &ast.Literal{Kind: ast.LitNull, Raw: src}
	case "binary_expression":
		if op := n.ChildByFieldName("operator"); op != nil {
			switch op.Type() {
			case "&&", "||", "??":
				return &ast.Logical{
					Op:    op.Type(),
					Left:  c.expr(n.ChildByFieldName("left"), depth+1),
					Right: c.expr(n.ChildByFieldName("right"), depth+1),
				}
			}
		}
	case "ternary_expression":
		return &ast.Conditional{
			Test:       c.expr(n.ChildByFieldName("condition"), depth+1),
			Consequent: c.expr(n.ChildByFieldName("consequence"), depth+1),
			Alternate:  c.expr(n.ChildByFieldName("alternative"), depth+1),
		}
	case "arrow_function":
		body := n.ChildByFieldName("body")
		if body == nil || body.Type() == "statement_block" {
			return &ast.ArrowFunc{Block: true}
		}
		return &ast.ArrowFunc{Body: c.expr(body, depth+1)}
	default:
		if isElement(n) {
			return c.markup(n, depth+1)
		}
	}
	return &ast.Other{Src: src}
}

func (c *converter) pos(n *sitter.Node) ast.Pos {
	p := n.StartPoint()
	start := int(n.StartByte())
	lineStart := start - int(p.Column)
	if lineStart < 0 || start > len(c.src) {
		return ast.Pos{Line: int(p.Row) + 1, Column: int(p.Column)}
	}
	col := 0
	for _, r := range string(c.src[lineStart:start]) {
		if w := utf16.RuneLen(r); w > 0 {
			col += w
		} else {
			col++
		}
	}
	return ast.Pos{Line: int(p.Row) + 1, Column: col}
}

func countType(n *sitter.Node, typ string) int {
	count := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == typ {
			count++
		}
	}
	return count
}

func hasElementChild(n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if isElement(n.NamedChild(i)) {
			return true
		}
	}
	return false
}

// stripQuotes removes the quotes of a JSX attribute string. Backslashes in
// JSX attribute strings are literal, so nothing else is decoded.
func stripQuotes(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	if q := raw[0]; (q == '"' || q == '\'') && raw[len(raw)-1] == q {
		return raw[1 : len(raw)-1]
	}
	return raw
}

var entityRe = regexp.MustCompile(`&(?:#[0-9]+|#[xX][0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)

// decodeEntities resolves HTML character references that end with a
// semicolon. Unknown names and legacy references without one are kept.
func decodeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	return entityRe.ReplaceAllStringFunc(s, func(ref string) string {
		out := html.UnescapeString(ref)
		// The semicolon was not part of a known reference: "&ampx;" would
		// otherwise decode its "&amp" prefix.
		if out == html.UnescapeString(strings.TrimSuffix(ref, ";"))+";" {
			return ref
		}
		return out
	})
}

// unquote strips JS string quotes and resolves the escapes. A body it
// cannot decode is returned as written.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	q := raw[0]
	if (q != '"' && q != '\'') || raw[len(raw)-1] != q {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if s, ok := cook(body); ok {
		return s
	}
	return body
}

var cookReplacer = strings.NewReplacer(
	`\\`, `\\`,
	`\'`, `'`,
	`\"`, `\"`,
	"\\`", "`",
	`\$`, `$`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
)

// cook resolves the escapes of a JS string or template body. ok is false
// for escapes Go has no equivalent for, such as \u{...}.
func cook(body string) (string, bool) {
	if !strings.ContainsRune(body, '\\') {
		return body, true
	}
	s, err := strconv.Unquote(`"` + cookReplacer.Replace(body) + `"`)
	if err != nil {
		return "", false
	}
	return s, true
}

func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSuffix(raw, "n")
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(i), true
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64); err == nil {
		return f, true
	}
	return 0, false
}
