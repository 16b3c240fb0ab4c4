// Package usage holds component usage trees: which components an
// instantiation renders, with what props, and where.
package usage

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

const (
	// Anonymous names an element whose tag is not a plain identifier.
	Anonymous = "anonymous"
	// Expression stands for any computed prop value.
	Expression = "expression"
	// Unknown stands for a prop value form propflow does not classify.
	Unknown = "unknown"
)

type PropKind int

const (
	PropUnknown PropKind = iota
	PropString
	PropNumber
	PropBool
	PropNull
	PropIdentifier
	PropExpression
)

// PropValue is the summary of one attribute value.
type PropValue struct {
	Kind PropKind
	// Str is the string literal or the referenced identifier name.
	Str  string
	Num  float64
	Bool bool
}

func String(s string) PropValue { return PropValue{Kind: PropString, Str: s} }
func Number(f float64) PropValue { return PropValue{Kind: PropNumber, Num: f} }
func Bool(b bool) PropValue { return PropValue{Kind: PropBool, Bool: b} }
func Null() PropValue { return PropValue{Kind: PropNull} }
func Identifier(name string) PropValue { return PropValue{Kind: PropIdentifier, Str: name} }
func Expr() PropValue { return PropValue{Kind: PropExpression} }

// Value returns the summary as a plain Go value: the literal itself, the
// identifier name, or one of the Expression and Unknown sentinels.
func (v PropValue) Value() any {
	switch v.Kind {
	case PropString, PropIdentifier:
		return v.Str
	case PropNumber:
		return v.Num
	case PropBool:
		return v.Bool
	case PropNull:
		return nil
	case PropExpression:
		return Expression
	default:
		return Unknown
	}
}

func (v PropValue) String() string {
	switch v.Kind {
	case PropString, PropIdentifier:
		return v.Str
	case PropNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case PropBool:
		return strconv.FormatBool(v.Bool)
	case PropNull:
		return "null"
	case PropExpression:
		return Expression
	default:
		return Unknown
	}
}

func (v PropValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Value())
}

func (v PropValue) MarshalYAML() (any, error) {
	return v.Value(), nil
}

type Prop struct {
	Key   string
	Value PropValue
}

// Props is an attribute-ordered mapping.
type Props []Prop

// Set assigns key. A repeated key keeps its first position and takes the
// last value.
func (p Props) Set(key string, v PropValue) Props {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = v
			return p
		}
	}
	return append(p, Prop{Key: key, Value: v})
}

func (p Props) Get(key string) (PropValue, bool) {
	prop, ok := lo.Find(p, func(prop Prop) bool { return prop.Key == key })
	return prop.Value, ok
}

func (p Props) Keys() []string {
	return lo.Map(p, func(prop Prop, _ int) string { return prop.Key })
}

// MarshalJSON writes an object in attribute order.
func (p Props) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(prop.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes a mapping in attribute order.
func (p Props) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, len(p))
	for _, prop := range p {
		out = append(out, yaml.MapItem{Key: prop.Key, Value: prop.Value})
	}
	return out, nil
}

type Location struct {
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// Node is one component instantiation and the instantiations nested in it.
type Node struct {
	Component string   `json:"component"`
	Props     Props    `json:"props"`
	Location  Location `json:"location"`
	Children  []*Node  `json:"children,omitempty"`
	// Truncated is set when nesting below this node was not explored.
	Truncated bool     `json:"truncated,omitempty"`
}

// Walk visits n and its descendants depth-first, parents first.
func (n *Node) Walk(fn func(n *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(n *Node, depth int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node, int) { total++ })
	return total
}
