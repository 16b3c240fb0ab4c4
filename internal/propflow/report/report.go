// Package report renders component usage trees as a Prop Flow Report.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kilianc/propflow/internal/propflow/usage"
)

// Title is the first line of every markdown report.
const Title = "Prop Flow Report"

const (
	noProps     = "*(none)*"
	propsSep    = "`, `"
	defaultMark = "-"
)

// Options controls report rendering.
type Options struct {
	// Mode selects which top-level trees of a file are rendered.
	Mode Mode
	// Encoding selects the output encoding (default markdown).
	Encoding Encoding
	// HeadingMarker is repeated depth+1 times in front of each component
	// name (default "-").
	HeadingMarker string
}

func (o *Options) normalize() Options {
	if o == nil {
		return Options{Encoding: EncodingMarkdown, HeadingMarker: defaultMark}
	}
	out := *o
	if out.Encoding == "" {
		out.Encoding = EncodingMarkdown
	}
	if out.HeadingMarker == "" {
		out.HeadingMarker = defaultMark
	}
	return out
}

// Format renders n and its descendants as a block of lines, n at depth.
func Format(n *usage.Node, depth int, opt *Options) string {
	o := opt.normalize()
	return format(n, depth, o.HeadingMarker)
}

func format(n *usage.Node, depth int, mark string) string {
	lines := make([]string, 0, 4+len(n.Children))
	lines = append(lines,
		strings.Repeat(mark, depth+1)+" "+n.Component,
		"- **Props**: "+propList(n.Props),
		fmt.Sprintf("- **Location**: `%s:%d:%d`", filepath.Base(n.Location.File), n.Location.Line, n.Location.Column),
		"",
	)
	for _, c := range n.Children {
		lines = append(lines, format(c, depth+1, mark))
	}
	return strings.Join(lines, "\n")
}

func propList(props usage.Props) string {
	if len(props) == 0 {
		return noProps
	}
	return "`" + strings.Join(props.Keys(), propsSep) + "`"
}

// BuildReport renders the report for a single top-level tree.
func BuildReport(tree *usage.Node, opt *Options) string {
	return strings.Join([]string{Title + "\n", Format(tree, 0, opt)}, "\n")
}

// BuildFileReport renders the markdown report for all top-level trees of a
// file. In ModeFirst only the first tree is rendered and the result equals
// BuildReport(trees[0]).
func BuildFileReport(trees []*usage.Node, opt *Options) (string, error) {
	if len(trees) == 0 {
		return "", ErrNoTrees
	}
	o := opt.normalize()
	if o.Mode == ModeFirst {
		return BuildReport(trees[0], &o), nil
	}

	parts := make([]string, 0, len(trees)+1)
	parts = append(parts, Title+"\n")
	for _, t := range trees {
		parts = append(parts, format(t, 0, o.HeadingMarker))
	}
	return strings.Join(parts, "\n"), nil
}
