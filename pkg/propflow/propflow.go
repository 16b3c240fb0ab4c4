// Package propflow reports how JSX components are instantiated: for each
// top-level element of a source file, the component tree with every
// component's prop keys and source location.
package propflow

import (
	"context"

	"github.com/kilianc/propflow/internal/propflow/extract"
	"github.com/kilianc/propflow/internal/propflow/parse"
	"github.com/kilianc/propflow/internal/propflow/report"
	"github.com/kilianc/propflow/internal/propflow/usage"
)

type (
	Node      = usage.Node
	Props     = usage.Props
	PropValue = usage.PropValue
	Location  = usage.Location
)

// Analyze parses a .js, .jsx, .mjs, .cjs or .tsx source and returns one
// usage tree per top-level component instantiation, in source order. path
// selects the grammar and is recorded in every node's location.
func Analyze(ctx context.Context, path string, src []byte) ([]*Node, error) {
	file, err := parse.ParseFile(ctx, path, src)
	if err != nil {
		return nil, err
	}
	var trees []*Node
	for _, root := range file.Roots {
		if tree := extract.Extract(root, path); tree != nil {
			trees = append(trees, tree)
		}
	}
	return trees, nil
}

// Report renders the markdown prop flow report for a single tree.
func Report(tree *Node) string {
	return report.BuildReport(tree, nil)
}

// FileReport renders every tree of a file under one title.
func FileReport(trees []*Node) (string, error) {
	return report.BuildFileReport(trees, nil)
}
