// Package parse reads JS, JSX and TSX sources into the markup tree with
// tree-sitter and picks out the top-level component instantiations.
package parse

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"

	"github.com/kilianc/propflow/internal/propflow/ast"
)

const (
	// DefaultMaxFileSize is the default source size limit in bytes.
	DefaultMaxFileSize = 10 * 1024 * 1024
	// DefaultMaxNesting bounds markup and expression nesting during conversion.
	DefaultMaxNesting = 1024
)

// NestingForDepth returns a MaxNesting that converts maxDepth levels of
// components even when each is written as {cond && (<X />)}.
func NestingForDepth(maxDepth int) int {
	return max(DefaultMaxNesting, (maxDepth+1)*4)
}

// Extensions lists the file extensions a grammar exists for.
var Extensions = []string{".js", ".jsx", ".mjs", ".cjs", ".tsx"}

type Options struct {
	// MaxFileSize rejects larger sources with ErrFileTooLarge.
	MaxFileSize int
	// MaxNesting is the deepest markup or expression nesting converted;
	// anything deeper becomes an opaque expression.
	MaxNesting int
}

func (o *Options) normalize() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.MaxFileSize <= 0 {
		out.MaxFileSize = DefaultMaxFileSize
	}
	if out.MaxNesting <= 0 {
		out.MaxNesting = DefaultMaxNesting
	}
	return out
}

// Parser is safe for concurrent use; each call gets its own tree-sitter
// parser.
type Parser struct {
	opt Options
}

func New(opt *Options) *Parser {
	return &Parser{opt: opt.normalize()}
}

// Language returns the grammar used for path, picked by extension.
func Language(path string) (*sitter.Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage(), nil
	case ".tsx":
		return tsx.GetLanguage(), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFile, "%s", path)
	}
}

// ParseFile parses src and returns its top-level instantiations. name is
// recorded as the file name and selects the grammar.
func (p *Parser) ParseFile(ctx context.Context, name string, src []byte) (*ast.File, error) {
	if len(src) > p.opt.MaxFileSize {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s: %d bytes", name, len(src))
	}
	if !utf8.Valid(src) {
		return nil, errors.Wrapf(ErrInvalidContent, "%s", name)
	}
	lang, err := Language(name)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s", name), ErrParse)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, errors.Wrapf(ErrParse, "%s: empty tree", name)
	}

	c := &converter{src: src, maxNesting: p.opt.MaxNesting}
	return &ast.File{
		Name:         name,
		Roots:        c.topLevel(root),
		SyntaxErrors: root.HasError(),
	}, nil
}

// ParseFile parses with default options.
func ParseFile(ctx context.Context, name string, src []byte) (*ast.File, error) {
	return New(nil).ParseFile(ctx, name, src)
}
