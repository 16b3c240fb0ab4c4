package report

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-yaml"

	"github.com/kilianc/propflow/internal/propflow/usage"
)

// Mode selects which top-level trees of a file are reported.
type Mode int

const (
	// ModeAll reports every top-level tree, one block each.
	ModeAll Mode = iota
	// ModeFirst reports only the first top-level tree of a file.
	ModeFirst
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeFirst:
		return "first"
	default:
		return "invalid"
	}
}

// ParseMode parses "all" or "first".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ModeAll, nil
	case "first":
		return ModeFirst, nil
	default:
		return ModeAll, errors.Wrapf(ErrInvalidMode, "%q (want all or first)", s)
	}
}

type Encoding string

const (
	EncodingMarkdown Encoding = "markdown"
	EncodingJSON     Encoding = "json"
	EncodingYAML     Encoding = "yaml"
)

// ParseEncoding parses an encoding name; "md" and "yml" are accepted too.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return EncodingMarkdown, nil
	case "json":
		return EncodingJSON, nil
	case "yaml", "yml":
		return EncodingYAML, nil
	default:
		return "", errors.Wrapf(ErrInvalidEncoding, "%q (want markdown, json or yaml)", s)
	}
}

// Extension is the report file extension, dot included.
func (e Encoding) Extension() string {
	switch e {
	case EncodingJSON:
		return ".json"
	case EncodingYAML:
		return ".yaml"
	default:
		return ".md"
	}
}

// Encode renders the trees of one file in the configured encoding.
func Encode(trees []*usage.Node, opt *Options) ([]byte, error) {
	if len(trees) == 0 {
		return nil, ErrNoTrees
	}
	o := opt.normalize()
	if o.Mode == ModeFirst {
		trees = trees[:1]
	}

	switch o.Encoding {
	case EncodingMarkdown:
		s, err := BuildFileReport(trees, &o)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	case EncodingJSON:
		b, err := json.MarshalIndent(trees, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "encode json report")
		}
		return append(b, '\n'), nil
	case EncodingYAML:
		docs := make([]yamlNode, 0, len(trees))
		for _, t := range trees {
			docs = append(docs, toYAML(t))
		}
		b, err := yaml.Marshal(docs)
		if err != nil {
			return nil, errors.Wrap(err, "encode yaml report")
		}
		return b, nil
	default:
		return nil, errors.Wrapf(ErrInvalidEncoding, "%q", o.Encoding)
	}
}

type yamlNode struct {
	Component string         `yaml:"component"`
	Props     usage.Props    `yaml:"props"`
	Location  usage.Location `yaml:"location"`
	Truncated bool           `yaml:"truncated,omitempty"`
	Children  []yamlNode     `yaml:"children,omitempty"`
}

func toYAML(n *usage.Node) yamlNode {
	out := yamlNode{
		Component: n.Component,
		Props:     n.Props,
		Location:  n.Location,
		Truncated: n.Truncated,
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toYAML(c))
	}
	return out
}
