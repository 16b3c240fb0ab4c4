// Package driver runs propflow over source files: parse, extract the usage
// trees of each file, render and write one report per file.
package driver

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/kilianc/propflow/internal/propflow/extract"
	"github.com/kilianc/propflow/internal/propflow/outfile"
	"github.com/kilianc/propflow/internal/propflow/parse"
	"github.com/kilianc/propflow/internal/propflow/report"
	"github.com/kilianc/propflow/internal/propflow/usage"
)

type Options struct {
	// OutputDir receives the report files (default: current directory).
	OutputDir string
	Report    report.Options
	// MaxDepth caps component nesting per tree.
	MaxDepth    int
	MaxFileSize int
	// Workers bounds how many files are processed at once (default NumCPU).
	Workers int
	// Extensions selects source files by extension (default parse.Extensions).
	Extensions []string
	// Exclude holds doublestar patterns matched against cwd-relative paths.
	Exclude []string
	// Stdout, when set, receives the reports instead of report files.
	Stdout io.Writer
	Logger *log.Logger
}

type Driver struct {
	opt       Options
	parser    *parse.Parser
	extractor *extract.Extractor
	log       *log.Logger
}

func New(opt Options) *Driver {
	if opt.Workers <= 0 {
		opt.Workers = runtime.NumCPU()
	}
	if len(opt.Extensions) == 0 {
		opt.Extensions = parse.Extensions
	}
	logger := opt.Logger
	if logger == nil {
		logger = log.Default()
	}
	depth := opt.MaxDepth
	if depth <= 0 {
		depth = extract.DefaultMaxDepth
	}
	parser := parse.New(&parse.Options{
		MaxFileSize: opt.MaxFileSize,
		MaxNesting:  parse.NestingForDepth(depth),
	})
	return &Driver{
		opt:       opt,
		parser:    parser,
		extractor: extract.New(&extract.Options{MaxDepth: opt.MaxDepth}),
		log:       logger,
	}
}

// FileResult is the per-file accumulator: created when a file is opened and
// complete once its report is written.
type FileResult struct {
	Path  string
	Trees []*usage.Node
	// Report is the rendered report; nil when the file has no components.
	Report []byte
	// Output is the written report path; empty when nothing was written.
	Output string
	// Err is the file's failure, also part of the error Run returns.
	Err error
}

// Run processes paths concurrently. Per-file failures do not stop other
// files; they are joined into the returned error. Results keep the order of
// paths.
func (d *Driver) Run(ctx context.Context, paths []string) ([]FileResult, error) {
	if d.opt.Stdout == nil {
		dups := lo.FindDuplicatesBy(paths, func(p string) string {
			return outfile.Path(d.opt.OutputDir, p, d.opt.Report.Encoding.Extension())
		})
		for _, p := range dups {
			d.log.Warn("several sources share a report name; the last one written wins", "file", p)
		}
	}

	results := make([]FileResult, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opt.Workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := d.ProcessFile(gctx, p)
			res.Err = err
			results[i], errs[i] = res, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	if d.opt.Stdout != nil {
		for _, r := range results {
			if r.Report == nil {
				continue
			}
			if _, err := d.opt.Stdout.Write(r.Report); err != nil {
				return results, errors.Wrap(err, "write report to stdout")
			}
		}
	}
	return results, errors.Join(errs...)
}

// ProcessFile runs one file end to end.
func (d *Driver) ProcessFile(ctx context.Context, path string) (FileResult, error) {
	res := FileResult{Path: path}

	src, err := os.ReadFile(path)
	if err != nil {
		return res, errors.Wrapf(err, "read %s", path)
	}
	file, err := d.parser.ParseFile(ctx, path, src)
	if err != nil {
		return res, err
	}
	if file.SyntaxErrors {
		d.log.Warn("source has syntax errors, report may be incomplete", "file", path)
	}

	for _, root := range file.Roots {
		tree := d.extractor.Extract(root, path)
		if tree == nil {
			continue
		}
		res.Trees = append(res.Trees, tree)
		if d.opt.Report.Mode == report.ModeFirst {
			break
		}
	}
	if len(res.Trees) == 0 {
		d.log.Debug("no component instantiations", "file", path)
		return res, nil
	}
	d.warnTruncated(path, res.Trees)

	res.Report, err = report.Encode(res.Trees, &d.opt.Report)
	if err != nil {
		return res, errors.Wrapf(err, "render %s", path)
	}
	if d.opt.Stdout != nil {
		return res, nil
	}

	res.Output = outfile.Path(d.opt.OutputDir, path, d.opt.Report.Encoding.Extension())
	if err := outfile.WriteReport(res.Output, res.Report); err != nil {
		return res, err
	}
	d.log.Debug("wrote report", "file", path, "output", res.Output, "trees", len(res.Trees))
	return res, nil
}

func (d *Driver) warnTruncated(path string, trees []*usage.Node) {
	for _, t := range trees {
		t.Walk(func(n *usage.Node, _ int) {
			if n.Truncated {
				d.log.Warn("component nesting too deep, tree truncated",
					"file", path, "component", n.Component, "line", n.Location.Line)
			}
		})
	}
}
