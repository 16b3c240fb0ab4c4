package driver

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/kilianc/propflow/internal/propflow/parse"
)

// Collect expands patterns into absolute, sorted source paths.
//
// Patterns behave like Go patterns:
//   - ./...        recurse from cwd
//   - ./dir        only that directory (non-recursive)
//   - ./dir/...    recurse from that directory
//   - ./file.jsx   only that file
//
// No patterns means ./... .
func (d *Driver) Collect(cwd string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	seen := map[string]bool{}
	var out []string

	add := func(p string) error {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(cwd, abs)
		}
		abs, err := filepath.Abs(abs)
		if err != nil {
			return err
		}
		if seen[abs] || d.excluded(cwd, abs) {
			return nil
		}
		seen[abs] = true
		out = append(out, abs)
		return nil
	}

	for _, raw := range patterns {
		pat := strings.TrimSpace(raw)
		if pat == "" {
			continue
		}

		// Recursive pattern: <dir>/...
		if strings.HasSuffix(pat, "/...") || pat == "..." {
			base := strings.TrimSuffix(pat, "...")
			base = strings.TrimSuffix(base, "/")
			if base == "" {
				base = "."
			}
			dir := base
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(cwd, dir)
			}
			if err := d.walkSources(dir, add); err != nil {
				return nil, errors.Wrapf(err, "walk %s", dir)
			}
			continue
		}

		// Non-recursive: a file or a directory.
		target := pat
		if !filepath.IsAbs(target) {
			target = filepath.Join(cwd, target)
		}
		st, err := os.Stat(target)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", pat)
		}
		if st.IsDir() {
			entries, err := os.ReadDir(target)
			if err != nil {
				return nil, errors.Wrapf(err, "read dir %s", pat)
			}
			for _, e := range entries {
				if e.IsDir() || !d.isSource(e.Name()) {
					continue
				}
				if err := add(filepath.Join(target, e.Name())); err != nil {
					return nil, err
				}
			}
			continue
		}
		if !d.isSource(target) {
			return nil, errors.Wrapf(parse.ErrUnsupportedFile, "%s", target)
		}
		if err := add(target); err != nil {
			return nil, err
		}
	}

	sort.Strings(out)
	return out, nil
}

func (d *Driver) walkSources(root string, add func(string) error) error {
	return filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			name := de.Name()
			if path != root && (name == "vendor" || name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.isSource(de.Name()) {
			return add(path)
		}
		return nil
	})
}

func (d *Driver) isSource(name string) bool {
	return lo.Contains(d.opt.Extensions, strings.ToLower(filepath.Ext(name)))
}

func (d *Driver) excluded(cwd, abs string) bool {
	if len(d.opt.Exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(cwd, abs)
	if err != nil {
		rel = abs
	}
	rel = filepath.ToSlash(rel)
	return lo.ContainsBy(d.opt.Exclude, func(pat string) bool {
		ok, err := doublestar.Match(pat, rel)
		if err != nil {
			d.log.Warn("invalid exclude pattern", "pattern", pat, "err", err)
		}
		return ok
	})
}
