package outfile

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/renameio/v2"
)

// Path returns where the report for source goes: the source basename plus
// ext, inside dir.
func Path(dir, source, ext string) string {
	return filepath.Join(dir, filepath.Base(source)+ext)
}

// WriteReport writes src to outPath atomically, always overwriting any
// existing file. Missing parent directories are created.
func WriteReport(outPath string, src []byte) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrapf(err, "create report directory for %s", outPath)
	}
	if err := renameio.WriteFile(outPath, src, 0o644); err != nil {
		return errors.Wrapf(err, "write report %s", outPath)
	}
	return nil
}
