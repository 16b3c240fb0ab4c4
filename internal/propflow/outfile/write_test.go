package outfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "app.jsx.md"), Path("out", filepath.Join("src", "ui", "app.jsx"), ".md"))
	assert.Equal(t, "app.tsx.json", Path("", "app.tsx", ".json"))
}

func TestWriteReportOverwrites(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "app.jsx.md")

	require.NoError(t, WriteReport(out, []byte("first")))
	require.NoError(t, WriteReport(out, []byte("second")))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))
}
