package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run `go test ./... -update-golden` to rewrite golden files from current output.
var updateGolden = flag.Bool("update-golden", false, "rewrite testdata/*.golden files")

// GoldenString compares rendered output against testdata/<name>.golden.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")

	if *updateGolden {
		require.NoError(t, os.MkdirAll("testdata", 0755))
		require.NoError(t, os.WriteFile(path, []byte(got), 0644))
		return
	}

	want, err := os.ReadFile(path)
	require.NoError(t, err, "missing golden file %s; rerun with -update-golden", path)
	assert.Equal(t, string(want), got, "output mismatch for %s", name)
}
