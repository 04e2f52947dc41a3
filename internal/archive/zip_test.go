package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	contents := map[string]string{
		"x.txt": "hello",
		"y.txt": "world",
	}
	var paths []string
	for name, body := range contents {
		p := filepath.Join(srcDir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, paths))

	outDir := t.TempDir()
	names, err := Unpack(bytes.NewReader(buf.Bytes()), int64(buf.Len()), outDir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x.txt", "y.txt"}, names)

	for name, want := range contents {
		got, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}
