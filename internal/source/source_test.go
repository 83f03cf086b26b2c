package source

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, path string) string {
	t.Helper()
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestOpen_CompressedMatchesPlain(t *testing.T) {
	plain := readAll(t, "../../testdata/sample.gff3")
	require.NotEmpty(t, plain)

	for _, suffix := range []string{".gz", ".bz2", ".zip"} {
		t.Run(suffix, func(t *testing.T) {
			assert.Equal(t, plain, readAll(t, "../../testdata/sample.gff3"+suffix))
		})
	}
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.gff3"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_CorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gff3.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestNewScanner_LongLine(t *testing.T) {
	long := strings.Repeat("A", 200*1024)
	scanner := NewScanner(strings.NewReader("a\n" + long + "\n\nc"))

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"a", long, "", "c"}, lines)
}

func TestCreate_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt.gz")

	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, ">t1\nATG\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	b, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, ">t1\nATG\n", string(b))

	// Round trip through Open as well.
	assert.Equal(t, ">t1\nATG\n", readAll(t, path))
}

func TestCreate_UnwritablePath(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "no", "such", "dir", "out.txt"))
	assert.Error(t, err)
}
