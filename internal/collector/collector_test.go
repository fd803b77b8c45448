package collector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func filenames(refs []models.ImageReference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Filename)
	}
	return out
}

func TestScanDirectory(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		extensions []string
		expected   []string
	}{
		{
			name:     "sorts and excludes png",
			files:    []string{"b.jpg", "a.jpeg", "c.png"},
			expected: []string{"a.jpeg", "b.jpg"},
		},
		{
			name:     "matches extensions case-insensitively",
			files:    []string{"Scan2.JPG", "scan1.JpEg", "notes.txt", "photo.jpg.bak"},
			expected: []string{"Scan2.JPG", "scan1.JpEg"},
		},
		{
			name:       "custom allow-list",
			files:      []string{"b.png", "a.jpg", "c.webp"},
			extensions: []string{".png", ".webp"},
			expected:   []string{"b.png", "c.webp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)

			refs, err := ScanDirectory(dir, tt.extensions)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, filenames(refs))
			for _, r := range refs {
				assert.Equal(t, filepath.Join(dir, r.Filename), r.Path)
			}
		})
	}
}

func TestScanDirectoryCountsOnlyMatches(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "3.jpg", "1.jpeg", "2.jpg", "a.gif", "b.pdf", "c.png", "d")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))

	refs, err := ScanDirectory(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.jpeg", "2.jpg", "3.jpg"}, filenames(refs))
}

func TestScanDirectoryNoMatches(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "c.png")

	refs, err := ScanDirectory(dir, nil)
	assert.ErrorIs(t, err, ErrNoMatchingFiles)
	assert.Nil(t, refs)
}

func TestScanDirectoryMissing(t *testing.T) {
	_, err := ScanDirectory(filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatchingFiles)
}

func TestFromPathsKeepsOrder(t *testing.T) {
	refs := FromPaths([]string{"/x/z.jpg", "/y/a.jpg", "/x/m.jpeg"})
	assert.Equal(t, []string{"z.jpg", "a.jpg", "m.jpeg"}, filenames(refs))
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	scans := filepath.Join(root, "scans")
	empty := filepath.Join(root, "empty")
	require.NoError(t, os.Mkdir(scans, 0o755))
	require.NoError(t, os.Mkdir(empty, 0o755))
	touch(t, scans, "b.jpg", "a.jpg")
	touch(t, empty, "readme.txt")
	touch(t, root, "cover.png")

	batch := models.NewBatch()
	err := Collect(batch, []string{filepath.Join(root, "cover.png"), empty, scans}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"cover.png", "a.jpg", "b.jpg"}, filenames(batch.Refs()))
}

func TestCollectMissingPath(t *testing.T) {
	batch := models.NewBatch()
	err := Collect(batch, []string{filepath.Join(t.TempDir(), "nope.jpg")}, nil)
	require.Error(t, err)
	assert.Equal(t, 0, batch.Len())
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "batch.yaml")
	content := "files:\n  - pages/2.jpg\n  - /abs/1.jpg\n  - 0.jpg\n"
	require.NoError(t, os.WriteFile(manifest, []byte(content), 0o644))

	refs, err := LoadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, filepath.Join(dir, "pages", "2.jpg"), refs[0].Path)
	assert.Equal(t, "/abs/1.jpg", refs[1].Path)
	assert.Equal(t, filepath.Join(dir, "0.jpg"), refs[2].Path)
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()

	emptyManifest := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyManifest, []byte("files: []\n"), 0o644))
	_, err := LoadManifest(emptyManifest)
	assert.Error(t, err)

	badManifest := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badManifest, []byte("files: [unterminated\n"), 0o644))
	_, err = LoadManifest(badManifest)
	assert.Error(t, err)

	_, err = LoadManifest(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
