package nas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomek7667/nasdash/internal/domain"
)

func newTestShare(t *testing.T) *Share {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Photos", "2024"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Movies"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Photos", "cat.JPG"), []byte("jpeg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Photos", "clip.mkv"), []byte("video!"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Photos", "notes.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.md"), []byte("#"), 0o644))

	s, err := NewShare(root)
	require.NoError(t, err)
	return s
}

func TestNewShareRejectsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o644))

	_, err := NewShare(f)
	assert.ErrorIs(t, err, ErrNotDir)
}

func TestShareListRoot(t *testing.T) {
	s := newTestShare(t)

	l, err := s.List("")
	require.NoError(t, err)
	assert.Equal(t, []domain.FolderEntry{
		{Name: "Movies", Path: "Movies"},
		{Name: "Photos", Path: "Photos"},
	}, l.Folders)
	require.Len(t, l.Files, 1)
	assert.Equal(t, "readme.md", l.Files[0].Path)
}

func TestShareListCategorizes(t *testing.T) {
	s := newTestShare(t)

	l, err := s.List("/Photos/")
	require.NoError(t, err)
	assert.Equal(t, []domain.FolderEntry{{Name: "2024", Path: "Photos/2024"}}, l.Folders)
	assert.Equal(t, []domain.FileEntry{
		{Name: "cat.JPG", Path: "Photos/cat.JPG", Size: 4, Type: domain.FileTypeImage},
		{Name: "clip.mkv", Path: "Photos/clip.mkv", Size: 6, Type: domain.FileTypeVideo},
		{Name: "notes.txt", Path: "Photos/notes.txt", Size: 11, Type: domain.FileTypeOther},
	}, l.Files)
}

func TestShareListEmptyFolder(t *testing.T) {
	s := newTestShare(t)

	l, err := s.List("Movies")
	require.NoError(t, err)
	assert.True(t, l.Empty())
	assert.NotNil(t, l.Folders)
	assert.NotNil(t, l.Files)
}

func TestShareListErrors(t *testing.T) {
	s := newTestShare(t)

	_, err := s.List("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.List("readme.md")
	assert.ErrorIs(t, err, ErrNotDir)

	_, err = s.List("../..")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestShareResolveRejectsSymlinkEscape(t *testing.T) {
	s := newTestShare(t)
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(s.Root(), "escape")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := s.Resolve("escape")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestMkdirInside(t *testing.T) {
	s := newTestShare(t)

	dir, err := mkdirInside(s, filepath.Join(s.Root(), "Docs", "2025"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "Docs", "2025"), dir)
	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	dir, err = mkdirInside(s, s.Root())
	require.NoError(t, err)
	assert.Equal(t, s.Root(), dir)

	_, err = mkdirInside(s, filepath.Join(s.Root(), "readme.md", "sub"))
	assert.ErrorIs(t, err, ErrNotDir)
}

func TestMkdirInsideStopsAtSymlinkEscape(t *testing.T) {
	s := newTestShare(t)
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(s.Root(), "escape")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := mkdirInside(s, filepath.Join(s.Root(), "escape", "a", "b"))
	assert.ErrorIs(t, err, ErrOutsideRoot)
	_, err = os.Stat(filepath.Join(outside, "a"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestShareOpenFile(t *testing.T) {
	s := newTestShare(t)

	f, fi, err := s.OpenFile("Photos/notes.txt")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, int64(11), fi.Size())

	_, _, err = s.OpenFile("Photos")
	assert.ErrorIs(t, err, ErrNotFile)

	_, _, err = s.OpenFile("Photos/nope.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}
