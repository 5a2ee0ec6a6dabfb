// Package nas implements the NAS backend API the dashboard consumes: a
// folder index over one share root, file and download serving, uploads,
// Samba restarts and system diagnostics.
package nas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tomek7667/nasdash/internal/domain"
)

var (
	ErrOutsideRoot = errors.New("path escapes the share root")
	ErrNotFound    = errors.New("no such file or folder")
	ErrNotDir      = errors.New("not a folder")
	ErrNotFile     = errors.New("not a file")
)

type Share struct {
	root string
}

func NewShare(root string) (*Share, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("share root %q: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("share root %q: %w", root, err)
	}
	fi, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("share root %q: %w", root, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("share root %q: %w", root, ErrNotDir)
	}
	return &Share{root: resolved}, nil
}

func (s *Share) Root() string {
	return s.root
}

// Resolve maps a slash separated path relative to the share onto the local
// filesystem. Paths that leave the root, directly or through a symlink,
// yield ErrOutsideRoot.
func (s *Share) Resolve(rel string) (string, error) {
	rel = strings.TrimLeft(rel, "/")
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if !s.contains(full) {
		return "", ErrOutsideRoot
	}
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return full, ErrNotFound
		}
		return full, err
	}
	if !s.contains(resolved) {
		return "", ErrOutsideRoot
	}
	return resolved, nil
}

// Rel is the inverse of Resolve for paths inside the share.
func (s *Share) Rel(full string) (string, error) {
	r, err := filepath.Rel(s.root, full)
	if err != nil {
		return "", err
	}
	if r == "." {
		return "", nil
	}
	return filepath.ToSlash(r), nil
}

func (s *Share) contains(p string) bool {
	r, err := filepath.Rel(s.root, p)
	if err != nil {
		return false
	}
	return r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator))
}

// List returns the folders and regular files directly inside rel, sorted by
// name. Entries that cannot be inspected are skipped.
func (s *Share) List(rel string) (domain.Listing, error) {
	dir, err := s.Resolve(rel)
	if err != nil {
		return domain.Listing{}, err
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return domain.Listing{}, ErrNotFound
	}
	if !fi.IsDir() {
		return domain.Listing{}, ErrNotDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("read folder: %w", err)
	}

	base := strings.Trim(path.Clean("/"+rel), "/")
	out := domain.Listing{
		Folders: []domain.FolderEntry{},
		Files:   []domain.FileEntry{},
	}
	for _, e := range entries {
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		p := path.Join(base, e.Name())
		switch {
		case info.IsDir():
			out.Folders = append(out.Folders, domain.FolderEntry{Name: e.Name(), Path: p})
		case info.Mode().IsRegular():
			out.Files = append(out.Files, domain.FileEntry{
				Name: e.Name(),
				Path: p,
				Size: info.Size(),
				Type: domain.FileTypeOf(e.Name()),
			})
		}
	}
	return out, nil
}

// OpenFile resolves rel and checks that it is a regular file.
func (s *Share) OpenFile(rel string) (*os.File, fs.FileInfo, error) {
	full, err := s.Resolve(rel)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !fi.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotFile
	}
	return f, fi, nil
}
