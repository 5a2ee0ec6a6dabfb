package nas

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

const statusSuccess = "success"

// mkdirInside creates full one segment at a time. Each existing segment is
// resolved and checked against the share before anything is created below
// it, so a symlink can never place a new folder outside the root. It returns
// the resolved folder.
func mkdirInside(s *Share, full string) (string, error) {
	rel, err := filepath.Rel(s.root, full)
	if err != nil {
		return "", err
	}
	cur := s.root
	if rel == "." {
		return cur, nil
	}
	for _, seg := range strings.Split(rel, string(filepath.Separator)) {
		if seg == "" || seg == "." {
			continue
		}
		if seg == ".." {
			return "", ErrOutsideRoot
		}
		next := filepath.Join(cur, seg)
		if _, err := os.Lstat(next); errors.Is(err, os.ErrNotExist) {
			if err := os.Mkdir(next, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
				return "", err
			}
		} else if err != nil {
			return "", err
		}
		resolved, err := filepath.EvalSymlinks(next)
		if err != nil {
			return "", err
		}
		if !s.contains(resolved) {
			return "", ErrOutsideRoot
		}
		fi, err := os.Stat(resolved)
		if err != nil {
			return "", err
		}
		if !fi.IsDir() {
			return "", ErrNotDir
		}
		cur = resolved
	}
	return cur, nil
}

// uniqueName appends _<unix seconds> before the extension when name is
// already taken in dir.
func uniqueName(dir, name string, unix int64) string {
	if _, err := os.Lstat(filepath.Join(dir, name)); errors.Is(err, os.ErrNotExist) {
		return name
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		return fmt.Sprintf("%s_%d%s", name[:i], unix, name[i:])
	}
	return fmt.Sprintf("%s_%d", name, unix)
}

func uploadName(filename string) (string, bool) {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "", false
	}
	return name, true
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		sendJSONError(w, "Invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		sendJSONError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer src.Close()

	name, ok := uploadName(header.Filename)
	if !ok {
		sendJSONError(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	folder := r.FormValue("folder_path")
	dir, err := h.share.Resolve(folder)
	switch {
	case errors.Is(err, ErrOutsideRoot):
		sendJSONError(w, "Access denied", http.StatusForbidden)
		return
	case err != nil && !errors.Is(err, ErrNotFound):
		sendJSONError(w, "Error uploading file", http.StatusInternalServerError)
		return
	}
	dir, err = mkdirInside(h.share, dir)
	if err != nil {
		switch {
		case errors.Is(err, ErrOutsideRoot):
			sendJSONError(w, "Access denied", http.StatusForbidden)
			return
		case errors.Is(err, ErrNotDir):
			sendJSONError(w, "Upload folder is not a folder", http.StatusConflict)
			return
		}
		h.log.Error().Err(err).Str("folder", folder).Msg("create upload folder")
		sendJSONError(w, "Error uploading file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	target := filepath.Join(dir, uniqueName(dir, name, h.now().Unix()))
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		h.log.Error().Err(err).Str("target", target).Msg("create upload file")
		sendJSONError(w, "Error uploading file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		h.log.Error().Err(err).Str("target", target).Msg("write upload")
		sendJSONError(w, "Error uploading file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	rel, _ := h.share.Rel(target)
	h.log.Info().Str("file", rel).Str("size", humanize.IBytes(uint64(n))).Msg("file uploaded")
	sendJSON(w, http.StatusOK, map[string]string{
		"status":    statusSuccess,
		"message":   fmt.Sprintf("File '%s' uploaded successfully (%s)", name, humanize.IBytes(uint64(n))),
		"file_path": rel,
	})
}
