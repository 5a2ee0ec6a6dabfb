package nas

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/webdav"

	"github.com/tomek7667/nasdash/internal/domain"
	"github.com/tomek7667/nasdash/internal/metrics"
)

const maxUploadMemory = 32 << 20

func init() {
	for _, m := range []string{"PROPFIND", "PROPPATCH", "MKCOL", "COPY", "MOVE", "LOCK", "UNLOCK"} {
		chi.RegisterMethod(m)
	}
}

type DiagnosticsSource interface {
	Snapshot() (domain.Diagnostics, error)
}

type Restarter interface {
	Restart(ctx context.Context) domain.RestartResult
}

type Handler struct {
	share     *Share
	diag      DiagnosticsSource
	restarter Restarter
	log       zerolog.Logger
	metrics   *metrics.Metrics
	webdav    http.Handler
	now       func() time.Time
}

type Option func(*Handler)

func WithLogger(log zerolog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithWebDAV exports the share root read-write under /webdav/.
func WithWebDAV() Option {
	return func(h *Handler) {
		h.webdav = &webdav.Handler{
			Prefix:     "/webdav",
			FileSystem: webdav.Dir(h.share.Root()),
			LockSystem: webdav.NewMemLS(),
			Logger: func(r *http.Request, err error) {
				if err != nil {
					h.log.Warn().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("webdav")
				}
			},
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(share *Share, diag DiagnosticsSource, restarter Restarter, opts ...Option) *Handler {
	h := &Handler{
		share:     share,
		diag:      diag,
		restarter: restarter,
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mount registers the NAS API on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/api/diagnostics", h.instrument("diagnostics", h.Diagnostics))
	r.Post("/api/restart-samba", h.instrument("restart-samba", h.RestartSamba))
	r.Get("/api/folder-contents", h.instrument("folder-contents", h.FolderContents))
	r.Get("/api/download/*", h.instrument("download", h.Download))
	r.Get("/file/*", h.instrument("file", h.File))
	r.Post("/api/upload", h.instrument("upload", h.Upload))
	r.Post("/api/create-folder", h.instrument("create-folder", h.CreateFolder))
	if h.webdav != nil {
		r.Handle("/webdav", h.webdav)
		r.Handle("/webdav/*", h.webdav)
	}
}

func (h *Handler) instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.NASRequest(name, status)
	}
}

func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	d, err := h.diag.Snapshot()
	if err != nil {
		h.log.Error().Err(err).Msg("diagnostics unavailable")
		sendJSONError(w, "Error getting diagnostics: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, d)
}

func (h *Handler) RestartSamba(w http.ResponseWriter, r *http.Request) {
	res := h.restarter.Restart(r.Context())
	ev := h.log.Info()
	if !res.OK() {
		ev = h.log.Warn()
	}
	ev.Str("status", res.Status).Str("message", res.Message).Msg("samba restart")
	sendJSON(w, http.StatusOK, res)
}

func (h *Handler) FolderContents(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("folder_path")
	listing, err := h.share.List(rel)
	if err != nil {
		switch {
		case errors.Is(err, ErrOutsideRoot):
			sendJSONError(w, "Access denied", http.StatusForbidden)
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotDir):
			sendJSONError(w, "Folder not found", http.StatusNotFound)
		default:
			h.log.Error().Err(err).Str("folder", rel).Msg("read folder")
			sendJSONError(w, "Error reading folder", http.StatusInternalServerError)
		}
		return
	}
	sendJSON(w, http.StatusOK, listing)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, true)
}

func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, false)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, attachment bool) {
	rel := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		// chi matched on the escaped path
		if u, err := url.PathUnescape(rel); err == nil {
			rel = u
		}
	}
	f, fi, err := h.share.OpenFile(rel)
	if err != nil {
		switch {
		case errors.Is(err, ErrOutsideRoot):
			sendJSONError(w, "Access denied", http.StatusForbidden)
		case errors.Is(err, ErrNotFound):
			sendJSONError(w, "File not found", http.StatusNotFound)
		case errors.Is(err, ErrNotFile):
			sendJSONError(w, "Not a file", http.StatusBadRequest)
		default:
			h.log.Error().Err(err).Str("file", rel).Msg("open file")
			sendJSONError(w, "Error reading file", http.StatusInternalServerError)
		}
		return
	}
	defer f.Close()

	ctype := mime.TypeByExtension(filepath.Ext(fi.Name()))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	if attachment {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fi.Name()}))
	}
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("folder_name")
	parent := r.FormValue("parent_path")
	if name == "" {
		sendJSONError(w, "folder_name is required", http.StatusBadRequest)
		return
	}

	rel := path.Join("/", parent, name)
	full, err := h.share.Resolve(rel)
	switch {
	case errors.Is(err, ErrOutsideRoot):
		sendJSONError(w, "Access denied", http.StatusForbidden)
		return
	case err != nil && !errors.Is(err, ErrNotFound):
		sendJSONError(w, "Error creating folder", http.StatusInternalServerError)
		return
	}
	full, err = mkdirInside(h.share, full)
	if err != nil {
		h.log.Error().Err(err).Str("folder", rel).Msg("create folder")
		switch {
		case errors.Is(err, ErrOutsideRoot):
			sendJSONError(w, "Access denied", http.StatusForbidden)
			return
		case errors.Is(err, ErrNotDir):
			sendJSONError(w, "A file with that name already exists", http.StatusConflict)
			return
		}
		sendJSONError(w, "Error creating folder: "+err.Error(), http.StatusInternalServerError)
		return
	}

	folderPath, _ := h.share.Rel(full)
	h.log.Info().Str("folder", folderPath).Msg("folder created")
	sendJSON(w, http.StatusOK, map[string]string{
		"status":      statusSuccess,
		"message":     "Folder '" + name + "' created successfully",
		"folder_path": folderPath,
	})
}

func sendJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func sendJSONError(w http.ResponseWriter, message string, code int) {
	sendJSON(w, code, map[string]any{
		"detail": message,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
