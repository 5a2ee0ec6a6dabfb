package http

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tomek7667/nasdash/internal/backend"
	"github.com/tomek7667/nasdash/internal/domain"
	"github.com/tomek7667/nasdash/internal/navigator"
	"github.com/tomek7667/nasdash/internal/service"
	"github.com/tomek7667/nasdash/internal/stats"
	"github.com/tomek7667/nasdash/internal/ui"
)

const defaultStateRefresh = 30 * time.Second

// Dashboard is everything one page needs: the navigator over the share, the
// header stats, the restart control and the toast and modal singletons.
type Dashboard struct {
	Lister          navigator.Lister
	Navigator       *navigator.Navigator
	Poller          *stats.Poller
	Restarter       *service.Restarter
	Notifier        *ui.Notifier
	StateRefresh    time.Duration
	NotificationTTL time.Duration
}

type sidebarItem struct {
	Name    string
	Path    string
	Trigger string
}

type pageData struct {
	Labels            stats.Labels
	Trigger           service.Trigger
	View              navigator.View
	Sidebar           []sidebarItem
	Notification      template.HTML
	Modal             template.HTML
	StateRefreshMs    int64
	NotificationTTLMs int64
}

type frame struct {
	View         navigator.View    `json:"view"`
	Labels       stats.Labels      `json:"labels"`
	Trigger      service.Trigger   `json:"trigger"`
	Notification template.HTML     `json:"notification"`
	Modal        template.HTML     `json:"modal"`
	Action       *navigator.Action `json:"action,omitempty"`
	Download     string            `json:"download,omitempty"`
}

func sidebarTrigger(p string) string {
	return "sidebar:" + p
}

func (d *Dashboard) frame() frame {
	return frame{
		View:         d.Navigator.View(),
		Labels:       d.Poller.Labels(),
		Trigger:      d.Restarter.Trigger(),
		Notification: d.Notifier.Render(),
		Modal:        d.Navigator.Modals().Render(),
	}
}

func (d *Dashboard) sidebar(ctx context.Context) ([]sidebarItem, error) {
	l, err := d.Lister.FolderContents(ctx, "")
	if err != nil {
		return nil, err
	}
	items := make([]sidebarItem, 0, len(l.Folders))
	for _, f := range l.Folders {
		items = append(items, sidebarItem{Name: f.Name, Path: f.Path, Trigger: sidebarTrigger(f.Path)})
	}
	return items, nil
}

func writeFrame(w http.ResponseWriter, code int, f frame) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(f)
}

func (s *Server) AddDashboardRoutes(d *Dashboard) {
	s.r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(routeTimeout))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			items, err := d.sidebar(r.Context())
			if err != nil {
				s.log.Warn().Err(err).Msg("sidebar listing unavailable")
			}
			data := pageData{
				Labels:            d.Poller.Labels(),
				Trigger:           d.Restarter.Trigger(),
				View:              d.Navigator.View(),
				Sidebar:           items,
				Notification:      d.Notifier.Render(),
				Modal:             d.Navigator.Modals().Render(),
				StateRefreshMs:    durationMs(d.StateRefresh, defaultStateRefresh),
				NotificationTTLMs: durationMs(d.NotificationTTL, ui.DefaultNotificationTTL),
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err := indexTmpl.Execute(w, data); err != nil {
				s.log.Error().Err(err).Msg("render page")
			}
		})

		r.Get("/ui/state", func(w http.ResponseWriter, r *http.Request) {
			writeFrame(w, http.StatusOK, d.frame())
		})

		r.Post("/ui/folder", func(w http.ResponseWriter, r *http.Request) {
			p := r.FormValue("path")
			var err error
			if r.FormValue("browse") != "" {
				err = d.Navigator.NavigateTo(r.Context(), p)
			} else {
				err = d.Navigator.LoadFolder(r.Context(), p, r.FormValue("trigger"))
			}
			if err != nil && !errors.Is(err, navigator.ErrSuperseded) {
				s.log.Debug().Err(err).Str("path", p).Msg("folder load failed")
			}
			writeFrame(w, http.StatusOK, d.frame())
		})

		r.Post("/ui/file", func(w http.ResponseWriter, r *http.Request) {
			p := r.FormValue("path")
			if p == "" {
				http.Error(w, "path is required", http.StatusBadRequest)
				return
			}
			if r.FormValue("download") != "" {
				f := d.frame()
				f.Download = backend.DownloadURL(p)
				writeFrame(w, http.StatusOK, f)
				return
			}

			action := d.Navigator.HandleFileClick(p, domain.ParseFileType(r.FormValue("type")))
			f := d.frame()
			f.Action = &action
			if action.Kind == navigator.ActionDownload {
				f.Download = action.URL
			}
			writeFrame(w, http.StatusOK, f)
		})

		r.Delete("/ui/modal/{id}", func(w http.ResponseWriter, r *http.Request) {
			d.Navigator.Modals().Close(chi.URLParam(r, "id"))
			writeFrame(w, http.StatusOK, d.frame())
		})

		r.Delete("/ui/notification/{id}", func(w http.ResponseWriter, r *http.Request) {
			d.Notifier.Dismiss(chi.URLParam(r, "id"))
			writeFrame(w, http.StatusOK, d.frame())
		})

		r.Post("/ui/restart", func(w http.ResponseWriter, r *http.Request) {
			if err := d.Restarter.Restart(r.Context()); errors.Is(err, service.ErrBusy) {
				writeFrame(w, http.StatusConflict, d.frame())
				return
			}
			writeFrame(w, http.StatusOK, d.frame())
		})

		r.Post("/ui/stats", func(w http.ResponseWriter, r *http.Request) {
			if err := d.Poller.Poll(r.Context()); err != nil {
				s.log.Debug().Err(err).Msg("stats refresh failed")
			}
			writeFrame(w, http.StatusOK, d.frame())
		})
	})
}

func durationMs(d, fallback time.Duration) int64 {
	if d <= 0 {
		d = fallback
	}
	return d.Milliseconds()
}
