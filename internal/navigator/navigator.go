// Package navigator owns the folder being browsed: it fetches listings from
// the NAS backend, renders them and routes file clicks to previews or
// downloads.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomek7667/nasdash/internal/backend"
	"github.com/tomek7667/nasdash/internal/domain"
	"github.com/tomek7667/nasdash/internal/metrics"
	"github.com/tomek7667/nasdash/internal/ui"
)

// ErrSuperseded is returned by LoadFolder when a newer load was issued
// before this one completed. Its result was discarded.
var ErrSuperseded = errors.New("folder load superseded by a newer one")

const DefaultRoot = "/media/nas"

type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = StateIdle
	case "loading":
		*s = StateLoading
	case "error":
		*s = StateError
	default:
		return fmt.Errorf("unknown navigator state %q", b)
	}
	return nil
}

type Lister interface {
	FolderContents(ctx context.Context, folderPath string) (domain.Listing, error)
}

type Notifier interface {
	Show(message string, severity ui.Severity) ui.Notification
}

type View struct {
	Path       string        `json:"path"`
	Breadcrumb string        `json:"breadcrumb"`
	State      State         `json:"state"`
	Loading    bool          `json:"loading"`
	Active     string        `json:"active"`
	Content    template.HTML `json:"content"`
	Seq        uint64        `json:"seq"`
}

type Navigator struct {
	lister   Lister
	notifier Notifier
	modals   *ui.Modals
	root     string
	log      zerolog.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	path    string
	seq     uint64
	state   State
	loading bool
	active  string
	content template.HTML
}

type Option func(*Navigator)

// WithRoot sets the absolute location shown in the breadcrumb for the share
// root.
func WithRoot(root string) Option {
	return func(n *Navigator) {
		if root = strings.TrimRight(root, "/"); root != "" {
			n.root = root
		}
	}
}

func WithModals(m *ui.Modals) Option {
	return func(n *Navigator) { n.modals = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(n *Navigator) { n.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Navigator) { n.metrics = m }
}

func New(lister Lister, notifier Notifier, opts ...Option) *Navigator {
	n := &Navigator{
		lister:   lister,
		notifier: notifier,
		root:     DefaultRoot,
		log:      zerolog.Nop(),
		content:  initialContent,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.modals == nil {
		n.modals = ui.NewModals()
	}
	return n
}

// LoadFolder makes folderPath current and fetches its listing. trigger names
// the sidebar element that started the load and becomes the active one; an
// empty trigger leaves the active element alone. While the fetch runs the
// previous content stays visible with the loading flag set. Only the most
// recently issued load may change the content.
func (n *Navigator) LoadFolder(ctx context.Context, folderPath, trigger string) error {
	folderPath = cleanPath(folderPath)

	n.mu.Lock()
	n.seq++
	seq := n.seq
	if trigger != "" {
		n.active = trigger
	}
	n.path = folderPath
	n.state = StateLoading
	n.loading = true
	n.mu.Unlock()

	listing, err := n.lister.FolderContents(ctx, folderPath)

	n.mu.Lock()
	if seq != n.seq {
		n.mu.Unlock()
		n.metrics.FolderLoad("superseded")
		n.log.Debug().Str("path", folderPath).Uint64("seq", seq).Msg("discarding stale folder listing")
		return ErrSuperseded
	}
	n.loading = false
	if err != nil {
		n.state = StateError
		n.content = errorContent
		n.mu.Unlock()

		n.metrics.FolderLoad("error")
		n.log.Warn().Err(err).Str("path", folderPath).Msg("failed to load folder contents")
		n.notifier.Show("❌ Error loading folder: "+backend.Reason(err), ui.SeverityError)
		return fmt.Errorf("load folder %q: %w", folderPath, err)
	}
	n.state = StateIdle
	n.content = RenderListing(listing)
	n.mu.Unlock()

	n.metrics.FolderLoad("ok")
	return nil
}

// NavigateTo loads a sub-path without touching the active sidebar element.
// Browser history is not involved.
func (n *Navigator) NavigateTo(ctx context.Context, folderPath string) error {
	return n.LoadFolder(ctx, folderPath, "")
}

func (n *Navigator) View() View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return View{
		Path:       n.path,
		Breadcrumb: n.breadcrumb(n.path),
		State:      n.state,
		Loading:    n.loading,
		Active:     n.active,
		Content:    n.content,
		Seq:        n.seq,
	}
}

func (n *Navigator) Modals() *ui.Modals {
	return n.modals
}

func (n *Navigator) breadcrumb(p string) string {
	return "📍 Current Path: " + n.root + "/" + p
}

func cleanPath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return p
}
