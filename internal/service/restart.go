// Package service drives the restart button of the dashboard.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomek7667/nasdash/internal/backend"
	"github.com/tomek7667/nasdash/internal/domain"
	"github.com/tomek7667/nasdash/internal/ui"
)

var ErrBusy = errors.New("restart already in progress")

const (
	DefaultLabel = "🔄 Restart Samba"
	BusyLabel    = "🔄 Restarting..."
)

type Backend interface {
	RestartSamba(ctx context.Context) (domain.RestartResult, error)
}

type Notifier interface {
	Show(message string, severity ui.Severity) ui.Notification
}

// Trigger is the state of the button that starts a restart.
type Trigger struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

type Restarter struct {
	backend  Backend
	notifier Notifier
	label    string
	log      zerolog.Logger

	mu      sync.Mutex
	trigger Trigger
}

type Option func(*Restarter)

func WithLabel(label string) Option {
	return func(r *Restarter) {
		if label != "" {
			r.label = label
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Restarter) { r.log = l }
}

func New(b Backend, n Notifier, opts ...Option) *Restarter {
	r := &Restarter{
		backend:  b,
		notifier: n,
		label:    DefaultLabel,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.trigger = Trigger{Label: r.label}
	return r
}

func (r *Restarter) Trigger() Trigger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trigger
}

// Restart sends one restart command and reports the outcome as a
// notification. The trigger is disabled for the duration of the call and
// always restored afterwards.
func (r *Restarter) Restart(ctx context.Context) error {
	r.mu.Lock()
	if r.trigger.Disabled {
		r.mu.Unlock()
		return ErrBusy
	}
	r.trigger = Trigger{Label: BusyLabel, Disabled: true}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.trigger = Trigger{Label: r.label}
		r.mu.Unlock()
	}()

	_, err := r.backend.RestartSamba(ctx)
	if err == nil {
		r.log.Info().Msg("samba service restarted")
		r.notifier.Show("✅ Samba service restarted successfully!", ui.SeveritySuccess)
		return nil
	}

	var appErr *backend.ApplicationError
	if errors.As(err, &appErr) {
		r.log.Warn().Str("message", appErr.Message).Msg("samba restart rejected")
		r.notifier.Show("❌ Failed to restart Samba: "+appErr.Message, ui.SeverityError)
	} else {
		r.log.Error().Err(err).Msg("error restarting samba")
		r.notifier.Show("❌ Error restarting Samba service", ui.SeverityError)
	}
	return fmt.Errorf("restart samba: %w", err)
}
