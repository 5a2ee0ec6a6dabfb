// Package stats keeps the CPU, RAM and disk labels of the dashboard header in
// sync with the NAS backend diagnostics.
package stats

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/tomek7667/nasdash/internal/domain"
)

const DefaultInterval = 30 * time.Second

type Source interface {
	Diagnostics(ctx context.Context) (domain.Diagnostics, error)
}

type Labels struct {
	CPU       string    `json:"cpu"`
	Memory    string    `json:"memory"`
	Disk      string    `json:"disk"`
	UpdatedAt time.Time `json:"updatedAt"`
	Updated   string    `json:"updated"`
}

type Poller struct {
	src      Source
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	labels Labels
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Poller) { p.log = l }
}

func New(src Source, opts ...Option) *Poller {
	p := &Poller{
		src:      src,
		interval: DefaultInterval,
		log:      zerolog.Nop(),
		now:      time.Now,
		labels: Labels{
			CPU:    "CPU: --",
			Memory: "RAM: --",
			Disk:   "Disk: --",
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls once right away and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	_ = p.Poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.Poll(ctx)
		}
	}
}

// Poll fetches one diagnostics snapshot. On failure every label keeps its
// name and shows an error marker instead of a value.
func (p *Poller) Poll(ctx context.Context) error {
	d, err := p.src.Diagnostics(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("failed to fetch system stats")
		p.mu.Lock()
		p.labels.CPU = degrade(p.labels.CPU)
		p.labels.Memory = degrade(p.labels.Memory)
		p.labels.Disk = degrade(p.labels.Disk)
		p.mu.Unlock()
		return fmt.Errorf("poll stats: %w", err)
	}

	cpu := fmt.Sprintf("CPU: %s%%", num(d.CPU.Usage))
	mem := fmt.Sprintf("RAM: %s/%s GB (%s%%)", num(d.Memory.Used), num(d.Memory.Total), num(d.Memory.Percent))
	disk := fmt.Sprintf("Disk: %s/%s GB (%s%%)", num(d.Disk.Used), num(d.Disk.Total), num(d.Disk.Percent))

	p.mu.Lock()
	p.labels.CPU = cpu
	p.labels.Memory = mem
	p.labels.Disk = disk
	p.labels.UpdatedAt = p.now()
	p.mu.Unlock()
	return nil
}

func (p *Poller) Labels() Labels {
	p.mu.RLock()
	l := p.labels
	p.mu.RUnlock()
	if !l.UpdatedAt.IsZero() {
		l.Updated = "updated " + humanize.RelTime(l.UpdatedAt, p.now(), "ago", "from now")
	}
	return l
}

func degrade(label string) string {
	name, _, _ := strings.Cut(label, ":")
	return name + ": Error"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
