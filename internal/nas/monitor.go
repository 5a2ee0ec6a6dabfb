package nas

import (
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomek7667/nasdash/internal/domain"
)

const (
	DefaultSampleInterval = 2 * time.Second

	hardwareMetaTTL = 30 * time.Second
	hostInfoTTL     = 30 * time.Second
	bytesPerGB      = 1 << 30
)

var ErrNoSample = errors.New("no diagnostics sample yet")

// Monitor samples CPU, memory and share disk usage on a ticker and keeps the
// latest snapshot for the diagnostics endpoint.
type Monitor struct {
	shareRoot string
	log       zerolog.Logger

	mu       sync.RWMutex
	snapshot domain.Diagnostics
	sampled  bool
	lastErr  error

	// CPU percent is derived from deltas between successive samples.
	prevTotal   float64
	prevIdle    float64
	havePrevCPU bool

	diskMeta          map[string]diskMeta
	diskMetaUpdatedAt time.Time

	host          domain.HostInfo
	hostUpdatedAt time.Time
}

func NewMonitor(shareRoot string, log zerolog.Logger) *Monitor {
	return &Monitor{shareRoot: shareRoot, log: log}
}

func (m *Monitor) Start(stop <-chan struct{}, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	m.update()
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.update()
			}
		}
	}()
}

// Snapshot returns the latest complete sample. Until one sample has
// succeeded it returns the sampling error.
func (m *Monitor) Snapshot() (domain.Diagnostics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.sampled {
		if m.lastErr != nil {
			return domain.Diagnostics{}, m.lastErr
		}
		return domain.Diagnostics{}, ErrNoSample
	}
	snap := m.snapshot
	if snap.CPU.TemperatureC != nil {
		t := *snap.CPU.TemperatureC
		snap.CPU.TemperatureC = &t
	}
	if snap.Host != nil {
		h := *snap.Host
		snap.Host = &h
	}
	return snap, nil
}

func (m *Monitor) update() {
	now := time.Now()
	var errs []string

	cpuPercent, err := m.sampleCPUPercent()
	if err != nil {
		errs = append(errs, "cpu: "+err.Error())
	}
	cpuTemp, err := sampleCPUTemperature()
	if err != nil {
		m.log.Debug().Err(err).Msg("cpu temperature unavailable")
	}
	memUsage, err := sampleMemory()
	if err != nil {
		errs = append(errs, "memory: "+err.Error())
	}
	diskUsage, err := m.sampleShareDisk()
	if err != nil {
		errs = append(errs, "disk: "+err.Error())
	}

	if m.hostUpdatedAt.IsZero() || now.Sub(m.hostUpdatedAt) >= hostInfoTTL {
		m.host = sampleHost(m.log)
		m.hostUpdatedAt = now
	}
	host := m.host

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(errs) > 0 {
		m.lastErr = errors.New(strings.Join(errs, "; "))
		m.log.Warn().Err(m.lastErr).Msg("diagnostics sample incomplete")
		return
	}
	m.lastErr = nil
	m.sampled = true
	m.snapshot = domain.Diagnostics{
		CPU:    domain.CPUUsage{Usage: round(cpuPercent, 1), TemperatureC: cpuTemp},
		Memory: memUsage,
		Disk:   diskUsage,
		Host:   &host,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func toGB(b uint64) float64 {
	return round(float64(b)/bytesPerGB, 2)
}
