package nas

import (
	"math"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

func (m *Monitor) sampleCPUPercent() (float64, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return 0, err
	}
	if len(times) == 0 {
		return 0, nil
	}

	t := times[0]
	total := t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal + t.Guest + t.GuestNice
	idle := t.Idle + t.Iowait
	return m.cpuPercentFrom(total, idle), nil
}

// cpuPercentFrom turns cumulative CPU times into a busy percentage since the
// previous call. The first call only primes the counters.
func (m *Monitor) cpuPercentFrom(total, idle float64) float64 {
	if !m.havePrevCPU {
		m.prevTotal, m.prevIdle = total, idle
		m.havePrevCPU = true
		return 0
	}

	totalDelta := total - m.prevTotal
	idleDelta := idle - m.prevIdle
	m.prevTotal, m.prevIdle = total, idle

	if totalDelta <= 0 {
		return 0
	}
	usage := (totalDelta - idleDelta) / totalDelta * 100
	return min(max(usage, 0), 100)
}

func sampleCPUTemperature() (*float64, error) {
	temps, err := host.SensorsTemperatures()
	if len(temps) == 0 {
		return nil, err
	}
	// partial sensor errors are common; use what was read
	return pickCPUTemperature(temps), nil
}

// pickCPUTemperature prefers package and die sensors of known CPU drivers.
func pickCPUTemperature(temps []host.TemperatureStat) *float64 {
	var best *float64
	bestScore, bestTemp := -1, -1.0
	for _, t := range temps {
		temp := t.Temperature
		if temp <= 0 || math.IsNaN(temp) || math.IsInf(temp, 0) {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(t.SensorKey))
		score := 0
		switch {
		case strings.Contains(key, "package"):
			score += 50
		case strings.Contains(key, "tctl"), strings.Contains(key, "tdie"):
			score += 40
		}
		if strings.Contains(key, "coretemp") || strings.Contains(key, "k10temp") {
			score += 20
		}
		if strings.Contains(key, "cpu") {
			score += 10
		}

		if score > bestScore || (score == bestScore && temp > bestTemp) {
			v := round(temp, 1)
			best, bestScore, bestTemp = &v, score, temp
		}
	}
	return best
}
