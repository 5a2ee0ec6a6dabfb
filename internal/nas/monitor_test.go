package nas

import (
	"math"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPUPercentFromDeltas(t *testing.T) {
	m := NewMonitor("/", zerolog.Nop())

	assert.Equal(t, 0.0, m.cpuPercentFrom(1000, 800))
	assert.InDelta(t, 25.0, m.cpuPercentFrom(1100, 875), 0.001)
	assert.Equal(t, 0.0, m.cpuPercentFrom(1100, 875))
	assert.InDelta(t, 100.0, m.cpuPercentFrom(1200, 875), 0.001)
}

func TestSnapshotBeforeFirstSample(t *testing.T) {
	m := NewMonitor("/", zerolog.Nop())

	_, err := m.Snapshot()
	require.ErrorIs(t, err, ErrNoSample)
}

func TestLongestMountPrefix(t *testing.T) {
	mounts := []string{"/", "/media", "/media/nas", "/media/nas2", " "}

	assert.Equal(t, "/media/nas", longestMountPrefix("/media/nas/Photos", mounts))
	assert.Equal(t, "/media/nas", longestMountPrefix("/media/nas", mounts))
	assert.Equal(t, "/media", longestMountPrefix("/media/nasty", mounts))
	assert.Equal(t, "/", longestMountPrefix("/srv", mounts))
	assert.Equal(t, "", longestMountPrefix("/srv", nil))
}

func TestDiskTypeLabel(t *testing.T) {
	assert.Equal(t, "NVMe", diskTypeLabel("ssd", "nvme"))
	assert.Equal(t, "SSD", diskTypeLabel("ssd", "scsi"))
	assert.Equal(t, "SCSI", diskTypeLabel("unknown", "scsi"))
	assert.Equal(t, "", diskTypeLabel("", "unknown"))
}

func TestPickHostIP(t *testing.T) {
	ips := []net.IP{
		net.ParseIP("fe80::1"),
		net.ParseIP("10.0.0.4"),
		net.ParseIP("192.168.7.2"),
	}
	assert.Equal(t, "192.168.7.2", pickHostIP(ips))

	ips = append(ips, net.ParseIP("192.168.1.20"))
	assert.Equal(t, "192.168.1.20", pickHostIP(ips))

	assert.Equal(t, "", pickHostIP([]net.IP{net.ParseIP("::1")}))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, round(1.2345, 2))
	assert.Equal(t, 12.3, round(12.25, 1))
}

func TestPickCPUTemperature(t *testing.T) {
	assert.Nil(t, pickCPUTemperature(nil))

	temps := []host.TemperatureStat{
		{SensorKey: "nvme_composite", Temperature: 61},
		{SensorKey: "coretemp_core_0", Temperature: 48.04},
		{SensorKey: "coretemp_package_id_0", Temperature: 52.26},
		{SensorKey: "acpitz", Temperature: math.NaN()},
	}
	got := pickCPUTemperature(temps)
	require.NotNil(t, got)
	assert.Equal(t, 52.3, *got)
}
