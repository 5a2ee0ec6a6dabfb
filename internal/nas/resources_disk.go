package nas

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/tomek7667/nasdash/internal/domain"
)

type diskMeta struct {
	DriveType string
	Model     string
}

func (m *Monitor) sampleShareDisk() (domain.DiskUsage, error) {
	usage, err := disk.Usage(m.shareRoot)
	if err != nil {
		return domain.DiskUsage{}, err
	}
	out := domain.DiskUsage{
		Used:  toGB(usage.Used),
		Total: toGB(usage.Total),
	}
	if usage.Total > 0 {
		out.Percent = round(float64(usage.Used)/float64(usage.Total)*100, 1)
	}

	// Drive details are best effort; containers and VMs often hide them.
	if mount, err := shareMountpoint(m.shareRoot); err == nil {
		if meta, err := m.getDiskMeta(); err == nil {
			if dm, ok := meta[mount]; ok {
				out.Model = dm.Model
				out.DriveType = dm.DriveType
			}
		} else {
			m.log.Debug().Err(err).Msg("disk metadata unavailable")
		}
	}
	return out, nil
}

func shareMountpoint(root string) (string, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return "", err
	}
	mounts := make([]string, 0, len(parts))
	for _, p := range parts {
		mounts = append(mounts, p.Mountpoint)
	}
	return longestMountPrefix(root, mounts), nil
}

func longestMountPrefix(path string, mounts []string) string {
	path = filepath.Clean(path)
	best := ""
	for _, mp := range mounts {
		mp = strings.TrimSpace(mp)
		if mp == "" {
			continue
		}
		mp = filepath.Clean(mp)
		inside := path == mp ||
			mp == string(filepath.Separator) ||
			strings.HasPrefix(path, mp+string(filepath.Separator))
		if inside && len(mp) > len(best) {
			best = mp
		}
	}
	return best
}

func (m *Monitor) getDiskMeta() (map[string]diskMeta, error) {
	if m.diskMeta != nil && time.Since(m.diskMetaUpdatedAt) < hardwareMetaTTL {
		return m.diskMeta, nil
	}

	info, err := ghw.Block()
	if err != nil {
		return m.diskMeta, err
	}

	meta := make(map[string]diskMeta)
	for _, d := range info.Disks {
		model := strings.Join(strings.Fields(d.Vendor+" "+d.Model), " ")
		driveType := diskTypeLabel(d.DriveType.String(), d.StorageController.String())
		for _, p := range d.Partitions {
			if p == nil || p.MountPoint == "" {
				continue
			}
			meta[p.MountPoint] = diskMeta{DriveType: driveType, Model: model}
		}
	}

	m.diskMeta = meta
	m.diskMetaUpdatedAt = time.Now()
	return meta, nil
}

func diskTypeLabel(driveType, controller string) string {
	controller = strings.TrimSpace(controller)
	if strings.EqualFold(controller, "nvme") {
		return "NVMe"
	}
	driveType = strings.TrimSpace(driveType)
	if driveType == "" || strings.EqualFold(driveType, "unknown") {
		if controller != "" && !strings.EqualFold(controller, "unknown") {
			return strings.ToUpper(controller)
		}
		return ""
	}
	return strings.ToUpper(driveType)
}
