package nas

import (
	"net"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/tomek7667/nasdash/internal/domain"
)

func sampleHost(log zerolog.Logger) domain.HostInfo {
	var h domain.HostInfo
	ip, err := shareHostIP()
	if err != nil {
		log.Debug().Err(err).Msg("host ip unavailable")
	}
	h.IP = ip
	if pids, err := process.Pids(); err == nil {
		h.Processes = len(pids)
	} else {
		log.Debug().Err(err).Msg("process count unavailable")
	}
	return h
}

// shareHostIP picks the address LAN clients most likely use to reach the
// share: home-router ranges first, then any private range, then anything.
func shareHostIP() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipn, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip := ipn.IP.To4(); ip != nil && !ip.IsLoopback() && !ip.IsLinkLocalUnicast() {
				ips = append(ips, ip)
			}
		}
	}
	return pickHostIP(ips), nil
}

func pickHostIP(ips []net.IP) string {
	best, bestRank := "", -1
	for _, ip := range ips {
		if r := ipRank(ip); r > bestRank {
			best, bestRank = ip.String(), r
		}
	}
	return best
}

func ipRank(ip net.IP) int {
	ip = ip.To4()
	switch {
	case ip == nil:
		return -1
	case ip[0] == 192 && ip[1] == 168 && ip[2] == 1:
		return 3
	case ip[0] == 192 && ip[1] == 168:
		return 2
	case ip.IsPrivate():
		return 1
	default:
		return 0
	}
}
