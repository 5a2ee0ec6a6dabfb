package nas

import (
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/tomek7667/nasdash/internal/domain"
)

func sampleMemory() (domain.MemoryUsage, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return domain.MemoryUsage{}, err
	}
	if vm == nil {
		return domain.MemoryUsage{}, nil
	}
	return domain.MemoryUsage{
		Used:    toGB(vm.Used),
		Total:   toGB(vm.Total),
		Percent: round(vm.UsedPercent, 1),
	}, nil
}
