package domain

type Diagnostics struct {
	CPU    CPUUsage    `json:"cpu"`
	Memory MemoryUsage `json:"memory"`
	Disk   DiskUsage   `json:"disk"`
	Host   *HostInfo   `json:"host,omitempty"`
}

type CPUUsage struct {
	Usage        float64  `json:"usage"`
	TemperatureC *float64 `json:"temperatureC,omitempty"`
}

// MemoryUsage values are in GB.
type MemoryUsage struct {
	Used    float64 `json:"used"`
	Total   float64 `json:"total"`
	Percent float64 `json:"percent"`
}

// DiskUsage values are in GB and describe the filesystem holding the share.
type DiskUsage struct {
	Used      float64 `json:"used"`
	Total     float64 `json:"total"`
	Percent   float64 `json:"percent"`
	Model     string  `json:"model,omitempty"`
	DriveType string  `json:"driveType,omitempty"`
}

type HostInfo struct {
	IP        string `json:"ip"`
	Processes int    `json:"processes"`
}

const RestartStatusSuccess = "success"

type RestartResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (r RestartResult) OK() bool {
	return r.Status == RestartStatusSuccess
}
