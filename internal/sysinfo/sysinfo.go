package sysinfo

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo describes the container host as seen by the launcher
type HostInfo struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Architecture  string `json:"architecture"`
	CPUModel      string `json:"cpu_model"`
	CPUThreads    int    `json:"cpu_threads"`
	RAMTotalBytes uint64 `json:"ram_total_bytes"`
	RAMFreeBytes  uint64 `json:"ram_free_bytes"`
}

// Collect gathers host diagnostics. Everything is best effort: a missing
// /proc or restricted container still yields a usable struct.
func Collect() *HostInfo {
	info := &HostInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		CPUModel:     "Unknown",
		CPUThreads:   runtime.NumCPU(),
	}

	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}

	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		if cpus[0].ModelName != "" {
			info.CPUModel = cpus[0].ModelName
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.RAMTotalBytes = vm.Total
		info.RAMFreeBytes = vm.Available
	}

	return info
}

// FormatRAM formats a byte count as GB for display
func FormatRAM(bytes uint64) string {
	if bytes == 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%.2f GB", float64(bytes)/(1024*1024*1024))
}
