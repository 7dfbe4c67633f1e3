package config

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

const (
	minCPUBytes = 64 << 20
	maxCPUBytes = 1 << 30
	minGPUBytes = 64 << 20
	maxGPUBytes = 512 << 20
)

// totalMemory is replaced in tests.
var totalMemory = func() (uint64, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return v.Total, nil
}

// Budgets returns the CPU and GPU cache budgets. Zero settings take a
// sixteenth and a thirty-second of physical memory, clamped to sane
// bounds.
func (c CacheConfig) Budgets() (cpu, gpu int64, err error) {
	cpu, gpu = c.CPUBytes, c.GPUBytes
	if cpu > 0 && gpu > 0 {
		return cpu, gpu, nil
	}
	total, err := totalMemory()
	if err != nil {
		return 0, 0, fmt.Errorf("reading system memory: %w", err)
	}
	if cpu <= 0 {
		cpu = clampBytes(int64(total/16), minCPUBytes, maxCPUBytes)
	}
	if gpu <= 0 {
		gpu = clampBytes(int64(total/32), minGPUBytes, maxGPUBytes)
	}
	return cpu, gpu, nil
}

func clampBytes(v, lo, hi int64) int64 {
	return max(lo, min(v, hi))
}
