package main

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Metrics holds system and application metrics
type Metrics struct {
	Timestamp          time.Time `json:"timestamp"`
	MemoryUsageMB      float64   `json:"memory_usage_mb"`
	MemoryUsagePercent float64   `json:"memory_usage_percent"`
	CPUUsagePercent    float64   `json:"cpu_usage_percent"`
	DiskUsagePercent   float64   `json:"disk_usage_percent"`
	GoroutineCount     int       `json:"goroutine_count"`
	UptimeHours        float64   `json:"uptime_hours"`

	CacheSize     int `json:"cache_size"`
	WSClients     int `json:"ws_clients"`
	DBConnections int `json:"db_connections"`
}

// collectMetrics gathers system metrics plus the app's own counters
func (a *App) collectMetrics() Metrics {
	metrics := Metrics{
		Timestamp:      time.Now(),
		GoroutineCount: runtime.NumGoroutine(),
		UptimeHours:    time.Since(a.started).Hours(),
		CacheSize:      a.cache.Len(),
		WSClients:      a.hub.ClientCount(),
		DBConnections:  a.store.Stats().OpenConnections,
	}

	collectMemoryMetrics(&metrics)
	collectCPUMetrics(&metrics)
	collectDiskMetrics(&metrics)
	return metrics
}

func collectMemoryMetrics(metrics *Metrics) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	metrics.MemoryUsageMB = float64(memStats.Alloc) / 1024 / 1024

	if vmem, err := mem.VirtualMemory(); err == nil {
		metrics.MemoryUsagePercent = vmem.UsedPercent
	}
}

// collectCPUMetrics reports usage since the previous call, so it never blocks
func collectCPUMetrics(metrics *Metrics) {
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		metrics.CPUUsagePercent = cpuPercent[0]
	}
}

func collectDiskMetrics(metrics *Metrics) {
	if usage, err := disk.Usage("."); err == nil {
		metrics.DiskUsagePercent = usage.UsedPercent
	}
}
