package utils

import (
	"github.com/charmbracelet/log"
	"github.com/shirou/gopsutil/v4/cpu"
)

// GetCPUUsage returns CPU usage as a percentage since the previous call.
// It does not block, so it is safe to call from a metrics scrape.
func GetCPUUsage() float64 {
	percentage, err := cpu.Percent(0, false)
	if err != nil {
		log.Warn("reading cpu usage", "err", err)
		return 0
	}
	if len(percentage) > 0 {
		return percentage[0]
	}
	return 0
}
