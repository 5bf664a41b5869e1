package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 49650
	defaultPortEnd   = 49660

	PortStartEnvVar = "ANEMONE_PORT_START"
	PortEndEnvVar   = "ANEMONE_PORT_END"
)

// getPortRange returns the inclusive TCP port range, clamped to [1024, 65535].
func getPortRange() (int, int) {
	start := envInt(PortStartEnvVar, defaultPortStart)
	end := envInt(PortEndEnvVar, defaultPortEnd)
	if end < start {
		start, end = end, start
	}
	if start < 1024 {
		start = 1024
	}
	if end > 65535 {
		end = 65535
	}
	return start, end
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
