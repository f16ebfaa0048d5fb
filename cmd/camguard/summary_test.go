package main

import (
	"bytes"
	"cam-guard/domain"
	"cam-guard/internal"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPrintSummary(t *testing.T) {
	req := require.New(t)
	metricsPort := 9100
	config := internal.Config{
		DiscordToken:        "super-secret-token",
		Port:                3000,
		MonitoredChannelIDs: "C2,C1",
		GracePeriod:         15 * time.Second,
		ExemptRoles:         "Streamer",
		LogLevel:            "INFO",
		MetricsPort:         &metricsPort,
	}

	var out bytes.Buffer
	printSummary(&out, config, domain.NewMonitoredChannels(config.ChannelIDs()...))

	summary := out.String()
	req.Contains(summary, "C1, C2")
	req.Contains(summary, "15s")
	req.Contains(summary, "Streamer")
	req.Contains(summary, "9100")
	req.NotContains(summary, "super-secret-token")
}
