package main

import (
	"cam-guard/domain"
	"cam-guard/internal"
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// printSummary writes the effective settings at startup. The token is never printed.
func printSummary(w io.Writer, config internal.Config, channels domain.MonitoredChannels) {
	banner := color.New(color.BgBlack, color.FgGreen).Render("  ====== Camera guard ======  ")
	_, _ = fmt.Fprintln(w, banner)

	metricsPort := "disabled"
	if config.MetricsPort != nil {
		metricsPort = fmt.Sprint(*config.MetricsPort)
	}
	exemptRoles := lo.Ternary(len(config.ExemptRoleNames()) == 0, "-", strings.Join(config.ExemptRoleNames(), ", "))
	channelIDs := lo.Map(channels.IDs(), func(id domain.ChannelID, _ int) string { return string(id) })

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Setting", "Value"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk([][]string{
		{"Monitored channels", strings.Join(channelIDs, ", ")},
		{"Grace period", config.GracePeriod.String()},
		{"Exempt roles", exemptRoles},
		{"Disconnect reason", config.Reason()},
		{"Liveness port", fmt.Sprint(config.Port)},
		{"Metrics port", metricsPort},
		{"Log level", config.LogLevel},
	})
	table.Render()
}
