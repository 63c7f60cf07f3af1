package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server liveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := apiClient.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			switch flagFmt {
			case "quiet":
				fmt.Println(h.Status)
			case "table":
				formatTable(
					[]string{"STATUS", "VERSION", "DATABASE", "FEED_CLIENTS", "UPTIME"},
					[][]string{{h.Status, h.Version, h.Database, fmt.Sprint(h.FeedClients), fmt.Sprintf("%.0fs", h.UptimeSeconds)}},
				)
			default:
				return formatJSON(h)
			}
			return nil
		},
	}
}
