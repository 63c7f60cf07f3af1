package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/client"
)

var auditView = view[client.AuditEntry]{
	headers: []string{"ID", "TIMESTAMP", "ACTION", "ENTITY", "ENTITY_ID", "ACTOR"},
	row: func(e *client.AuditEntry) []string {
		return []string{e.ID, e.Timestamp.Format(time.RFC3339), e.Action, e.EntityName, e.EntityID, deref(e.ActorEmail)}
	},
}

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the audit log",
	}
	cmd.AddCommand(auditListCmd())
	return cmd
}

func auditListCmd() *cobra.Command {
	var p pageFlags
	var opts client.AuditQueryOptions
	var since, until string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := p.validate(); err != nil {
				return err
			}
			var err error
			if opts.TimestampStart, err = parseTime("since", since); err != nil {
				return err
			}
			if opts.TimestampEnd, err = parseTime("until", until); err != nil {
				return err
			}
			opts.Limit, opts.Offset, opts.OrderBy = p.limit, p.offset, p.orderBy

			page, err := apiClient.Audit.List(cmd.Context(), &opts)
			if err != nil {
				return fmt.Errorf("list audit logs: %w", err)
			}
			return outputList(auditView, page.Rows, page.Count)
		},
	}
	p.register(cmd)
	cmd.Flags().StringVar(&opts.Action, "action", "", "Filter by action: create|update|delete")
	cmd.Flags().StringVar(&opts.EntityID, "entity-id", "", "Filter by entity id")
	cmd.Flags().StringVar(&opts.ActorEmail, "actor-email", "", "Filter by actor email")
	cmd.Flags().StringSliceVar(&opts.EntityNames, "entity", nil, "Filter by entity names, e.g. item,user")
	cmd.Flags().StringVar(&since, "since", "", "Only entries at or after this RFC3339 time")
	cmd.Flags().StringVar(&until, "until", "", "Only entries at or before this RFC3339 time")
	return cmd
}

func parseTime(flag, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &t, nil
}
