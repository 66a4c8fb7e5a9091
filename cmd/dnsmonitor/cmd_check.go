package main

import (
	"context"
	"errors"
	"fmt"

	"dnsmonitor/internal/app"
	"dnsmonitor/internal/application/monitor"

	"github.com/spf13/cobra"
)

func newCmdCheck() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one check and store a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Monitor.Check(ctx)
				if result == nil {
					return err
				}
				if asJSON {
					if werr := writeJSON(cmd.OutOrStdout(), result); werr != nil {
						return werr
					}
				} else {
					printCheck(cmd, result)
				}
				if errors.Is(err, monitor.ErrSnapshotNotSaved) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().Bool("json", false, "Print the check result as JSON")
	return cmd
}

func printCheck(cmd *cobra.Command, r *monitor.CheckResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "domain:   %s\n", r.Domain)
	fmt.Fprintf(out, "records:  %d\n", r.RecordCount)
	switch {
	case r.Baseline:
		fmt.Fprintln(out, "status:   baseline")
	case r.ChangesDetected:
		fmt.Fprintf(out, "status:   changed (+%d -%d ~%d)\n", r.Summary.Additions, r.Summary.Removals, r.Summary.Modifications)
	default:
		fmt.Fprintln(out, "status:   unchanged")
	}
	if r.Saved {
		fmt.Fprintf(out, "snapshot: %d\n", r.SnapshotID)
	} else {
		fmt.Fprintln(out, "snapshot: not saved")
	}
	if r.Changes == nil {
		return
	}
	for _, rec := range r.Changes.Added {
		fmt.Fprintf(out, "  + %v\n", rec)
	}
	for _, rec := range r.Changes.Removed {
		fmt.Fprintf(out, "  - %v\n", rec)
	}
	for _, m := range r.Changes.Modified {
		fmt.Fprintf(out, "  ~ %v -> %v\n", m.Previous, m.Current)
	}
}
