package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"dnsmonitor/internal/app"
	"dnsmonitor/internal/application/monitor"
	"dnsmonitor/internal/domain/dnsrecord"
	"dnsmonitor/pkg/zonefile"

	"github.com/spf13/cobra"
)

func newCmdSnapshots() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snapshot", "snap"},
		Short:   "Inspect the snapshot history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newCmdSnapshotsList())
	cmd.AddCommand(newCmdSnapshotsShow())
	cmd.AddCommand(newCmdSnapshotsCompare())
	cmd.AddCommand(newCmdSnapshotsZone())
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid snapshot id %q", arg)
	}
	return id, nil
}

func newCmdSnapshotsList() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			perPage, _ := cmd.Flags().GetInt("per-page")
			asJSON, _ := cmd.Flags().GetBool("json")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				snaps, err := a.Store.List(ctx, page, perPage)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), snaps)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCREATED\tADDED\tREMOVED\tMODIFIED\tTOTAL")
				for _, s := range snaps {
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\n",
						s.ID, s.CreatedAt.Format(time.RFC3339), s.Additions, s.Removals, s.Modifications, s.Total)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("per-page", 20, "Page size")
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}

func newCmdSnapshotsShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the records of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				snap, err := a.Store.Get(ctx, id)
				if err != nil {
					return err
				}
				set, err := a.Store.RecordsOf(ctx, id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), map[string]any{
						"snapshot": snap,
						"records":  monitor.RecordViews(set.Records),
						"skipped":  set.Skipped,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "snapshot %d taken %s\n", snap.ID, snap.CreatedAt.Format(time.RFC3339))
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TYPE\tHOST\tVALUE")
				for _, r := range dnsrecord.Sort(set.Records) {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.Type(), r.Header().Host, dnsrecord.Encode(r))
				}
				for _, s := range set.Skipped {
					fmt.Fprintf(w, "%s\t%s\t(skipped: %s)\n", s.Type, s.Host, s.Reason)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}

func newCmdSnapshotsCompare() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id>",
		Short: "Compare a snapshot with its predecessor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				cmp, err := a.Monitor.Compare(ctx, id)
				if err != nil {
					return err
				}
				var previous any
				if cmp.Previous != nil {
					previous = cmp.Previous.ID
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"current":  cmp.Current.ID,
					"previous": previous,
					"summary":  cmp.Changes.Summary(),
					"changes":  monitor.NewChangeDetail(cmp.Changes),
				})
			})
		},
	}
}

func newCmdSnapshotsZone() *cobra.Command {
	return &cobra.Command{
		Use:   "zone <id>",
		Short: "Export a snapshot as a zone file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				snap, err := a.Store.Get(ctx, id)
				if err != nil {
					return err
				}
				set, err := a.Store.RecordsOf(ctx, id)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), zonefile.Generate(zonefile.Header{
					Origin:     a.Monitor.Domain(),
					SnapshotID: snap.ID,
					CreatedAt:  snap.CreatedAt,
				}, set.Records))
				return err
			})
		},
	}
}
