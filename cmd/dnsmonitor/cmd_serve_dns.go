package main

import (
	"context"
	"fmt"

	dnsserver "dnsmonitor/internal/adapters/dns"
	"dnsmonitor/internal/app"
	"dnsmonitor/internal/domain/dnsrecord"

	"github.com/spf13/cobra"
)

func newCmdServeDNS() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-dns",
		Short: "Answer DNS queries from a stored snapshot",
		Long:  "Serve the records of a snapshot authoritatively over UDP. Without --snapshot the latest snapshot is served and follows new snapshots as they are stored.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			id, _ := cmd.Flags().GetInt64("snapshot")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				source := dnsserver.RecordSourceFunc(func(ctx context.Context) ([]dnsrecord.Record, error) {
					snapID := id
					if snapID == 0 {
						latest, err := a.Store.Latest(ctx)
						if err != nil {
							return nil, err
						}
						snapID = latest.ID
					}
					set, err := a.Store.RecordsOf(ctx, snapID)
					if err != nil {
						return nil, fmt.Errorf("load snapshot %d: %w", snapID, err)
					}
					return set.Records, nil
				})
				return dnsserver.NewServer(source, addr, a.Monitor.Domain()).Start()
			})
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:5353", "UDP listen address")
	cmd.Flags().Int64("snapshot", 0, "Snapshot id to serve (default latest)")
	return cmd
}
