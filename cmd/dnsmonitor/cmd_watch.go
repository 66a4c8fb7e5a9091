package main

import (
	"encoding/json"
	"fmt"
	"io"

	"dnsmonitor/internal/adapters/api"
	"dnsmonitor/internal/adapters/wsclient"
	"dnsmonitor/internal/domain/snapshot"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// watchEvent is the part of an api.Event the watch command prints. Changed
// records are left out because they decode to interface values.
type watchEvent struct {
	Event  string `json:"event"`
	Domain string `json:"domain"`
	Result *struct {
		RecordCount     int                    `json:"record_count"`
		Summary         snapshot.ChangeSummary `json:"summary"`
		ChangesDetected bool                   `json:"changes_detected"`
		Baseline        bool                   `json:"baseline"`
		Saved           bool                   `json:"saved"`
		SnapshotID      int64                  `json:"snapshot_id"`
	} `json:"result"`
}

func newCmdWatch() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the check events of a running server",
		Long:  "Connect to the websocket feed of a dnsmonitor server and print its events. The connection is retried with backoff until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			raw, _ := cmd.Flags().GetBool("json")

			url, err := wsclient.FeedURL(server)
			if err != nil {
				return fmt.Errorf("invalid server %q: %w", server, err)
			}
			out := cmd.OutOrStdout()
			return wsclient.NewWatcher(url).Run(cmd.Context(), func(msg []byte) error {
				if raw {
					_, err := fmt.Fprintln(out, string(msg))
					return err
				}
				var ev watchEvent
				if err := json.Unmarshal(msg, &ev); err != nil {
					log.Warn().Err(err).Msg("ignoring malformed event")
					return nil
				}
				printEvent(out, ev)
				return nil
			})
		},
	}
	cmd.Flags().String("server", "http://localhost:8080", "Base URL of the dnsmonitor server")
	cmd.Flags().Bool("json", false, "Print events as received")
	return cmd
}

func printEvent(out io.Writer, ev watchEvent) {
	if ev.Result == nil {
		fmt.Fprintf(out, "%s %s\n", ev.Event, ev.Domain)
		return
	}
	r := ev.Result
	switch ev.Event {
	case api.EventChangesDetected:
		fmt.Fprintf(out, "%s %s +%d -%d ~%d\n", ev.Event, ev.Domain, r.Summary.Additions, r.Summary.Removals, r.Summary.Modifications)
	default:
		status := "unchanged"
		if r.Baseline {
			status = "baseline"
		} else if r.ChangesDetected {
			status = "changed"
		}
		fmt.Fprintf(out, "%s %s %s records=%d snapshot=%d\n", ev.Event, ev.Domain, status, r.RecordCount, r.SnapshotID)
	}
}
