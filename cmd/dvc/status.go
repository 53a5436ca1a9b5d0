package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mribeirodantas/dvc/internal/progress"
	"github.com/mribeirodantas/dvc/internal/status"
)

// statusOrder is the display order of SUPPLEMENTED FEATURES note 1:
// status output groups by status, not by raw checksum.
var statusOrder = []status.Status{status.New, status.Deleted, status.Missing, status.OK}

func newStatusCmd() *cobra.Command {
	// status only reads presence, so it needs none of fetch/pull/
	// push's transfer-tuning flags, just a plain flags{} to satisfy
	// newSession's signature.
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "status [targets...]",
		Short: "show the reconciled status of targets against the local and remote caches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cacheDir, _ := cmd.Flags().GetString("cache-dir")
			remoteDir, _ := cmd.Flags().GetString("remote-dir")

			s, err := newSession(f, cacheDir, remoteDir, args)
			if err != nil {
				return err
			}
			records, err := s.reconcile(cmd.Context())
			if err != nil {
				return err
			}

			for _, st := range statusOrder {
				group := status.Filter(records, st)
				if len(group) == 0 {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", st)
				for _, r := range group {
					for _, name := range r.Names {
						fmt.Fprintf(cmd.OutOrStdout(), "\t%s\n", name)
					}
				}
			}

			synced, local := localByteTotals(s, records)
			if local > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "synced: %s\n", progress.Summary(synced, local))
			}
			return nil
		},
	}
	return cmd
}

// localByteTotals sums the on-disk size of every locally present
// record's cache object (status OK or NEW), and separately the subset
// already present on the remote too (status OK), so status can report
// how much of what's on disk locally is already synced.
func localByteTotals(s *session, records []status.Record) (synced, local int64) {
	for _, r := range records {
		if r.Status != status.OK && r.Status != status.New {
			continue
		}
		path, err := s.cache.Layout.ToPath(r.Checksum)
		if err != nil {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		local += info.Size()
		if r.Status == status.OK {
			synced += info.Size()
		}
	}
	return synced, local
}
