package main

import (
	"github.com/spf13/cobra"

	"github.com/mribeirodantas/dvc/internal/dvclog"
	"github.com/mribeirodantas/dvc/internal/status"
	"github.com/mribeirodantas/dvc/internal/transfer"
)

func newFetchCmd() *cobra.Command {
	var f *flags
	cmd := &cobra.Command{
		Use:   "fetch [targets...]",
		Short: "download missing remote objects into the local cache without checking them out",
		RunE: func(cmd *cobra.Command, args []string) error {
			cacheDir, _ := cmd.Flags().GetString("cache-dir")
			remoteDir, _ := cmd.Flags().GetString("remote-dir")
			verbose, _ := cmd.Flags().GetBool("verbose")

			s, err := newSession(f, cacheDir, remoteDir, args)
			if err != nil {
				return err
			}
			records, err := s.reconcile(cmd.Context())
			if err != nil {
				return err
			}
			warnMissing(records)

			deleted := status.Filter(records, status.Deleted)
			items := s.toItems(deleted)
			engine := transfer.New(s.remote, f.jobs)
			attempted, err := engine.Download(cmd.Context(), items, progressReporterFor(verbose), nil)
			recordDownloadResult(attempted, err)
			dvclog.Infof("fetch", "%d object(s) fetched into the cache", attempted)
			if err != nil {
				return err
			}
			return nil
		},
	}
	f = registerTransferFlags(cmd)
	return cmd
}
