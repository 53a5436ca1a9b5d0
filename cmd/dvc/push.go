package main

import (
	"github.com/spf13/cobra"

	"github.com/mribeirodantas/dvc/internal/dvclog"
	"github.com/mribeirodantas/dvc/internal/status"
	"github.com/mribeirodantas/dvc/internal/transfer"
)

func newPushCmd() *cobra.Command {
	var f *flags
	cmd := &cobra.Command{
		Use:   "push [targets...]",
		Short: "upload local-only objects to the remote cache",
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

			items := s.toItems(status.Filter(records, status.New))
			engine := transfer.New(s.remote, f.jobs)
			attempted, err := engine.Upload(cmd.Context(), items, progressReporterFor(verbose), nil)
			recordUploadResult(attempted, err)
			dvclog.Infof("push", "%d object(s) pushed to the remote", attempted)
			return err
		},
	}
	f = registerTransferFlags(cmd)
	return cmd
}
