package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mribeirodantas/dvc/internal/checksum"
	"github.com/mribeirodantas/dvc/internal/dvclog"
	"github.com/mribeirodantas/dvc/internal/status"
	"github.com/mribeirodantas/dvc/internal/transfer"
)

func newPullCmd() *cobra.Command {
	var f *flags
	var force bool
	cmd := &cobra.Command{
		Use:   "pull [targets...]",
		Short: "fetch missing objects and check them out into the working tree",
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

			onSuccess := func(_ context.Context, it transfer.Item) error {
				return checkoutNamedTargets(s, it.Checksum, force)
			}
			attempted, err := engine.Download(cmd.Context(), items, progressReporterFor(verbose), onSuccess)
			recordDownloadResult(attempted, err)
			if err != nil {
				dvclog.Infof("pull", "%d object(s) attempted, some failed", attempted)
				return err
			}

			// Objects already local (status OK) still need checking out
			// if the working-tree copy is absent or --force was given.
			for _, r := range status.Filter(records, status.OK) {
				if err := checkoutNamedTargets(s, r.Checksum, force); err != nil {
					return err
				}
			}
			dvclog.Infof("pull", "%d object(s) pulled", attempted)
			return nil
		},
	}
	f = registerTransferFlags(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "check out even if the working-tree path already has different content")
	return cmd
}

// checkoutNamedTargets materializes c at the working-tree path
// s.paths records for it, skipping a path that already holds c's
// content unless force is set. s.paths keeps one path per checksum, so
// when several targets share c only the last one resolved is checked
// out.
func checkoutNamedTargets(s *session, c checksum.Checksum, force bool) error {
	path, ok := s.paths[c]
	if !ok {
		return nil
	}
	if !force && !s.cache.Changed(path, c) {
		return nil
	}
	return s.cache.Checkout(path, c)
}
