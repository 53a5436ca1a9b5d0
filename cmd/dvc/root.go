package main

import (
	"github.com/spf13/cobra"

	"github.com/mribeirodantas/dvc/internal/dvclog"
)

// flags are the persistent options spec §6 lists for fetch/pull/push:
// targets (positional args), --jobs, --remote, --all-branches,
// --all-tags, --all-commits, --with-deps, --recursive. Only --jobs and
// --recursive are acted on. This core has no VCS integration of its
// own, so the VCS-commit selectors and --with-deps are accepted and
// stored here for CLI parity but never read.
type flags struct {
	jobs        int
	remote      string
	allBranches bool
	allTags     bool
	allCommits  bool
	withDeps    bool
	recursive   bool
	cacheDir    string
	remoteDir   string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dvc",
		Short: "local content-addressed cache and remote synchronization engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				dvclog.SetLevel(dvclog.Debug)
			}
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
			startMetricsServer(metricsAddr)
		},
	}
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	root.PersistentFlags().String("cache-dir", ".dvc/cache", "local cache root")
	root.PersistentFlags().String("remote-dir", ".dvc/remote", "reference disk-backed remote root (see internal/remote/diskremote)")
	root.PersistentFlags().String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	root.AddCommand(newFetchCmd(), newPullCmd(), newPushCmd(), newStatusCmd())
	return root
}

func registerTransferFlags(cmd *cobra.Command) *flags {
	f := &flags{}
	cmd.Flags().IntVar(&f.jobs, "jobs", 0, "number of parallel transfer workers (default: remote.Jobs())")
	cmd.Flags().StringVar(&f.remote, "remote", "", "remote name (unused by the reference disk remote, accepted for CLI parity)")
	cmd.Flags().BoolVar(&f.allBranches, "all-branches", false, "fetch/pull/push objects referenced across all branches")
	cmd.Flags().BoolVar(&f.allTags, "all-tags", false, "fetch/pull/push objects referenced across all tags")
	cmd.Flags().BoolVar(&f.allCommits, "all-commits", false, "fetch/pull/push objects referenced across all commits")
	cmd.Flags().BoolVar(&f.withDeps, "with-deps", false, "include upstream stage dependencies of the given targets")
	cmd.Flags().BoolVar(&f.recursive, "recursive", false, "expand directory targets into their constituent files")
	return f
}

// Execute runs the dvc command tree, returning the first error any
// subcommand produces.
func Execute() error {
	return newRootCmd().Execute()
}
