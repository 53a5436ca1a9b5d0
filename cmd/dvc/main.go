// Command dvc is the CLI surface spec §6 describes as an external
// collaborator: fetch/pull/push/status subcommands that wire the core
// packages together. Parsing and flag registration use
// github.com/spf13/cobra and github.com/spf13/pflag, the teacher's own
// command framework.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
