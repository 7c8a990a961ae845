package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the pldesc command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pldesc",
		Short: "Inspect ChRIS plugin descriptor files",
		Long: `pldesc works with the JSON self-descriptions that ChRIS plugin apps
emit through their --json and --savejson flags.

It can pretty-print a descriptor, check it against the registration
invariants of the chrisapp library, and browse its parameters
interactively.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newBrowseCommand())

	return rootCmd
}
