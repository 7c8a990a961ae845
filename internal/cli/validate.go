package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FNNDSC/chrisapp"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check descriptor files against the registration invariants",
		Long: `Validate decodes each descriptor file and re-runs the chrisapp
registration rules over its parameter list: known plugin and parameter
types, unique names, defaults present exactly on optional parameters, no
optional path parameters, no hidden mandatory parameters.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failures := 0
			for _, path := range args {
				if err := validateFile(path); err != nil {
					failures++
					fmt.Fprintf(out, "❌ %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "✅ %s\n", path)
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d descriptor(s) invalid", failures, len(args))
			}
			return nil
		},
	}
}

func validateFile(path string) error {
	d, err := chrisapp.ReadDescriptor(path)
	if err != nil {
		return err
	}
	return d.Validate()
}
