package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attunehq/arbiter/internal/config"
)

// NewValidateCommand creates the validate command: schema-checks an engine
// config file without running anything.
func NewValidateCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate an engine config file against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "invalid config", err)
			}

			if root.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"valid": true, "config": cfg})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
			return nil
		},
	}
	return cmd
}
