package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attunehq/arbiter/internal/engine"
	"github.com/attunehq/arbiter/internal/model"
)

// NewCheckCommand creates the check command: a point check of whether a
// single domain's action is allowed under the absolute gates.
//
// Exit code is 0 when allowed, 1 when denied.
func NewCheckCommand(root *RootOptions) *cobra.Command {
	opts := &ResolveOptions{}

	cmd := &cobra.Command{
		Use:   "check <domain> [context-file]",
		Short: "Check whether a single domain's action is allowed",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := model.Domain(args[0])
			if !domain.Valid() {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown domain %q", args[0]))
			}
			cfg, err := loadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			fusion, err := readContext(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}

			eng := engine.New(cfg)
			decision := eng.IsDomainActionAllowed(domain, engine.Request{Context: fusion})

			if root.Format == "json" {
				if err := writeJSON(cmd.OutOrStdout(), decision); err != nil {
					return WrapExitError(ExitCommandError, "encode decision", err)
				}
			} else if decision.Allowed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: allowed\n", domain)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: denied (%s)\n", domain, decision.Reason)
			}

			if !decision.Allowed {
				return NewExitError(ExitFailure, decision.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "engine config YAML file")

	return cmd
}
