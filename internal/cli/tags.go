package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attunehq/arbiter/internal/engine"
)

// NewTagsCommand creates the tags command: the fast path that derives
// priority tags without conflict detection or plan assembly.
func NewTagsCommand(root *RootOptions) *cobra.Command {
	opts := &ResolveOptions{}

	cmd := &cobra.Command{
		Use:   "tags [context-file]",
		Short: "Derive priority tags without running the full pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			fusion, err := readContext(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			eng := engine.New(cfg)
			tags, err := eng.FastTags(cmd.Context(), engine.Request{
				UserID:        opts.UserID,
				TenantID:      opts.TenantID,
				CurrentIntent: opts.Intent,
				Context:       fusion,
			})
			if err != nil {
				return WrapExitError(ExitFailure, "derive tags", err)
			}

			if root.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"priority_tags": tags})
			}
			for _, t := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "engine config YAML file")
	cmd.Flags().StringVar(&opts.Intent, "intent", "", "current intent")
	cmd.Flags().StringVar(&opts.UserID, "user", "local", "user identifier")
	cmd.Flags().StringVar(&opts.TenantID, "tenant", "default", "tenant identifier")

	return cmd
}
