package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/attunehq/arbiter/internal/audit"
)

// NewAuditCommand creates the audit command group.
func NewAuditCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the persisted audit log",
	}
	cmd.AddCommand(newAuditListCommand(root))
	return cmd
}

func newAuditListCommand(root *RootOptions) *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted audit entries in logical order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := audit.Open(dbPath, slog.Default())
			if err != nil {
				return WrapExitError(ExitCommandError, "open audit database", err)
			}
			defer store.Close()

			rows, err := store.List(cmd.Context(), limit)
			if err != nil {
				return WrapExitError(ExitFailure, "list audit entries", err)
			}

			if root.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s  %-22s conflicts=%d  %s\n",
					r.Seq, r.ComputedAt.Format("2006-01-02T15:04:05Z"), r.PrimaryDomain, r.ConflictCount, r.InputHash[:12])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "arbiter-audit.db", "SQLite audit database path")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum entries to list (0 = all)")

	return cmd
}
