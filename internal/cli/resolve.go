package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/attunehq/arbiter/internal/audit"
	"github.com/attunehq/arbiter/internal/config"
	"github.com/attunehq/arbiter/internal/engine"
	"github.com/attunehq/arbiter/internal/model"
	"github.com/attunehq/arbiter/internal/trace"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	ConfigPath string
	Override   string
	Intent     string
	UserID     string
	TenantID   string
	AuditDB    string
}

// NewResolveCommand creates the resolve command.
//
// The request's fusion context is read as JSON from the given file, or from
// stdin when the argument is "-" or absent.
func NewResolveCommand(root *RootOptions) *cobra.Command {
	opts := &ResolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve [context-file]",
		Short: "Resolve a fusion context into an action plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "engine config YAML file")
	cmd.Flags().StringVar(&opts.Override, "override", "", "user priority override domain")
	cmd.Flags().StringVar(&opts.Intent, "intent", "", "current intent")
	cmd.Flags().StringVar(&opts.UserID, "user", "local", "user identifier")
	cmd.Flags().StringVar(&opts.TenantID, "tenant", "default", "tenant identifier")
	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "optional SQLite audit database path")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string, root *RootOptions, opts *ResolveOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	fusion, err := readContext(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	req := engine.Request{
		UserID:        opts.UserID,
		TenantID:      opts.TenantID,
		CurrentIntent: opts.Intent,
		Context:       fusion,
	}
	if opts.Override != "" {
		d := model.Domain(opts.Override)
		if !d.Valid() {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown override domain %q", opts.Override))
		}
		req.PriorityOverride = &d
	}

	engOpts := []engine.Option{
		engine.WithEmitter(trace.NewLogEmitter(slog.Default())),
	}
	if opts.AuditDB != "" {
		store, err := audit.Open(opts.AuditDB, slog.Default())
		if err != nil {
			return WrapExitError(ExitCommandError, "open audit database", err)
		}
		defer store.Close()
		engOpts = append(engOpts, engine.WithAuditSink(store))
	}

	eng := engine.New(cfg, engOpts...)
	resp := eng.Resolve(cmd.Context(), req)

	if root.Format == "json" {
		if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
			return WrapExitError(ExitCommandError, "encode response", err)
		}
	} else {
		writeResponseText(cmd.OutOrStdout(), resp)
	}

	if !resp.OK {
		return NewExitError(ExitFailure, resp.Message)
	}
	return nil
}

// loadConfig loads the YAML config or falls back to defaults.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "load config", err)
	}
	return cfg, nil
}

// readContext parses the fusion context JSON from the file argument or stdin.
// No argument and no piped input yields an empty context, which the engine
// fills with conservative defaults.
func readContext(stdin io.Reader, args []string) (*model.FusionContext, error) {
	var data []byte
	var err error
	switch {
	case len(args) == 1 && args[0] != "-":
		data, err = os.ReadFile(args[0])
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "read context file", err)
		}
	default:
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "read stdin", err)
		}
	}

	if len(data) == 0 {
		return nil, nil
	}
	var fusion model.FusionContext
	if err := json.Unmarshal(data, &fusion); err != nil {
		return nil, WrapExitError(ExitCommandError, "parse fusion context", err)
	}
	return &fusion, nil
}

// writeResponseText renders the response in the human-readable format.
func writeResponseText(w io.Writer, resp *engine.Response) {
	if !resp.OK {
		fmt.Fprintf(w, "FAILED: %s (%s)\n", resp.Message, resp.Error)
		return
	}
	plan := resp.Plan

	fmt.Fprintf(w, "primary:    %s\n", plan.PrimaryDomain)
	if len(plan.SecondaryDomains) > 0 {
		names := make([]string, len(plan.SecondaryDomains))
		for i, d := range plan.SecondaryDomains {
			names[i] = string(d)
		}
		fmt.Fprintf(w, "secondary:  %s\n", strings.Join(names, ", "))
	}
	for _, d := range plan.DeferredDomains {
		if d.SuggestedDelayMinutes > 0 {
			fmt.Fprintf(w, "deferred:   %s (%s, ~%dm)\n", d.Domain, d.Reason, d.SuggestedDelayMinutes)
		} else {
			fmt.Fprintf(w, "deferred:   %s (%s)\n", d.Domain, d.Reason)
		}
	}
	for _, s := range plan.SuppressedDomains {
		fmt.Fprintf(w, "suppressed: %s (%s)\n", s.Domain, s.Reason)
	}
	if len(plan.PriorityTags) > 0 {
		tags := make([]string, len(plan.PriorityTags))
		for i, t := range plan.PriorityTags {
			tags[i] = string(t)
		}
		fmt.Fprintf(w, "tags:       %s\n", strings.Join(tags, ", "))
	}
	fmt.Fprintf(w, "depth:      %s, pacing %s\n", plan.Constraints.SuggestedDepth, plan.Constraints.SuggestedPacing)
	fmt.Fprintf(w, "rationale:  %s\n", plan.Rationale)

	for _, d := range model.AllDomains {
		score := resp.DomainPriorities[d]
		marker := ""
		if score.Suppressed {
			marker = " [suppressed]"
		}
		fmt.Fprintf(w, "  %-22s %3d%s\n", d, score.Score, marker)
	}
}
