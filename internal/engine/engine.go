package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/attunehq/arbiter/internal/config"
	"github.com/attunehq/arbiter/internal/model"
)

// pipelineStages names the stages in execution order, reported in response
// metadata for traceability.
var pipelineStages = []string{
	"signal_computation",
	"priority_scoring",
	"conflict_detection",
	"conflict_resolution",
	"plan_generation",
}

// Request is the inbound resolve contract. UserID and TenantID are opaque to
// the algorithm; they only feed the input hash and the audit record.
type Request struct {
	UserID           string               `json:"user_id" yaml:"user_id"`
	TenantID         string               `json:"tenant_id" yaml:"tenant_id"`
	CurrentIntent    string               `json:"current_intent,omitempty" yaml:"current_intent,omitempty"`
	Context          *model.FusionContext `json:"fusion_context,omitempty" yaml:"fusion_context,omitempty"`
	PriorityOverride *model.Domain        `json:"user_priority_override,omitempty" yaml:"user_priority_override,omitempty"`
}

// Metadata describes one resolve computation.
type Metadata struct {
	ComputedAt   time.Time `json:"computed_at"`
	InputHash    string    `json:"input_hash"`
	RulesApplied []string  `json:"rules_applied"`
	DurationMS   int64     `json:"duration_ms"`
}

// Response is the resolve result. OK is always set; callers never receive a
// nil response or an unhandled error from Resolve.
type Response struct {
	OK                     bool                                          `json:"ok"`
	Plan                   *model.ResolvedActionPlan                     `json:"resolved_plan,omitempty"`
	DomainPriorities       map[model.Domain]model.DomainPriorityScore    `json:"domain_priorities,omitempty"`
	DomainSignals          []model.DomainSignal                          `json:"domain_signals,omitempty"`
	ConflictsDetected      []model.DomainConflict                        `json:"conflicts_detected,omitempty"`
	StabilityWindowSeconds int                                           `json:"stability_window_seconds,omitempty"`
	Metadata               *Metadata                                     `json:"metadata,omitempty"`
	Error                  string                                        `json:"error,omitempty"`
	Message                string                                        `json:"message,omitempty"`
}

// Emitter is the event-emission collaborator. Implementations must be
// non-fatal: emission failures are swallowed and logged, never surfaced.
type Emitter interface {
	Emit(eventType, status, message string, payload map[string]any)
}

// AuditEntry is the append-only audit row handed to the persistence
// collaborator after a plan is finalized.
type AuditEntry struct {
	ComputedAt    time.Time      `json:"computed_at"`
	InputHash     string         `json:"input_hash"`
	UserID        string         `json:"user_id"`
	TenantID      string         `json:"tenant_id"`
	PrimaryDomain model.Domain   `json:"primary_domain"`
	Suppressed    []model.Domain `json:"suppressed,omitempty"`
	ConflictCount int            `json:"conflict_count"`
	Response      []byte         `json:"response"`
}

// AuditSink persists audit rows. Store returns false on failure; the engine
// logs and moves on.
type AuditSink interface {
	Store(entry AuditEntry) bool
}

// Engine arbitrates cross-domain priority. The zero configuration is not
// usable; construct with New.
//
// An Engine is immutable after construction and safe for concurrent use:
// the core computation is a pure function of its inputs.
type Engine struct {
	cfg     config.Config
	emitter Emitter
	audit   AuditSink
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithEmitter attaches the trace event sink.
func WithEmitter(em Emitter) Option {
	return func(e *Engine) { e.emitter = em }
}

// WithAuditSink attaches the audit persistence sink.
func WithAuditSink(a AuditSink) Option {
	return func(e *Engine) { e.audit = a }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the wall clock. Used by tests and replay.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine with the given configuration.
func New(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine's configuration value.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Resolve runs the five-stage pipeline and returns a well-formed response.
//
// Any internal fault (including panics from rule functions) is caught,
// logged, and converted into the RESOLUTION_FAILED failure shape. After a
// successful plan, a trace event and an optional audit row are emitted;
// neither can change or delay the returned response.
func (e *Engine) Resolve(ctx context.Context, req Request) (resp *Response) {
	start := e.now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("resolution failed", "panic", r, "user", req.UserID)
			resp = &Response{
				OK:      false,
				Error:   CodeResolutionFailed,
				Message: fmt.Sprintf("internal fault: %v", r),
			}
			e.emitAfter(req, resp)
		}
	}()

	resp, err := e.resolve(ctx, req, start)
	if err != nil {
		e.logger.Error("resolution failed", "error", err, "user", req.UserID)
		resp = &Response{
			OK:      false,
			Error:   CodeResolutionFailed,
			Message: err.Error(),
		}
	}
	e.emitAfter(req, resp)
	return resp
}

// resolve is the pure pipeline: signals, scores, conflicts, resolutions,
// plan. It has no side effects.
func (e *Engine) resolve(ctx context.Context, req Request, start time.Time) (*Response, error) {
	inputHash, err := model.InputHash(req.UserID, req.TenantID, req.CurrentIntent, req.PriorityOverride)
	if err != nil {
		return nil, &ResolutionError{Code: CodeResolutionFailed, Message: "input hash", Err: err}
	}

	normalized := req.Context.Normalized()
	in := signalInput{ctx: normalized, intent: req.CurrentIntent}

	signals, err := computeSignals(ctx, in)
	if err != nil {
		return nil, &ResolutionError{Code: CodeResolutionFailed, Message: "signal computation", Err: err}
	}

	scores := scoreSignals(signals, scoreEnv{
		cfg:          e.cfg,
		availability: normalized.HealthCapacity.Availability,
		override:     req.PriorityOverride,
	})

	signalsByDomain := make(map[model.Domain]model.DomainSignal, len(signals))
	for _, s := range signals {
		signalsByDomain[s.Domain] = s
	}
	env := conflictEnv{ctx: normalized, signals: signalsByDomain, scores: scores}

	conflicts := detectConflicts(env, e.cfg.ActivationThreshold, e.cfg.ResolutionThreshold)
	resolutions := resolveConflicts(conflicts, env)
	plan := buildPlan(env, resolutions, e.cfg, req.PriorityOverride)

	return &Response{
		OK:                     true,
		Plan:                   plan,
		DomainPriorities:       scores,
		DomainSignals:          signals,
		ConflictsDetected:      conflicts,
		StabilityWindowSeconds: e.cfg.StabilityWindowSeconds,
		Metadata: &Metadata{
			ComputedAt:   start.UTC(),
			InputHash:    inputHash,
			RulesApplied: pipelineStages,
			DurationMS:   e.now().Sub(start).Milliseconds(),
		},
	}, nil
}

// emitAfter fires the trace event and audit row for a finalized response.
// Strictly post-plan; any collaborator fault is logged and swallowed.
func (e *Engine) emitAfter(req Request, resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("post-resolve emission panicked", "panic", r)
		}
	}()

	if e.emitter != nil {
		if resp.OK {
			e.emitter.Emit("arbitration.resolved", "ok", "plan computed", map[string]any{
				"input_hash":     resp.Metadata.InputHash,
				"primary_domain": string(resp.Plan.PrimaryDomain),
				"conflict_count": len(resp.ConflictsDetected),
			})
		} else {
			e.emitter.Emit("arbitration.failed", "error", resp.Message, map[string]any{
				"user_id": req.UserID,
			})
		}
	}

	if e.audit == nil || !resp.OK {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		e.logger.Warn("audit serialization failed", "error", err)
		return
	}
	var suppressed []model.Domain
	for _, s := range resp.Plan.SuppressedDomains {
		suppressed = append(suppressed, s.Domain)
	}
	ok := e.audit.Store(AuditEntry{
		ComputedAt:    resp.Metadata.ComputedAt,
		InputHash:     resp.Metadata.InputHash,
		UserID:        req.UserID,
		TenantID:      req.TenantID,
		PrimaryDomain: resp.Plan.PrimaryDomain,
		Suppressed:    suppressed,
		ConflictCount: len(resp.ConflictsDetected),
		Response:      payload,
	})
	if !ok {
		e.logger.Warn("audit store rejected entry", "input_hash", resp.Metadata.InputHash)
	}
}
