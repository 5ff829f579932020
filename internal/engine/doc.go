// Package engine implements the cross-domain priority arbitration engine.
//
// Given a snapshot of the user's situation across five life domains, the
// engine decides which domain should lead the next action, which follow,
// which wait, and which are forbidden, plus an auditable rationale.
//
// ARCHITECTURE:
//
// Five pure stages composed in a fixed pipeline:
//
//  1. Signal computation - one rule function per domain derives an
//     activation signal from the fusion context
//  2. Priority scoring - signals become 0-100 scores through a fixed,
//     ordered list of adjustment rules
//  3. Conflict detection - a fixed table finds incompatible active pairs
//  4. Conflict resolution - a fixed strategy per conflict type
//  5. Plan generation - assemble primary/secondary/deferred/suppressed,
//     tags, constraints, rationale
//
// No stage feeds back into an earlier one. The core computation is a pure
// function of (context, overrides, config): no shared mutable state, no
// locks, no I/O. Concurrent calls are safe, and identical inputs always
// produce byte-identical plans.
//
// CRITICAL PATTERNS:
//
// Fixed adjustment order. Scoring rules are a fold over an ordered rule
// list; later rules act on the output of earlier ones. The consent override
// is an early-return guard: once a domain is suppressed no later rule can
// resurrect its score.
//
// Rule tables as data. Conflict pairs and resolution strategies live in
// lookup tables keyed by conflict type, so new conflict types are additive.
//
// Deterministic ordering. Domains are ranked by score descending with ties
// broken by lexical domain name. All sets (risk flags, sources, tags) are
// sorted before they leave a stage.
//
// Audit and trace emission happen strictly after the plan is finalized.
// Both are fire-and-forget: a failing collaborator is logged and never
// changes or delays the returned response.
package engine
