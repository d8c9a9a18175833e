// Package engine runs the turn pipeline: intent classification, guardrail
// grading, skeleton resolution, variant selection, assembly, and the trace
// with its replay hash. The pipeline is a strict DAG with a single entry
// point; no stage ever re-enters an earlier one.
//
// All session mutation is staged on a clone and committed in one step at the
// end of the turn, so an abandoned or failed turn leaves the session exactly
// as it was.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/indiandesillm/inference-core/internal/audit"
	"github.com/indiandesillm/inference-core/internal/contract"
	"github.com/indiandesillm/inference-core/internal/guardrail"
	"github.com/indiandesillm/inference-core/internal/intent"
	"github.com/indiandesillm/inference-core/internal/observe"
	"github.com/indiandesillm/inference-core/internal/replay"
	"github.com/indiandesillm/inference-core/internal/session"
	"github.com/indiandesillm/inference-core/internal/voice"
)

// Request is one turn of input. EmotionalLang is the public language mode,
// en or hi; SessionID groups turns into a conversation.
type Request struct {
	Prompt        string
	EmotionalLang contract.Language
	SessionID     string
}

// Response carries the response text and the full decision trace.
type Response struct {
	ResponseText string       `json:"response_text"`
	Trace        replay.Trace `json:"trace"`
}

// AuditSink receives committed turn records. Implementations must not block.
type AuditSink interface {
	Enqueue(rec audit.TurnRecord)
}

// Config assembles an [Engine]. Store may be nil when the contract failed to
// load; the engine then serves absolute fallbacks for emotional turns.
// Metrics and Audit are optional.
type Config struct {
	Logger  *slog.Logger
	Store   *contract.Store
	Metrics *observe.Metrics
	Audit   AuditSink
}

// Engine is the deterministic inference core. Safe for concurrent use;
// per-session ordering is enforced by the session locks.
type Engine struct {
	log      *slog.Logger
	store    *contract.Store
	selector *voice.Selector
	sessions *session.Registry
	metrics  *observe.Metrics
	audit    AuditSink
}

// New builds an engine from cfg.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		log:      log,
		store:    cfg.Store,
		sessions: session.NewRegistry(),
		metrics:  cfg.Metrics,
		audit:    cfg.Audit,
	}
	if cfg.Store != nil {
		e.selector = voice.NewSelector(cfg.Store)
	}
	return e
}

// ContractLoaded reports whether a contract store is available.
func (e *Engine) ContractLoaded() bool { return e.store != nil }

// Sessions exposes the registry for health and shutdown accounting.
func (e *Engine) Sessions() *session.Registry { return e.sessions }

// Generate runs one turn. The session lock is held for the whole pipeline,
// so turns within a session are strictly ordered; turns across sessions run
// in parallel.
func (e *Engine) Generate(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	it := intent.Classify(req.Prompt, req.EmotionalLang)
	g := guardrail.Classify(req.Prompt)

	sess, created := e.sessions.GetOrCreate(req.SessionID)
	if created && e.metrics != nil {
		e.metrics.ActiveSessions.Add(ctx, 1)
	}
	sess.Lock()
	defer sess.Unlock()

	staged := sess.State().Clone()
	prevSkeleton := staged.LastSkeleton
	res := voice.Resolve(it, staged)

	var resp Response
	var err error
	if it.Kind == intent.KindEmotional {
		resp, err = e.emotionalTurn(req, it, g, res, sess, staged, prevSkeleton)
	} else {
		resp, err = e.nonEmotionalTurn(req, it, g, sess, staged)
	}
	if err != nil {
		return Response{}, err
	}

	if e.metrics != nil {
		sk := ""
		if resp.Trace.Skeleton != nil {
			sk = *resp.Trace.Skeleton
		}
		e.metrics.RecordTurn(ctx, string(it.Kind), sk, time.Since(start).Seconds())
		if resp.Trace.Guardrail.Action == "override" {
			e.metrics.RecordGuardrailOverride(ctx, resp.Trace.Guardrail.Category, resp.Trace.Guardrail.Severity)
		}
		if resp.Trace.Meta != nil {
			e.metrics.RecordFallback(ctx, resp.Trace.Meta.FallbackReason, resp.Trace.Meta.FallbackLevel)
		}
	}
	if e.audit != nil {
		sk := ""
		if resp.Trace.Skeleton != nil {
			sk = *resp.Trace.Skeleton
		}
		level := ""
		if resp.Trace.Meta != nil {
			level = resp.Trace.Meta.FallbackLevel
		}
		e.audit.Enqueue(audit.TurnRecord{
			SessionID:         req.SessionID,
			TurnIndex:         resp.Trace.Turn,
			Intent:            string(it.Kind),
			Skeleton:          sk,
			GuardrailCategory: resp.Trace.Guardrail.Category,
			GuardrailSeverity: resp.Trace.Guardrail.Severity,
			FallbackLevel:     level,
			ReplayHash:        resp.Trace.ReplayHash,
		})
	}
	return resp, nil
}

// nonEmotionalTurn serves factual, explanatory, and conversational prompts
// from the floor table and the fixed scaffolds. The resolver has already
// applied the hard reset to staged; committing staged makes it effective.
func (e *Engine) nonEmotionalTurn(req Request, it intent.Intent, g guardrail.Result, sess *session.Session, staged *voice.SessionVoiceState) (Response, error) {
	lang := req.EmotionalLang
	if !lang.IsValid() {
		lang = contract.LangEN
	}
	text := nonEmotionalText(req.Prompt, lang)

	gTrace := guardrailTrace(g)
	if act := guardrail.Strategy(g); act.Override && act.ResponseText != "" {
		text = act.ResponseText
		gTrace.Action = "override"
	}

	sess.Commit(staged)

	trace := replay.Trace{
		Turn:      staged.EmotionalTurnIndex,
		Guardrail: gTrace,
	}
	hash, err := replay.TurnHash(req.Prompt, string(lang), gTrace, nil, "", trace.Selection)
	if err != nil {
		return Response{}, fmt.Errorf("engine: replay hash: %w", err)
	}
	trace.ReplayHash = hash
	return Response{ResponseText: text, Trace: trace}, nil
}

func (e *Engine) emotionalTurn(req Request, it intent.Intent, g guardrail.Result, res voice.Resolution, sess *session.Session, staged *voice.SessionVoiceState, prevSkeleton contract.Skeleton) (Response, error) {
	sk := res.Skeleton

	// Guardrail skeleton forcing. A latched session never leaves C, and a
	// family-theme turn never lands in A or D, whatever the classifier says.
	if g.Category != guardrail.Safe && res.Escalation != voice.EscalationLatched {
		forced := guardrail.Escalate(g, sk)
		if it.FamilyTheme && (forced == contract.SkeletonA || forced == contract.SkeletonD) {
			forced = contract.SkeletonB
		}
		sk = forced
	}

	gTrace := guardrailTrace(g)
	act := guardrail.Strategy(g)

	// Contract unavailable: absolute fallback, no state commit.
	if e.store == nil {
		return e.absoluteTurn(req, sk, g, gTrace, act, sess, ReasonContractLoad)
	}

	tctx := voice.TurnContext{
		Skeleton:     sk,
		Language:     res.Language,
		PrevSkeleton: prevSkeleton,
		Escalation:   res.Escalation,
		LatchedTheme: res.LatchedTheme,
		TurnIndex:    staged.EmotionalTurnIndex,
	}

	// Selection stages onto its own clone so a failure partway through the
	// sections leaves no usage behind.
	rot := staged.Rotation.Clone()
	choices, selErr := e.selector.SelectAll(tctx, rot)

	var reason, level string
	if selErr != nil {
		if errors.Is(selErr, voice.ErrState) {
			// Corrupt history: clear the skeleton's pools and reselect once.
			// The recovered turn is served from the skeleton's own pools.
			reason = ReasonRotationReset
			staged.Rotation.ResetWhere(func(k contract.PoolKey) bool { return k.Skeleton == sk })
			rot = staged.Rotation.Clone()
			choices, selErr = e.selector.SelectAll(tctx, rot)
			if selErr == nil {
				level = LevelSkeletonLocal
			}
		} else {
			reason = ReasonExhausted
		}
	}
	if selErr == nil {
		staged.Rotation = rot
	} else {
		e.log.Warn("selection failed, entering fallback",
			"session_id", req.SessionID,
			"skeleton", string(sk),
			"error", selErr)
		choices, level = fallbackChoices(e.store, sk, res.Language, staged.Rotation, staged.EmotionalTurnIndex)
		if level == LevelAbsolute {
			return e.absoluteTurn(req, sk, g, gTrace, act, sess, reason)
		}
	}

	text, asmErr := voice.Assemble(sk, choices)
	if asmErr != nil {
		return e.absoluteTurn(req, sk, g, gTrace, act, sess, ReasonAssembly)
	}

	// Commit: the staged clone, with its rotation appends, becomes the
	// session state in one step.
	staged.LastSkeleton = sk
	staged.EmotionalTurnIndex++
	sess.Commit(staged)

	if act.Override {
		gTrace.Action = "override"
		if act.ResponseText != "" {
			text = act.ResponseText
		} else {
			text = e.stillnessConstant(res.Language)
		}
	}

	tone, hasTone := guardrail.ToneProfile(sk, g.Severity, g.Category)
	if !hasTone {
		tone = ""
	}

	skStr := string(sk)
	trace := replay.Trace{
		Turn:        staged.EmotionalTurnIndex,
		Guardrail:   gTrace,
		Skeleton:    &skStr,
		ToneProfile: tone,
		Selection:   selectionTrace(sk, choices),
	}
	if reason != "" {
		trace.Meta = &replay.Meta{FallbackReason: reason, FallbackLevel: level}
	}

	hash, err := replay.TurnHash(req.Prompt, string(req.EmotionalLang), gTrace, &skStr, tone, trace.Selection)
	if err != nil {
		return Response{}, fmt.Errorf("engine: replay hash: %w", err)
	}
	trace.ReplayHash = hash
	return Response{ResponseText: text, Trace: trace}, nil
}

// absoluteTurn emits the compiled-in string for sk. The staged clone is
// discarded: rotation memory and the turn index stay untouched.
func (e *Engine) absoluteTurn(req Request, sk contract.Skeleton, g guardrail.Result, gTrace replay.GuardrailTrace, act guardrail.Action, sess *session.Session, reason string) (Response, error) {
	text := voice.AbsoluteFallback(sk)
	if act.Override {
		gTrace.Action = "override"
		if act.ResponseText != "" {
			text = act.ResponseText
		}
	}

	tone, hasTone := guardrail.ToneProfile(sk, g.Severity, g.Category)
	if !hasTone {
		tone = ""
	}

	skStr := string(sk)
	trace := replay.Trace{
		Turn:        sess.State().EmotionalTurnIndex,
		Guardrail:   gTrace,
		Skeleton:    &skStr,
		ToneProfile: tone,
		Meta:        &replay.Meta{FallbackReason: reason, FallbackLevel: LevelAbsolute},
	}

	hash, err := replay.TurnHash(req.Prompt, string(req.EmotionalLang), gTrace, &skStr, tone, trace.Selection)
	if err != nil {
		return Response{}, fmt.Errorf("engine: replay hash: %w", err)
	}
	trace.ReplayHash = hash
	return Response{ResponseText: text, Trace: trace}, nil
}

// stillnessConstant is the contract-backed skeleton C text substituted on a
// self-harm override: first validation entry plus the closure, in the turn's
// language, falling back to english and then to the compiled-in C string.
func (e *Engine) stillnessConstant(lang contract.Language) string {
	for _, l := range []contract.Language{lang, contract.LangEN} {
		validation := e.store.Variants(contract.SkeletonC, l, contract.SectionValidation)
		closure := e.store.Variants(contract.SkeletonC, l, contract.SectionClosure)
		if len(validation) > 0 && len(closure) > 0 {
			return validation[0].Text + " " + closure[0].Text
		}
	}
	return voice.AbsoluteFallback(contract.SkeletonC)
}

func guardrailTrace(g guardrail.Result) replay.GuardrailTrace {
	return replay.GuardrailTrace{
		Category:      string(g.Category),
		Severity:      string(g.Severity),
		SchemaVersion: g.SchemaVersion,
	}
}

func selectionTrace(sk contract.Skeleton, choices map[contract.Section]voice.Choice) replay.SelectionTrace {
	var sel replay.SelectionTrace
	for _, sec := range contract.SectionsFor(sk) {
		c, ok := choices[sec]
		if !ok {
			continue
		}
		id := c.VariantID
		switch sec {
		case contract.SectionOpener:
			sel.Opener = &id
		case contract.SectionValidation:
			sel.Validation = &id
		case contract.SectionAction:
			sel.Action = &id
		case contract.SectionClosure:
			sel.Closure = &id
		}
	}
	return sel
}
