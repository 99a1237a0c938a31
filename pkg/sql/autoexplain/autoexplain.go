// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package autoexplain interposes on the executor lifecycle and logs the
// execution plan of every sampled statement whose runtime meets a
// configurable threshold. It executes nothing itself: it decides, per
// top-level statement, whether instrumentation is collected, tracks
// nested-call depth across the run and finish stages, and at end-of-statement
// renders one report through the explain engine and hands it to the log sink.
package autoexplain

import (
	"context"
	"math/rand"
	"time"

	"github.com/cockroachdb/autoexplain/pkg/settings"
	"github.com/cockroachdb/autoexplain/pkg/sql/exechook"
	"github.com/cockroachdb/autoexplain/pkg/sql/execstats"
	"github.com/cockroachdb/autoexplain/pkg/sql/explain"
	"github.com/cockroachdb/autoexplain/pkg/util/log"
	"github.com/cockroachdb/autoexplain/pkg/util/randutil"
	"github.com/cockroachdb/errors"
)

// TestingKnobs provides hooks for unit tests.
type TestingKnobs struct {
	// TimeSource overrides the clock driving the cumulative timer attached to
	// sampled statements.
	TimeSource func() time.Time
	// SampleDraw overrides the uniform draw compared against the sample rate.
	SampleDraw func() float64
}

// PlanLogger holds the interposition state of one execution context
// (connection/worker). A context processes one statement tree at a time;
// strictly sequential nested calls within the context are a precondition, so
// none of this state is locked.
type PlanLogger struct {
	sv    *settings.Values
	rng   *rand.Rand
	knobs TestingKnobs

	// nesting is the current depth of run/finish calls. Depth zero at the
	// start stage identifies a top-level statement.
	nesting int
	// sampled is decided once per top-level statement and inherited by every
	// statement nested under it.
	sampled bool

	// Previous occupants of the hook slots, restored on uninstall and called
	// through to in every handler.
	prevStart  exechook.StartHook
	prevRun    exechook.RunHook
	prevFinish exechook.FinishHook
	prevEnd    exechook.EndHook

	installed bool
}

// Option configures a PlanLogger.
type Option func(*PlanLogger)

// WithTestingKnobs sets test hooks.
func WithTestingKnobs(knobs TestingKnobs) Option {
	return func(l *PlanLogger) { l.knobs = knobs }
}

// New returns a PlanLogger reading its tunables from sv.
func New(sv *settings.Values, opts ...Option) *PlanLogger {
	l := &PlanLogger{sv: sv, sampled: true}
	l.rng, _ = randutil.NewPseudoRand()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Install writes the logger's handlers into all four hook slots of reg,
// remembering the previous occupants, and returns the function that restores
// them. Installation happens only while no statement is executing; nested
// installs of the same logger are not supported.
func (l *PlanLogger) Install(reg *exechook.Registry) func() {
	if l.installed {
		panic(errors.AssertionFailedf("plan logger installed twice"))
	}
	l.prevStart = reg.SwapStartHook(l.execStart)
	l.prevRun = reg.SwapRunHook(l.execRun)
	l.prevFinish = reg.SwapFinishHook(l.execFinish)
	l.prevEnd = reg.SwapEndHook(l.execEnd)
	l.installed = true
	return func() {
		reg.SwapStartHook(l.prevStart)
		reg.SwapRunHook(l.prevRun)
		reg.SwapFinishHook(l.prevFinish)
		reg.SwapEndHook(l.prevEnd)
		l.installed = false
	}
}

// enabled reports whether the mechanism applies at the current nesting depth.
// It reads the tunables fresh on every call; values can change between
// statements.
func (l *PlanLogger) enabled() bool {
	return logMinDuration.Get(l.sv) >= 0 &&
		(l.nesting == 0 || logNestedStatements.Get(l.sv))
}

func (l *PlanLogger) sampleDraw() float64 {
	if l.knobs.SampleDraw != nil {
		return l.knobs.SampleDraw()
	}
	return l.rng.Float64()
}

// execStart decides sampling and instrumentation for the statement, then
// delegates the actual startup.
func (l *PlanLogger) execStart(ctx context.Context, qd *exechook.QueryDesc, flags exechook.ExecFlags) error {
	// The sampling decision is drawn once per top-level statement; nested
	// statements inherit it, so either the whole statement tree is explained
	// or none of it is.
	if logMinDuration.Get(l.sv) >= 0 && l.nesting == 0 {
		l.sampled = l.sampleDraw() < logSampleRate.Get(l.sv)
	}

	if l.enabled() && l.sampled {
		// Request per-statement instrumentation iff analyze reporting is on
		// and the statement will really run.
		if logAnalyze.Get(l.sv) && flags&exechook.ExplainOnly == 0 {
			if logTiming.Get(l.sv) {
				qd.InstrumentOptions |= execstats.InstrumentTimer
			} else {
				qd.InstrumentOptions |= execstats.InstrumentRows
			}
			if logBuffers.Get(l.sv) {
				qd.InstrumentOptions |= execstats.InstrumentBuffers
			}
		}
	}

	var err error
	if l.prevStart != nil {
		err = l.prevStart(ctx, qd, flags)
	} else {
		err = exechook.StandardExecutorStart(ctx, qd, flags)
	}
	if err != nil {
		return err
	}

	if l.enabled() && l.sampled {
		// Track total elapsed time even when per-statement instrumentation
		// was not requested. The handle is attached to the statement's own
		// state so it lives exactly as long as the statement.
		if qd.Totaltime == nil {
			qd.Totaltime = execstats.NewInstrumentation(execstats.InstrumentAll)
			if l.knobs.TimeSource != nil {
				qd.Totaltime.SetTimeSource(l.knobs.TimeSource)
			}
		}
	}
	return nil
}

// execRun tracks nesting depth around the run stage. The depth is restored on
// every exit path, including error returns and panics from the delegated
// call; the failure itself propagates unchanged.
func (l *PlanLogger) execRun(ctx context.Context, qd *exechook.QueryDesc, params exechook.RunParams) error {
	l.nesting++
	defer func() { l.nesting-- }()
	if l.prevRun != nil {
		return l.prevRun(ctx, qd, params)
	}
	return exechook.StandardExecutorRun(ctx, qd, params)
}

// execFinish tracks nesting depth around the finish stage, like execRun.
func (l *PlanLogger) execFinish(ctx context.Context, qd *exechook.QueryDesc) error {
	l.nesting++
	defer func() { l.nesting-- }()
	if l.prevFinish != nil {
		return l.prevFinish(ctx, qd)
	}
	return exechook.StandardExecutorFinish(ctx, qd)
}

// execEnd logs the statement's plan if it qualifies, then delegates the
// actual teardown.
func (l *PlanLogger) execEnd(ctx context.Context, qd *exechook.QueryDesc) error {
	if qd.Totaltime != nil && l.enabled() && l.sampled {
		// Close out the accumulation. Several layers of an interposition
		// chain may each do this; finalization is idempotent.
		qd.Totaltime.Finalize()

		msec := qd.Totaltime.TotalMillis()
		if qd.Totaltime.Total >= logMinDuration.Get(l.sv) {
			l.logPlan(ctx, qd, msec)
		}
	}

	if l.prevEnd != nil {
		return l.prevEnd(ctx, qd)
	}
	return exechook.StandardExecutorEnd(ctx, qd)
}

func (l *PlanLogger) logPlan(ctx context.Context, qd *exechook.QueryDesc, msec float64) {
	sv := l.sv
	flags := explain.Flags{
		// Analyze output needs statistics that were actually collected.
		Analyze: qd.InstrumentOptions != 0 && logAnalyze.Get(sv),
		Verbose: logVerbose.Get(sv),
		Format:  explain.Format(logFormat.Get(sv)),
	}
	flags.Buffers = flags.Analyze && logBuffers.Get(sv)
	flags.Timing = flags.Analyze && logTiming.Get(sv)
	flags.Summary = flags.Analyze

	ob := explain.NewOutputBuilder(flags)
	ob.BeginOutput()
	ob.AddQueryText(qd.SQL)
	if qd.Plan != nil {
		ob.AddPlan(qd.Plan)
	}
	if flags.Analyze && logTriggers.Get(sv) {
		ob.AddTriggers(qd.TriggerStats())
	}
	ob.AddExecutionTime(qd.Totaltime.Total)
	ob.EndOutput()

	out := ob.Build()
	// Remove the report's own final line break; the log entry is one line
	// plus the report body.
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	// The explain engine's JSON mode emits a bracket-grouped document
	// fragment. Patch the bracket pair into braces so the logged report is a
	// single JSON object. This is a textual fix-up on the finished buffer,
	// not a re-render.
	if flags.Format == explain.FormatJSON && len(out) > 0 {
		patched := []byte(out)
		patched[0] = '{'
		patched[len(patched)-1] = '}'
		out = string(patched)
	}

	// The ambient logging context identifies the statement; repeating it
	// here would be duplication, hence the statement tag is suppressed.
	log.InfofHideStmt(ctx, "duration: %.3f ms  plan:\n%s", msec, out)
}
