// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package exechook defines the executor's four-stage lifecycle contract
// (start/run/finish/end) and the hook registry through which interposing
// layers stack. Each lifecycle stage has one hook slot; an interposing layer
// swaps its handler in, remembers the previous occupant, and calls through to
// it (or to the standard behavior when there was none). The standard behavior
// is the chain's terminal node.
package exechook

import (
	"context"

	"github.com/cockroachdb/autoexplain/pkg/sql/execstats"
	"github.com/cockroachdb/autoexplain/pkg/sql/explain"
)

// ExecFlags modify how a statement is started.
type ExecFlags uint8

const (
	// ExplainOnly indicates the statement is being prepared for plan display
	// only and will not really run.
	ExplainOnly ExecFlags = 1 << iota
)

// RunParams carries the run-stage arguments, passed through the hook chain
// unchanged.
type RunParams struct {
	// Count limits the number of rows to process; zero means no limit.
	Count uint64
	// ExecuteOnce indicates the run stage will not be re-entered for more
	// rows.
	ExecuteOnce bool
}

// StartHook is the start-of-statement interception point.
type StartHook func(ctx context.Context, qd *QueryDesc, flags ExecFlags) error

// RunHook is the run-stage interception point.
type RunHook func(ctx context.Context, qd *QueryDesc, params RunParams) error

// FinishHook is the finish-stage (after-triggers) interception point.
type FinishHook func(ctx context.Context, qd *QueryDesc) error

// EndHook is the end-of-statement interception point.
type EndHook func(ctx context.Context, qd *QueryDesc) error

// Registry holds the current occupant of each lifecycle hook slot. A nil slot
// means the standard behavior runs directly.
//
// Slots are swapped only while no statement is executing (module load and
// unload); the registry provides no locking of its own.
type Registry struct {
	start  StartHook
	run    RunHook
	finish FinishHook
	end    EndHook
}

// SwapStartHook installs h in the start slot and returns the previous
// occupant.
func (r *Registry) SwapStartHook(h StartHook) StartHook {
	prev := r.start
	r.start = h
	return prev
}

// SwapRunHook installs h in the run slot and returns the previous occupant.
func (r *Registry) SwapRunHook(h RunHook) RunHook {
	prev := r.run
	r.run = h
	return prev
}

// SwapFinishHook installs h in the finish slot and returns the previous
// occupant.
func (r *Registry) SwapFinishHook(h FinishHook) FinishHook {
	prev := r.finish
	r.finish = h
	return prev
}

// SwapEndHook installs h in the end slot and returns the previous occupant.
func (r *Registry) SwapEndHook(h EndHook) EndHook {
	prev := r.end
	r.end = h
	return prev
}

// ExecutorStart is the host's entry point to the start stage.
func (r *Registry) ExecutorStart(ctx context.Context, qd *QueryDesc, flags ExecFlags) error {
	if r.start != nil {
		return r.start(ctx, qd, flags)
	}
	return StandardExecutorStart(ctx, qd, flags)
}

// ExecutorRun is the host's entry point to the run stage.
func (r *Registry) ExecutorRun(ctx context.Context, qd *QueryDesc, params RunParams) error {
	if r.run != nil {
		return r.run(ctx, qd, params)
	}
	return StandardExecutorRun(ctx, qd, params)
}

// ExecutorFinish is the host's entry point to the finish stage.
func (r *Registry) ExecutorFinish(ctx context.Context, qd *QueryDesc) error {
	if r.finish != nil {
		return r.finish(ctx, qd)
	}
	return StandardExecutorFinish(ctx, qd)
}

// ExecutorEnd is the host's entry point to the end stage.
func (r *Registry) ExecutorEnd(ctx context.Context, qd *QueryDesc) error {
	if r.end != nil {
		return r.end(ctx, qd)
	}
	return StandardExecutorEnd(ctx, qd)
}

// Run drives a statement through all four lifecycle stages. It is a
// convenience for hosts (and tests) that do not interleave other work between
// stages. The end stage runs only when the earlier stages completed normally,
// matching the host contract that no report is emitted for an aborted
// statement.
func (r *Registry) Run(ctx context.Context, qd *QueryDesc, flags ExecFlags) error {
	if err := r.ExecutorStart(ctx, qd, flags); err != nil {
		return err
	}
	if flags&ExplainOnly == 0 {
		if err := r.ExecutorRun(ctx, qd, RunParams{ExecuteOnce: true}); err != nil {
			return err
		}
		if err := r.ExecutorFinish(ctx, qd); err != nil {
			return err
		}
	}
	return r.ExecutorEnd(ctx, qd)
}

// Trigger is an after-trigger attached to a statement. The standard finish
// stage fires each trigger once per queued event and accumulates its
// statistics.
type Trigger struct {
	Name string
	// Events is the number of queued firings; zero means one.
	Events int64
	// Fire runs the trigger body. Trigger bodies that execute nested
	// statements drive them through the same registry.
	Fire func(ctx context.Context) error

	calls   int64
	elapsed int64 // nanoseconds
}

// QueryDesc is the per-statement execution state threaded through the
// lifecycle stages. The executor owns it; interposing layers may attach
// instrumentation state to it. It lives exactly as long as the statement.
type QueryDesc struct {
	// SQL is the statement text.
	SQL string
	// Plan is the statement's execution plan.
	Plan *explain.Node
	// Body performs the statement's actual work in the run stage.
	Body func(ctx context.Context) error
	// Triggers are fired by the standard finish stage.
	Triggers []*Trigger

	// InstrumentOptions selects the statistics the executor collects. Set
	// before the start stage delegates; never revised afterwards.
	InstrumentOptions execstats.InstrumentOption
	// Totaltime accumulates the statement's total elapsed time. Attached
	// lazily by an interposing layer; driven by the standard run and finish
	// stages when present.
	Totaltime *execstats.Instrumentation

	started  bool
	finished bool
}
