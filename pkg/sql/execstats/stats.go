// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package execstats provides the per-statement instrumentation accumulator
// attached to a statement's execution state. The executor drives the timer
// around each run cycle; consumers finalize the accumulation once collection
// ends and read the totals.
package execstats

import (
	"time"

	"github.com/cockroachdb/autoexplain/pkg/util/timeutil"
)

// InstrumentOption selects which statistics the executor collects for a
// statement.
type InstrumentOption uint8

const (
	// InstrumentTimer collects wall-clock timing in addition to row counts.
	InstrumentTimer InstrumentOption = 1 << iota
	// InstrumentRows collects row counts only.
	InstrumentRows
	// InstrumentBuffers collects buffer usage counters.
	InstrumentBuffers
)

// InstrumentAll enables every collection option.
const InstrumentAll = InstrumentTimer | InstrumentRows | InstrumentBuffers

// BufferUsage accumulates buffer access counters for a statement.
type BufferUsage struct {
	Hits    int64
	Misses  int64
	Dirtied int64
	Written int64
}

// Add accumulates other into b.
func (b *BufferUsage) Add(other BufferUsage) {
	b.Hits += other.Hits
	b.Misses += other.Misses
	b.Dirtied += other.Dirtied
	b.Written += other.Written
}

// Instrumentation accumulates execution statistics across one or more run
// cycles of a statement. Cycle-in-progress counters are moved into the totals
// by Finalize.
//
// An Instrumentation attached to a statement's execution state lives exactly
// as long as that state; nothing frees it explicitly.
type Instrumentation struct {
	opts  InstrumentOption
	nowFn func() time.Time

	running   bool
	startTime time.Time

	// Counters for the cycle in progress, moved into the totals by Finalize.
	accumElapsed time.Duration
	accumRows    int64

	// Finalized totals.
	Total   time.Duration
	Rows    int64
	Buffers BufferUsage
}

// NewInstrumentation returns an Instrumentation collecting the statistics
// selected by opts.
func NewInstrumentation(opts InstrumentOption) *Instrumentation {
	return &Instrumentation{opts: opts, nowFn: timeutil.Now}
}

// SetTimeSource replaces the wall clock, for tests.
func (i *Instrumentation) SetTimeSource(nowFn func() time.Time) {
	i.nowFn = nowFn
}

// NeedsTimer reports whether timing collection was requested.
func (i *Instrumentation) NeedsTimer() bool { return i.opts&InstrumentTimer != 0 }

// NeedsBuffers reports whether buffer usage collection was requested.
func (i *Instrumentation) NeedsBuffers() bool { return i.opts&InstrumentBuffers != 0 }

// StartTimer begins a timing cycle. Starting an already running timer is a
// no-op.
func (i *Instrumentation) StartTimer() {
	if i.running {
		return
	}
	i.running = true
	i.startTime = i.nowFn()
}

// StopTimer ends the current timing cycle, accumulating the elapsed time into
// the in-progress counter. Stopping a stopped timer is a no-op.
func (i *Instrumentation) StopTimer() {
	if !i.running {
		return
	}
	i.accumElapsed += i.nowFn().Sub(i.startTime)
	i.running = false
}

// AddRows counts rows processed in the current cycle.
func (i *Instrumentation) AddRows(n int64) {
	i.accumRows += n
}

// Finalize moves the in-progress counters into the totals. The caller must
// have stopped the timer. Finalize is idempotent: once the in-progress
// counters have been drained, calling it again does not change the totals,
// so it is safe for several layers of an interposition chain to each
// finalize the same handle.
func (i *Instrumentation) Finalize() {
	i.Total += i.accumElapsed
	i.Rows += i.accumRows
	i.accumElapsed = 0
	i.accumRows = 0
}

// TotalMillis returns the finalized total elapsed time in milliseconds,
// including the fractional part.
func (i *Instrumentation) TotalMillis() float64 {
	return float64(i.Total) / float64(time.Millisecond)
}
