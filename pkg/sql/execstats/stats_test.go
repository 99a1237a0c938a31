// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package execstats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// manualClock returns times advancing by a fixed step on every reading.
type manualClock struct {
	now  time.Time
	step time.Duration
}

func (c *manualClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func TestInstrumentationAccumulates(t *testing.T) {
	clock := &manualClock{step: 10 * time.Millisecond}
	instr := NewInstrumentation(InstrumentAll)
	instr.SetTimeSource(clock.Now)

	instr.StartTimer()
	instr.AddRows(3)
	instr.StopTimer()
	instr.StartTimer()
	instr.AddRows(2)
	instr.StopTimer()
	instr.Finalize()

	require.Equal(t, 20*time.Millisecond, instr.Total)
	require.Equal(t, int64(5), instr.Rows)
	require.Equal(t, 20.0, instr.TotalMillis())
}

func TestFinalizeIdempotent(t *testing.T) {
	clock := &manualClock{step: 7 * time.Millisecond}
	instr := NewInstrumentation(InstrumentTimer)
	instr.SetTimeSource(clock.Now)

	instr.StartTimer()
	instr.StopTimer()
	instr.Finalize()
	total := instr.Total
	instr.Finalize()
	require.Equal(t, total, instr.Total)
	instr.Finalize()
	require.Equal(t, total, instr.Total)
}

func TestTimerNoops(t *testing.T) {
	clock := &manualClock{step: time.Millisecond}
	instr := NewInstrumentation(InstrumentTimer)
	instr.SetTimeSource(clock.Now)

	// Double start and double stop must not corrupt the accumulation.
	instr.StartTimer()
	instr.StartTimer()
	instr.StopTimer()
	instr.StopTimer()
	instr.Finalize()
	require.Equal(t, time.Millisecond, instr.Total)
}

func TestOptions(t *testing.T) {
	instr := NewInstrumentation(InstrumentRows | InstrumentBuffers)
	require.False(t, instr.NeedsTimer())
	require.True(t, instr.NeedsBuffers())

	instr.Buffers.Add(BufferUsage{Hits: 10, Misses: 2})
	instr.Buffers.Add(BufferUsage{Hits: 5, Dirtied: 1})
	require.Equal(t, int64(15), instr.Buffers.Hits)
	require.Equal(t, int64(2), instr.Buffers.Misses)
	require.Equal(t, int64(1), instr.Buffers.Dirtied)
}
