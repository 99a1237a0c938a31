// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package exechook

import (
	"context"
	"time"

	"github.com/cockroachdb/autoexplain/pkg/sql/explain"
	"github.com/cockroachdb/autoexplain/pkg/util/timeutil"
	"github.com/cockroachdb/errors"
)

// StandardExecutorStart is the terminal start-stage behavior: it marks the
// statement as started.
func StandardExecutorStart(ctx context.Context, qd *QueryDesc, flags ExecFlags) error {
	if qd.started {
		return errors.AssertionFailedf("statement started twice: %s", qd.SQL)
	}
	qd.started = true
	return nil
}

// StandardExecutorRun is the terminal run-stage behavior: it runs the
// statement body, driving the cumulative timer around it when one is
// attached.
func StandardExecutorRun(ctx context.Context, qd *QueryDesc, params RunParams) error {
	if !qd.started {
		return errors.AssertionFailedf("statement run before start: %s", qd.SQL)
	}
	if qd.Totaltime != nil {
		qd.Totaltime.StartTimer()
		defer qd.Totaltime.StopTimer()
	}
	if qd.Body == nil {
		return nil
	}
	return qd.Body(ctx)
}

// StandardExecutorFinish is the terminal finish-stage behavior: it fires the
// statement's after-triggers, accumulating per-trigger statistics. Trigger
// time counts toward the statement's cumulative timer, as it is part of the
// statement's execution.
func StandardExecutorFinish(ctx context.Context, qd *QueryDesc) error {
	if !qd.started {
		return errors.AssertionFailedf("statement finished before start: %s", qd.SQL)
	}
	if qd.Totaltime != nil {
		qd.Totaltime.StartTimer()
		defer qd.Totaltime.StopTimer()
	}
	for _, trg := range qd.Triggers {
		events := trg.Events
		if events == 0 {
			events = 1
		}
		for i := int64(0); i < events; i++ {
			begin := timeutil.Now()
			err := trg.Fire(ctx)
			trg.elapsed += int64(timeutil.Since(begin))
			trg.calls++
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// StandardExecutorEnd is the terminal end-of-statement behavior: it marks the
// statement finished. The statement's attached state becomes garbage with the
// QueryDesc itself.
func StandardExecutorEnd(ctx context.Context, qd *QueryDesc) error {
	if qd.finished {
		return errors.AssertionFailedf("statement ended twice: %s", qd.SQL)
	}
	qd.finished = true
	return nil
}

// TriggerStats returns the accumulated statistics of the statement's
// triggers, for plan reports.
func (qd *QueryDesc) TriggerStats() []explain.TriggerStats {
	if len(qd.Triggers) == 0 {
		return nil
	}
	stats := make([]explain.TriggerStats, len(qd.Triggers))
	for i, trg := range qd.Triggers {
		stats[i] = explain.TriggerStats{
			Name:  trg.Name,
			Calls: trg.calls,
			Time:  time.Duration(trg.elapsed),
		}
	}
	return stats
}
