// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package exechook

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestSwapReturnsPrevious(t *testing.T) {
	var r Registry

	var order []string
	first := func(ctx context.Context, qd *QueryDesc, flags ExecFlags) error {
		order = append(order, "first")
		return StandardExecutorStart(ctx, qd, flags)
	}
	require.Nil(t, r.SwapStartHook(first))

	var prev StartHook
	second := func(ctx context.Context, qd *QueryDesc, flags ExecFlags) error {
		order = append(order, "second")
		if prev != nil {
			return prev(ctx, qd, flags)
		}
		return StandardExecutorStart(ctx, qd, flags)
	}
	prev = r.SwapStartHook(second)
	require.NotNil(t, prev)

	qd := &QueryDesc{SQL: "SELECT 1"}
	require.NoError(t, r.ExecutorStart(context.Background(), qd, 0))
	require.Equal(t, []string{"second", "first"}, order)
	require.True(t, qd.started)

	// Restoring the previous occupant removes the second layer.
	r.SwapStartHook(prev)
	order = nil
	qd2 := &QueryDesc{SQL: "SELECT 2"}
	require.NoError(t, r.ExecutorStart(context.Background(), qd2, 0))
	require.Equal(t, []string{"first"}, order)
}

func TestStandardLifecycle(t *testing.T) {
	var r Registry
	ran := false
	qd := &QueryDesc{
		SQL:  "UPDATE kv SET v = v + 1",
		Body: func(ctx context.Context) error { ran = true; return nil },
	}
	require.NoError(t, r.Run(context.Background(), qd, 0))
	require.True(t, ran)
	require.True(t, qd.finished)
}

func TestExplainOnlySkipsRun(t *testing.T) {
	var r Registry
	qd := &QueryDesc{
		SQL:  "SELECT 1",
		Body: func(ctx context.Context) error { t.Fatal("body ran"); return nil },
	}
	require.NoError(t, r.Run(context.Background(), qd, ExplainOnly))
	require.True(t, qd.finished)
}

func TestStandardFinishFiresTriggers(t *testing.T) {
	var r Registry
	fired := 0
	qd := &QueryDesc{
		SQL: "INSERT INTO kv VALUES (1, 2)",
		Triggers: []*Trigger{
			{
				Name:   "audit_trg",
				Events: 3,
				Fire:   func(ctx context.Context) error { fired++; return nil },
			},
		},
	}
	require.NoError(t, r.Run(context.Background(), qd, 0))
	require.Equal(t, 3, fired)

	stats := qd.TriggerStats()
	require.Len(t, stats, 1)
	require.Equal(t, "audit_trg", stats[0].Name)
	require.Equal(t, int64(3), stats[0].Calls)
}

func TestTriggerErrorStopsFinish(t *testing.T) {
	var r Registry
	boom := errors.New("trigger failure")
	qd := &QueryDesc{
		SQL: "INSERT INTO kv VALUES (1, 2)",
		Triggers: []*Trigger{
			{Name: "bad_trg", Fire: func(ctx context.Context) error { return boom }},
		},
	}
	err := r.Run(context.Background(), qd, 0)
	require.ErrorIs(t, err, boom)
	require.False(t, qd.finished)
}

func TestStageOrderEnforced(t *testing.T) {
	var r Registry
	ctx := context.Background()

	qd := &QueryDesc{SQL: "SELECT 1"}
	require.Error(t, r.ExecutorRun(ctx, qd, RunParams{}))
	require.Error(t, r.ExecutorFinish(ctx, qd))

	require.NoError(t, r.ExecutorStart(ctx, qd, 0))
	require.Error(t, r.ExecutorStart(ctx, qd, 0))
}
