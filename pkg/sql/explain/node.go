// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package explain

import (
	"time"

	"github.com/cockroachdb/autoexplain/pkg/sql/execstats"
)

// Field is one attribute line of a plan node, e.g. "Filter: x > 10".
type Field struct {
	Key   string
	Value string
}

// NodeStats carries the actual runtime statistics of one plan node, present
// when the statement ran with instrumentation.
type NodeStats struct {
	RowCount int64
	Loops    int64
	Time     time.Duration
}

// Node is one operator of a plan tree handed to the OutputBuilder.
type Node struct {
	// Name is the operator name, e.g. "Seq Scan on kv".
	Name string
	// Fields are always emitted, in order.
	Fields []Field
	// VerboseFields are emitted only in verbose mode.
	VerboseFields []Field
	// Actual is emitted only in analyze mode, when present.
	Actual *NodeStats
	// Buffers is emitted only when buffer reporting is on, when present.
	Buffers *execstats.BufferUsage
	// Children are sub-plans.
	Children []*Node
}

// TriggerStats describes one trigger's cumulative execution statistics for a
// statement.
type TriggerStats struct {
	Name  string
	Calls int64
	Time  time.Duration
}
