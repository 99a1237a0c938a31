// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import "sync/atomic"

// maxSettings is the maximum number of settings that the process can
// register. Slots are preallocated in every Values container so that reads
// stay lock-free.
const maxSettings = 256

type slotIdx int32

// Values is a container that stores the current value of every registered
// setting. Many Values containers can coexist in a single process (e.g. one
// per test server); each setting's accessors take the container to read from.
//
// All setting types store their value in a single int64 slot: booleans as
// 0/1, durations and ints as their int64 value, floats as their IEEE 754
// bits, enums as their ordinal. Reads and writes are atomic.
type Values struct {
	intVals [maxSettings]int64
}

// NewValues returns a Values container initialized with the default value of
// every setting registered so far.
func NewValues() *Values {
	sv := &Values{}
	for _, s := range registry {
		s.setToDefault(sv)
	}
	return sv
}

// TestingValues is like NewValues, under a name that documents the intent at
// test call sites.
func TestingValues() *Values { return NewValues() }

func (sv *Values) setInt64(slot slotIdx, v int64) {
	atomic.StoreInt64(&sv.intVals[slot], v)
}

func (sv *Values) getInt64(slot slotIdx) int64 {
	return atomic.LoadInt64(&sv.intVals[slot])
}
