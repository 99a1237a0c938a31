// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// registry contains all defined settings, their types and default values.
//
// Registry should never be mutated after init (except in tests), as it is
// read concurrently by different callers.
var registry = map[string]Setting{}

// numSlots is the number of assigned value slots. Slot indices are handed out
// in registration order.
var numSlots slotIdx

// frozen becomes non-zero once the registry is "live", i.e. once the process
// has started serving traffic. This must be accessed atomically because test
// servers within the same process may call Freeze concurrently.
var frozen int32

// Freeze ensures that no new settings can be defined after startup completes.
func Freeze() { atomic.StoreInt32(&frozen, 1) }

func assertNotFrozen(key string) {
	if atomic.LoadInt32(&frozen) > 0 {
		panic(fmt.Sprintf("registration must occur before server start: %s", key))
	}
}

// register adds a setting to the registry and assigns its value slot.
func register(key string, s Setting, c *common) {
	assertNotFrozen(key)
	if _, ok := registry[key]; ok {
		panic(fmt.Sprintf("setting already defined: %s", key))
	}
	if numSlots >= maxSettings {
		panic(fmt.Sprintf("too many settings; increase maxSettings: %s", key))
	}
	c.slot = numSlots
	numSlots++
	registry[key] = s
}

// Keys returns a sorted string array with all the known keys.
func Keys() (res []string) {
	res = make([]string, 0, len(registry))
	for k, s := range registry {
		if s.(interface{ Hidden() bool }).Hidden() {
			continue
		}
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// LookupForLocalAccess returns a Setting by name.
func LookupForLocalAccess(key string) (Setting, bool) {
	s, ok := registry[key]
	return s, ok
}
