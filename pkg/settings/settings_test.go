// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var boolT = RegisterBoolSetting(SystemOnly, "test.bool.t", "desc", true)
var boolF = RegisterBoolSetting(SystemOnly, "test.bool.f", "desc", false)
var dur = RegisterDurationSetting(SystemOnly, "test.d", "desc", time.Second)
var durMin = RegisterDurationSetting(
	SystemOnly, "test.d.min", "desc", -time.Millisecond,
	DurationWithMinimum(-time.Millisecond))
var fl = RegisterFloatSetting(SystemOnly, "test.f", "desc", 5.4)
var frac = RegisterFloatSetting(SystemOnly, "test.frac", "desc", 1.0, Fraction)
var en = RegisterEnumSetting(SystemOnly, "test.e", "desc", "foo",
	map[int64]string{0: "foo", 1: "bar", 2: "baz"})
var _ = RegisterBoolSetting(SystemOnly, "test.hidden", "desc", false, WithHidden)

func TestDefaults(t *testing.T) {
	sv := NewValues()
	require.True(t, boolT.Get(sv))
	require.False(t, boolF.Get(sv))
	require.Equal(t, time.Second, dur.Get(sv))
	require.Equal(t, -time.Millisecond, durMin.Get(sv))
	require.Equal(t, 5.4, fl.Get(sv))
	require.Equal(t, 1.0, frac.Get(sv))
	require.Equal(t, int64(0), en.Get(sv))
	require.Equal(t, "foo", en.String(sv))
}

func TestOverride(t *testing.T) {
	sv := NewValues()

	boolT.Override(sv, false)
	require.False(t, boolT.Get(sv))

	dur.Override(sv, 42*time.Millisecond)
	require.Equal(t, 42*time.Millisecond, dur.Get(sv))

	frac.Override(sv, 0.5)
	require.Equal(t, 0.5, frac.Get(sv))

	en.Override(sv, 2)
	require.Equal(t, "baz", en.String(sv))

	// Overrides are per-container.
	sv2 := NewValues()
	require.True(t, boolT.Get(sv2))
	require.Equal(t, time.Second, dur.Get(sv2))
}

func TestValidation(t *testing.T) {
	sv := NewValues()
	require.Panics(t, func() { frac.Override(sv, 1.5) })
	require.Panics(t, func() { frac.Override(sv, -0.1) })
	require.Panics(t, func() { durMin.Override(sv, -time.Second) })
	require.Panics(t, func() { en.Override(sv, 7) })
}

func TestRegistry(t *testing.T) {
	require.Panics(t, func() {
		RegisterBoolSetting(SystemOnly, "test.bool.t", "dup", false)
	})

	s, ok := LookupForLocalAccess("test.e")
	require.True(t, ok)
	require.Equal(t, "e", s.Typ())
	_, ok = LookupForLocalAccess("test.dne")
	require.False(t, ok)

	keys := Keys()
	require.Contains(t, keys, "test.bool.t")
	require.NotContains(t, keys, "test.hidden")
}

func TestFreeze(t *testing.T) {
	Freeze()
	defer func() { atomic.StoreInt32(&frozen, 0) }()
	require.Panics(t, func() {
		RegisterBoolSetting(SystemOnly, "test.late", "desc", false)
	})
	_, ok := LookupForLocalAccess("test.late")
	require.False(t, ok)
}

func TestEnumParse(t *testing.T) {
	v, ok := en.ParseEnum("BAR")
	require.True(t, ok)
	require.Equal(t, int64(1), v)
	_, ok = en.ParseEnum("quux")
	require.False(t, ok)
}
