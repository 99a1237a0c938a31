// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// EnumSetting is a setting that uses a value from an enumeration. Values are
// stored as their int64 ordinal; names are used in the string representation
// and for parsing.
type EnumSetting struct {
	common
	defaultValue int64
	enumValues   map[int64]string
}

var _ Setting = &EnumSetting{}

// Get retrieves the enum ordinal in the setting.
func (e *EnumSetting) Get(sv *Values) int64 {
	return sv.getInt64(e.slot)
}

// Override changes the setting value in sv. It panics if the ordinal is not a
// member of the enumeration.
func (e *EnumSetting) Override(sv *Values, v int64) {
	if _, ok := e.enumValues[v]; !ok {
		panic(errors.Errorf("unknown %s enum value: %d", e.key, v))
	}
	sv.setInt64(e.slot, v)
}

// ParseEnum returns the ordinal corresponding to a name, if it exists.
func (e *EnumSetting) ParseEnum(raw string) (int64, bool) {
	lower := strings.ToLower(raw)
	for k, v := range e.enumValues {
		if v == lower {
			return k, true
		}
	}
	return 0, false
}

// Default returns the default ordinal.
func (e *EnumSetting) Default() int64 { return e.defaultValue }

// Typ returns the short (1 char) string denoting the type of setting.
func (*EnumSetting) Typ() string { return "e" }

func (e *EnumSetting) String(sv *Values) string {
	return e.enumValues[e.Get(sv)]
}

func (e *EnumSetting) setToDefault(sv *Values) {
	sv.setInt64(e.slot, e.defaultValue)
}

func enumValuesToDesc(enumValues map[int64]string) string {
	ordinals := make([]int64, 0, len(enumValues))
	for k := range enumValues {
		ordinals = append(ordinals, k)
	}
	sort.Slice(ordinals, func(i, j int) bool { return ordinals[i] < ordinals[j] })
	names := make([]string, len(ordinals))
	for i, k := range ordinals {
		names[i] = enumValues[k]
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// RegisterEnumSetting defines a new setting with type int backed by an
// enumeration with the given name-to-ordinal mapping.
func RegisterEnumSetting(
	class Class,
	key, desc string,
	defaultValue string,
	enumValues map[int64]string,
	opts ...SettingOption,
) *EnumSetting {
	normalized := make(map[int64]string, len(enumValues))
	var defaultOrdinal int64
	found := false
	for k, v := range enumValues {
		lower := strings.ToLower(v)
		normalized[k] = lower
		if lower == strings.ToLower(defaultValue) {
			defaultOrdinal = k
			found = true
		}
	}
	if !found {
		panic(errors.Errorf(
			"enum registered with default value %s not in map %s",
			defaultValue, enumValuesToDesc(normalized)))
	}
	setting := &EnumSetting{defaultValue: defaultOrdinal, enumValues: normalized}
	setting.common.init(class, key, desc+" "+enumValuesToDesc(normalized), 0)
	register(key, setting, &setting.common)
	setting.common.apply(opts)
	return setting
}
