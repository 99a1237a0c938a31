// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import "strconv"

// BoolSetting is the interface of a setting variable that will be updated
// automatically when the corresponding cluster-wide setting of type "bool" is
// updated.
type BoolSetting struct {
	common
	defaultValue bool
}

var _ Setting = &BoolSetting{}

// Get retrieves the bool value in the setting.
func (b *BoolSetting) Get(sv *Values) bool {
	return sv.getInt64(b.slot) != 0
}

// Override changes the setting value in sv.
func (b *BoolSetting) Override(sv *Values, v bool) {
	sv.setInt64(b.slot, boolToInt(v))
}

// Default returns the default value.
func (b *BoolSetting) Default() bool { return b.defaultValue }

// Typ returns the short (1 char) string denoting the type of setting.
func (*BoolSetting) Typ() string { return "b" }

func (b *BoolSetting) String(sv *Values) string {
	return strconv.FormatBool(b.Get(sv))
}

func (b *BoolSetting) setToDefault(sv *Values) {
	sv.setInt64(b.slot, boolToInt(b.defaultValue))
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// RegisterBoolSetting defines a new setting with type bool.
func RegisterBoolSetting(
	class Class, key, desc string, defaultValue bool, opts ...SettingOption,
) *BoolSetting {
	setting := &BoolSetting{defaultValue: defaultValue}
	setting.common.init(class, key, desc, 0)
	register(key, setting, &setting.common)
	setting.common.apply(opts)
	return setting
}
