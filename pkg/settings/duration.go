// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import (
	"time"

	"github.com/cockroachdb/errors"
)

// DurationSetting is the interface of a setting variable that will be updated
// automatically when the corresponding cluster-wide setting of type
// "duration" is updated.
type DurationSetting struct {
	common
	defaultValue time.Duration
	validateFn   func(time.Duration) error
}

var _ Setting = &DurationSetting{}

// Get retrieves the duration value in the setting.
func (d *DurationSetting) Get(sv *Values) time.Duration {
	return time.Duration(sv.getInt64(d.slot))
}

// Override changes the setting value in sv. It panics if the value does not
// pass the setting's validation; overrides come from in-process callers that
// are expected to supply valid values.
func (d *DurationSetting) Override(sv *Values, v time.Duration) {
	if err := d.Validate(v); err != nil {
		panic(err)
	}
	sv.setInt64(d.slot, int64(v))
}

// Validate checks v against the setting's validation function, if any.
func (d *DurationSetting) Validate(v time.Duration) error {
	if d.validateFn != nil {
		return d.validateFn(v)
	}
	return nil
}

// Default returns the default value.
func (d *DurationSetting) Default() time.Duration { return d.defaultValue }

// Typ returns the short (1 char) string denoting the type of setting.
func (*DurationSetting) Typ() string { return "d" }

func (d *DurationSetting) String(sv *Values) string {
	return d.Get(sv).String()
}

func (d *DurationSetting) setToDefault(sv *Values) {
	sv.setInt64(d.slot, int64(d.defaultValue))
}

// DurationWithMinimum rejects values below min.
func DurationWithMinimum(min time.Duration) SettingOption {
	return SettingOption{durationOpt: func(d *DurationSetting) {
		d.validateFn = func(v time.Duration) error {
			if v < min {
				return errors.Errorf("cannot be set to a value below %s: %s", min, v)
			}
			return nil
		}
	}}
}

// NonNegativeDuration rejects negative values.
var NonNegativeDuration = DurationWithMinimum(0)

// RegisterDurationSetting defines a new setting with type duration.
func RegisterDurationSetting(
	class Class, key, desc string, defaultValue time.Duration, opts ...SettingOption,
) *DurationSetting {
	setting := &DurationSetting{defaultValue: defaultValue}
	setting.common.init(class, key, desc, 0)
	for _, opt := range opts {
		if opt.durationOpt != nil {
			opt.durationOpt(setting)
		}
	}
	if err := setting.Validate(defaultValue); err != nil {
		panic(errors.Wrapf(err, "invalid default for %s", key))
	}
	register(key, setting, &setting.common)
	setting.common.apply(opts)
	return setting
}
