// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import (
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
)

// FloatSetting is the interface of a setting variable that will be updated
// automatically when the corresponding cluster-wide setting of type "float"
// is updated.
type FloatSetting struct {
	common
	defaultValue float64
	validateFn   func(float64) error
}

var _ Setting = &FloatSetting{}

// Get retrieves the float value in the setting.
func (f *FloatSetting) Get(sv *Values) float64 {
	return math.Float64frombits(uint64(sv.getInt64(f.slot)))
}

// Override changes the setting value in sv. It panics if the value does not
// pass the setting's validation.
func (f *FloatSetting) Override(sv *Values, v float64) {
	if err := f.Validate(v); err != nil {
		panic(err)
	}
	sv.setInt64(f.slot, int64(math.Float64bits(v)))
}

// Validate checks v against the setting's validation function, if any.
func (f *FloatSetting) Validate(v float64) error {
	if f.validateFn != nil {
		return f.validateFn(v)
	}
	return nil
}

// Default returns the default value.
func (f *FloatSetting) Default() float64 { return f.defaultValue }

// Typ returns the short (1 char) string denoting the type of setting.
func (*FloatSetting) Typ() string { return "f" }

func (f *FloatSetting) String(sv *Values) string {
	return strconv.FormatFloat(f.Get(sv), 'G', -1, 64)
}

func (f *FloatSetting) setToDefault(sv *Values) {
	sv.setInt64(f.slot, int64(math.Float64bits(f.defaultValue)))
}

// Fraction requires the setting to be a value in [0, 1].
var Fraction = SettingOption{floatOpt: func(f *FloatSetting) {
	f.validateFn = func(v float64) error {
		if v < 0 || v > 1 {
			return errors.Errorf("must be between 0 and 1 inclusive: %f", v)
		}
		return nil
	}
}}

// RegisterFloatSetting defines a new setting with type float.
func RegisterFloatSetting(
	class Class, key, desc string, defaultValue float64, opts ...SettingOption,
) *FloatSetting {
	setting := &FloatSetting{defaultValue: defaultValue}
	setting.common.init(class, key, desc, 0)
	for _, opt := range opts {
		if opt.floatOpt != nil {
			opt.floatOpt(setting)
		}
	}
	if err := setting.Validate(defaultValue); err != nil {
		panic(errors.Wrapf(err, "invalid default for %s", key))
	}
	register(key, setting, &setting.common)
	setting.common.apply(opts)
	return setting
}
