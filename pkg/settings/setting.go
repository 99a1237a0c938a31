// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

// Class describes the scope and mutability of a setting. It determines who
// may change the value at runtime.
type Class int8

const (
	// SystemOnly settings are only visible and changeable by privileged
	// (operator) roles.
	SystemOnly Class = iota
	// ApplicationLevel settings are visible and changeable by regular
	// application tenants.
	ApplicationLevel
)

// Setting is the interface exposing the metadata shared by all setting types.
//
// Entries in the registry are accompanied by an exported, typesafe accessor
// (Get/Override) on the concrete setting type.
type Setting interface {
	// Class returns the scope of the setting.
	Class() Class
	// Key returns the name that identifies the setting in the registry.
	Key() string
	// Typ returns the short (1 char) string denoting the type of setting.
	Typ() string
	// String returns the string representation of the setting's current value
	// in sv.
	String(sv *Values) string
	// Description describes the setting for a settings listing.
	Description() string

	// setToDefault initializes the setting's slot in sv to the default value.
	setToDefault(sv *Values)
	// slotIdx returns the position of the setting's value in a Values
	// container.
	slotIdx() slotIdx
}

// common is embedded in all setting types. It carries the registry metadata
// assigned at registration time.
type common struct {
	class  Class
	key    string
	desc   string
	slot   slotIdx
	hidden bool
}

func (c *common) Class() Class        { return c.class }
func (c *common) Key() string         { return c.key }
func (c *common) Description() string { return c.desc }
func (c *common) slotIdx() slotIdx    { return c.slot }

func (c *common) init(class Class, key, desc string, slot slotIdx) {
	c.class = class
	c.key = key
	c.desc = desc
	c.slot = slot
}

// Hidden returns whether the setting is excluded from settings listings.
func (c *common) Hidden() bool { return c.hidden }

// SettingOption customizes a setting at registration time.
type SettingOption struct {
	commonOpt   func(*common)
	durationOpt func(*DurationSetting)
	floatOpt    func(*FloatSetting)
}

// WithHidden prevents the setting from showing up in settings listings. It
// can still be used if the exact setting name is known. Use it for
// in-development features and other settings that should not be user-visible.
var WithHidden = SettingOption{commonOpt: func(c *common) { c.hidden = true }}

func (c *common) apply(opts []SettingOption) {
	for _, opt := range opts {
		if opt.commonOpt != nil {
			opt.commonOpt(c)
		}
	}
}
