// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package explain

import "github.com/cockroachdb/errors"

// Format identifies the structured output mode of a report.
type Format int8

const (
	// FormatText renders an indented plan tree.
	FormatText Format = iota
	// FormatXML renders an XML document.
	FormatXML
	// FormatJSON renders a JSON document fragment grouped in a bracket pair.
	FormatJSON
	// FormatYAML renders a YAML document.
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatXML:
		return "xml"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "invalid"
	}
}

// ParseFormat maps a format name to its Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text":
		return FormatText, nil
	case "xml":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	case "yaml":
		return FormatYAML, nil
	default:
		return 0, errors.Errorf("unknown explain format: %q", s)
	}
}

// Flags are the options governing what an OutputBuilder emits and how.
type Flags struct {
	// Analyze includes actual runtime statistics rather than a plan-only
	// report.
	Analyze bool
	// Verbose includes fields normally omitted.
	Verbose bool
	// Buffers includes buffer usage counters. Only effective with Analyze.
	Buffers bool
	// Timing includes per-node timing. Only effective with Analyze.
	Timing bool
	// Summary appends the total execution time.
	Summary bool
	// Format selects the output mode.
	Format Format
}
