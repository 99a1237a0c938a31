// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package autoexplain

import (
	"time"

	"github.com/cockroachdb/autoexplain/pkg/settings"
	"github.com/cockroachdb/autoexplain/pkg/sql/explain"
)

// The tunables below are all privileged-only: plan logging reveals query
// shapes and runtime behavior, so only operators control it.

var logMinDuration = settings.RegisterDurationSetting(
	settings.SystemOnly,
	"sql.log.plan.min_duration",
	"minimum statement execution time above which plans are logged; "+
		"zero logs all plans, a negative value disables plan logging",
	-time.Millisecond,
	settings.DurationWithMinimum(-time.Millisecond),
)

var logAnalyze = settings.RegisterBoolSetting(
	settings.SystemOnly,
	"sql.log.plan.analyze.enabled",
	"include actual runtime statistics in logged plans",
	false,
)

var logVerbose = settings.RegisterBoolSetting(
	settings.SystemOnly,
	"sql.log.plan.verbose.enabled",
	"include verbose details in logged plans",
	false,
)

var logBuffers = settings.RegisterBoolSetting(
	settings.SystemOnly,
	"sql.log.plan.buffers.enabled",
	"include buffer usage in logged plans; has no effect unless "+
		"sql.log.plan.analyze.enabled is also set",
	false,
)

var logTriggers = settings.RegisterBoolSetting(
	settings.SystemOnly,
	"sql.log.plan.triggers.enabled",
	"include trigger statistics in logged plans; has no effect unless "+
		"sql.log.plan.analyze.enabled is also set",
	false,
)

var logTiming = settings.RegisterBoolSetting(
	settings.SystemOnly,
	"sql.log.plan.timing.enabled",
	"collect timing data, not just row counts, for logged plans",
	true,
)

var logFormat = settings.RegisterEnumSetting(
	settings.SystemOnly,
	"sql.log.plan.format",
	"format used for logged plans",
	"text",
	map[int64]string{
		int64(explain.FormatText): "text",
		int64(explain.FormatXML):  "xml",
		int64(explain.FormatJSON): "json",
		int64(explain.FormatYAML): "yaml",
	},
)

var logNestedStatements = settings.RegisterBoolSetting(
	settings.SystemOnly,
	"sql.log.plan.nested_statements.enabled",
	"log plans of statements invoked from within other statements",
	false,
)

var logSampleRate = settings.RegisterFloatSetting(
	settings.SystemOnly,
	"sql.log.plan.sample_rate",
	"fraction of top-level statements considered for plan logging",
	1.0,
	settings.Fraction,
)
