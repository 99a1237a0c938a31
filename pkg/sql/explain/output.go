// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package explain renders execution-plan reports in text, XML, JSON and YAML
// modes. The OutputBuilder accumulates one report into a buffer through a
// BeginOutput/AddQueryText/AddPlan/AddTriggers/EndOutput call sequence.
package explain

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// OutputBuilder accumulates one formatted report.
//
// In JSON mode the finished document is a grouped fragment wrapped in a
// square-bracket pair, not a single object; consumers that need an object
// post-process the bracket characters themselves. The builder deliberately
// does not do that patch.
type OutputBuilder struct {
	flags Flags
	buf   bytes.Buffer

	// jsonEntries counts top-level entries emitted in JSON mode, to place
	// separators.
	jsonEntries int
	// yamlDoc accumulates the document in YAML mode; it is marshaled by
	// EndOutput.
	yamlDoc yaml.MapSlice

	execTime    time.Duration
	hasExecTime bool
}

// NewOutputBuilder returns an OutputBuilder for the given flags.
func NewOutputBuilder(flags Flags) *OutputBuilder {
	return &OutputBuilder{flags: flags}
}

// BeginOutput opens the report document.
func (ob *OutputBuilder) BeginOutput() {
	switch ob.flags.Format {
	case FormatXML:
		ob.buf.WriteString("<explain xmlns=\"http://www.postgresql.org/2009/explain\">\n")
	case FormatJSON:
		ob.buf.WriteString("[\n")
	}
}

// AddQueryText emits the statement's SQL text.
func (ob *OutputBuilder) AddQueryText(sql string) {
	switch ob.flags.Format {
	case FormatText:
		ob.buf.WriteString("Query Text: ")
		ob.buf.WriteString(sql)
		ob.buf.WriteByte('\n')
	case FormatXML:
		ob.buf.WriteString("  <Query-Text>")
		xmlEscape(&ob.buf, sql)
		ob.buf.WriteString("</Query-Text>\n")
	case FormatJSON:
		ob.jsonEntry("Query Text", jsonString(sql))
	case FormatYAML:
		ob.yamlDoc = append(ob.yamlDoc, yaml.MapItem{Key: "Query Text", Value: sql})
	}
}

// AddPlan emits the plan tree.
func (ob *OutputBuilder) AddPlan(root *Node) {
	switch ob.flags.Format {
	case FormatText:
		ob.emitTextNode(root, 0)
	case FormatXML:
		ob.emitXMLNode(root, 1)
	case FormatJSON:
		var sb strings.Builder
		ob.emitJSONNode(&sb, root, 1)
		ob.jsonEntry("Plan", sb.String())
	case FormatYAML:
		ob.yamlDoc = append(ob.yamlDoc, yaml.MapItem{Key: "Plan", Value: ob.yamlNode(root)})
	}
}

// AddTriggers emits per-trigger statistics.
func (ob *OutputBuilder) AddTriggers(triggers []TriggerStats) {
	switch ob.flags.Format {
	case FormatText:
		for _, t := range triggers {
			ob.buf.WriteString("Trigger ")
			ob.buf.WriteString(t.Name)
			ob.buf.WriteString(": time=")
			ob.buf.WriteString(formatMillis(t.Time))
			ob.buf.WriteString(" calls=")
			ob.buf.WriteString(strconv.FormatInt(t.Calls, 10))
			ob.buf.WriteByte('\n')
		}
	case FormatXML:
		ob.buf.WriteString("  <Triggers>\n")
		for _, t := range triggers {
			ob.buf.WriteString("    <Trigger>\n      <Trigger-Name>")
			xmlEscape(&ob.buf, t.Name)
			ob.buf.WriteString("</Trigger-Name>\n      <Time>")
			ob.buf.WriteString(formatMillis(t.Time))
			ob.buf.WriteString("</Time>\n      <Calls>")
			ob.buf.WriteString(strconv.FormatInt(t.Calls, 10))
			ob.buf.WriteString("</Calls>\n    </Trigger>\n")
		}
		ob.buf.WriteString("  </Triggers>\n")
	case FormatJSON:
		var sb strings.Builder
		sb.WriteString("[\n")
		for i, t := range triggers {
			if i > 0 {
				sb.WriteString(",\n")
			}
			sb.WriteString("    {\n      \"Trigger Name\": ")
			sb.WriteString(jsonString(t.Name))
			sb.WriteString(",\n      \"Time\": ")
			sb.WriteString(formatMillis(t.Time))
			sb.WriteString(",\n      \"Calls\": ")
			sb.WriteString(strconv.FormatInt(t.Calls, 10))
			sb.WriteString("\n    }")
		}
		sb.WriteString("\n  ]")
		ob.jsonEntry("Triggers", sb.String())
	case FormatYAML:
		items := make([]yaml.MapSlice, len(triggers))
		for i, t := range triggers {
			items[i] = yaml.MapSlice{
				{Key: "Trigger Name", Value: t.Name},
				{Key: "Time", Value: millisValue(t.Time)},
				{Key: "Calls", Value: t.Calls},
			}
		}
		ob.yamlDoc = append(ob.yamlDoc, yaml.MapItem{Key: "Triggers", Value: items})
	}
}

// AddExecutionTime records the statement's total execution time; it is
// emitted by EndOutput when the summary flag is on.
func (ob *OutputBuilder) AddExecutionTime(d time.Duration) {
	ob.execTime = d
	ob.hasExecTime = true
}

// EndOutput closes the report document.
func (ob *OutputBuilder) EndOutput() {
	emitSummary := ob.flags.Summary && ob.hasExecTime
	switch ob.flags.Format {
	case FormatText:
		if emitSummary {
			ob.buf.WriteString("Execution Time: ")
			ob.buf.WriteString(formatMillis(ob.execTime))
			ob.buf.WriteString(" ms\n")
		}
	case FormatXML:
		if emitSummary {
			ob.buf.WriteString("  <Execution-Time>")
			ob.buf.WriteString(formatMillis(ob.execTime))
			ob.buf.WriteString("</Execution-Time>\n")
		}
		ob.buf.WriteString("</explain>\n")
	case FormatJSON:
		if emitSummary {
			ob.jsonEntry("Execution Time", formatMillis(ob.execTime))
		}
		ob.buf.WriteString("\n]\n")
	case FormatYAML:
		if emitSummary {
			ob.yamlDoc = append(ob.yamlDoc,
				yaml.MapItem{Key: "Execution Time", Value: millisValue(ob.execTime)})
		}
		out, err := yaml.Marshal([]yaml.MapSlice{ob.yamlDoc})
		if err != nil {
			// MapSlice values built here only hold strings and numbers, which
			// always marshal.
			panic(err)
		}
		ob.buf.Write(out)
	}
}

// Build returns the accumulated report.
func (ob *OutputBuilder) Build() string {
	return ob.buf.String()
}

// text mode

func (ob *OutputBuilder) emitTextNode(n *Node, level int) {
	if level == 0 {
		ob.buf.WriteString(n.Name)
	} else {
		ob.buf.WriteString(strings.Repeat("      ", level-1))
		ob.buf.WriteString("  ->  ")
		ob.buf.WriteString(n.Name)
	}
	if ob.flags.Analyze && n.Actual != nil {
		ob.buf.WriteString("  (actual ")
		if ob.flags.Timing {
			ob.buf.WriteString("time=")
			ob.buf.WriteString(formatMillis(n.Actual.Time))
			ob.buf.WriteString(" ms ")
		}
		ob.buf.WriteString("rows=")
		ob.buf.WriteString(strconv.FormatInt(n.Actual.RowCount, 10))
		ob.buf.WriteString(" loops=")
		ob.buf.WriteString(strconv.FormatInt(n.Actual.Loops, 10))
		ob.buf.WriteByte(')')
	}
	ob.buf.WriteByte('\n')

	fieldPrefix := strings.Repeat("      ", level) + "  "
	emitField := func(f Field) {
		ob.buf.WriteString(fieldPrefix)
		ob.buf.WriteString(f.Key)
		ob.buf.WriteString(": ")
		ob.buf.WriteString(f.Value)
		ob.buf.WriteByte('\n')
	}
	for _, f := range n.Fields {
		emitField(f)
	}
	if ob.flags.Verbose {
		for _, f := range n.VerboseFields {
			emitField(f)
		}
	}
	if ob.flags.Buffers && n.Buffers != nil {
		b := n.Buffers
		ob.buf.WriteString(fieldPrefix)
		ob.buf.WriteString("Buffers: shared hit=")
		ob.buf.WriteString(strconv.FormatInt(b.Hits, 10))
		ob.buf.WriteString(" read=")
		ob.buf.WriteString(strconv.FormatInt(b.Misses, 10))
		ob.buf.WriteString(" dirtied=")
		ob.buf.WriteString(strconv.FormatInt(b.Dirtied, 10))
		ob.buf.WriteString(" written=")
		ob.buf.WriteString(strconv.FormatInt(b.Written, 10))
		ob.buf.WriteByte('\n')
	}
	for _, child := range n.Children {
		ob.emitTextNode(child, level+1)
	}
}

// xml mode

func (ob *OutputBuilder) emitXMLNode(n *Node, depth int) {
	pad := strings.Repeat("  ", depth)
	inner := pad + "  "
	ob.buf.WriteString(pad)
	ob.buf.WriteString("<Plan>\n")
	ob.buf.WriteString(inner)
	ob.buf.WriteString("<Node-Type>")
	xmlEscape(&ob.buf, n.Name)
	ob.buf.WriteString("</Node-Type>\n")

	emitField := func(f Field) {
		tag := xmlTagName(f.Key)
		ob.buf.WriteString(inner)
		ob.buf.WriteByte('<')
		ob.buf.WriteString(tag)
		ob.buf.WriteByte('>')
		xmlEscape(&ob.buf, f.Value)
		ob.buf.WriteString("</")
		ob.buf.WriteString(tag)
		ob.buf.WriteString(">\n")
	}
	for _, f := range n.Fields {
		emitField(f)
	}
	if ob.flags.Verbose {
		for _, f := range n.VerboseFields {
			emitField(f)
		}
	}
	if ob.flags.Analyze && n.Actual != nil {
		if ob.flags.Timing {
			ob.buf.WriteString(inner)
			ob.buf.WriteString("<Actual-Total-Time>")
			ob.buf.WriteString(formatMillis(n.Actual.Time))
			ob.buf.WriteString("</Actual-Total-Time>\n")
		}
		ob.buf.WriteString(inner)
		ob.buf.WriteString("<Actual-Rows>")
		ob.buf.WriteString(strconv.FormatInt(n.Actual.RowCount, 10))
		ob.buf.WriteString("</Actual-Rows>\n")
		ob.buf.WriteString(inner)
		ob.buf.WriteString("<Actual-Loops>")
		ob.buf.WriteString(strconv.FormatInt(n.Actual.Loops, 10))
		ob.buf.WriteString("</Actual-Loops>\n")
	}
	if ob.flags.Buffers && n.Buffers != nil {
		b := n.Buffers
		for _, kv := range []struct {
			tag string
			v   int64
		}{
			{"Shared-Hit-Blocks", b.Hits},
			{"Shared-Read-Blocks", b.Misses},
			{"Shared-Dirtied-Blocks", b.Dirtied},
			{"Shared-Written-Blocks", b.Written},
		} {
			ob.buf.WriteString(inner)
			ob.buf.WriteByte('<')
			ob.buf.WriteString(kv.tag)
			ob.buf.WriteByte('>')
			ob.buf.WriteString(strconv.FormatInt(kv.v, 10))
			ob.buf.WriteString("</")
			ob.buf.WriteString(kv.tag)
			ob.buf.WriteString(">\n")
		}
	}
	if len(n.Children) > 0 {
		ob.buf.WriteString(inner)
		ob.buf.WriteString("<Plans>\n")
		for _, child := range n.Children {
			ob.emitXMLNode(child, depth+2)
		}
		ob.buf.WriteString(inner)
		ob.buf.WriteString("</Plans>\n")
	}
	ob.buf.WriteString(pad)
	ob.buf.WriteString("</Plan>\n")
}

// json mode

// jsonEntry writes one top-level key/value pair of the grouped fragment. The
// value must already be rendered.
func (ob *OutputBuilder) jsonEntry(key, value string) {
	if ob.jsonEntries > 0 {
		ob.buf.WriteString(",\n")
	}
	ob.jsonEntries++
	ob.buf.WriteString("  ")
	ob.buf.WriteString(jsonString(key))
	ob.buf.WriteString(": ")
	ob.buf.WriteString(value)
}

func (ob *OutputBuilder) emitJSONNode(sb *strings.Builder, n *Node, depth int) {
	pad := strings.Repeat("  ", depth)
	inner := pad + "  "
	first := true
	entry := func(key, value string) {
		if !first {
			sb.WriteString(",\n")
		}
		first = false
		sb.WriteString(inner)
		sb.WriteString(jsonString(key))
		sb.WriteString(": ")
		sb.WriteString(value)
	}

	sb.WriteString("{\n")
	entry("Node Type", jsonString(n.Name))
	for _, f := range n.Fields {
		entry(f.Key, jsonString(f.Value))
	}
	if ob.flags.Verbose {
		for _, f := range n.VerboseFields {
			entry(f.Key, jsonString(f.Value))
		}
	}
	if ob.flags.Analyze && n.Actual != nil {
		if ob.flags.Timing {
			entry("Actual Total Time", formatMillis(n.Actual.Time))
		}
		entry("Actual Rows", strconv.FormatInt(n.Actual.RowCount, 10))
		entry("Actual Loops", strconv.FormatInt(n.Actual.Loops, 10))
	}
	if ob.flags.Buffers && n.Buffers != nil {
		b := n.Buffers
		entry("Shared Hit Blocks", strconv.FormatInt(b.Hits, 10))
		entry("Shared Read Blocks", strconv.FormatInt(b.Misses, 10))
		entry("Shared Dirtied Blocks", strconv.FormatInt(b.Dirtied, 10))
		entry("Shared Written Blocks", strconv.FormatInt(b.Written, 10))
	}
	if len(n.Children) > 0 {
		var plans strings.Builder
		plans.WriteString("[\n")
		for i, child := range n.Children {
			if i > 0 {
				plans.WriteString(",\n")
			}
			plans.WriteString(inner + "  ")
			ob.emitJSONNode(&plans, child, depth+2)
		}
		plans.WriteString("\n" + inner + "]")
		entry("Plans", plans.String())
	}
	sb.WriteString("\n")
	sb.WriteString(pad)
	sb.WriteString("}")
}

// yaml mode

func (ob *OutputBuilder) yamlNode(n *Node) yaml.MapSlice {
	doc := yaml.MapSlice{{Key: "Node Type", Value: n.Name}}
	for _, f := range n.Fields {
		doc = append(doc, yaml.MapItem{Key: f.Key, Value: f.Value})
	}
	if ob.flags.Verbose {
		for _, f := range n.VerboseFields {
			doc = append(doc, yaml.MapItem{Key: f.Key, Value: f.Value})
		}
	}
	if ob.flags.Analyze && n.Actual != nil {
		if ob.flags.Timing {
			doc = append(doc, yaml.MapItem{Key: "Actual Total Time", Value: millisValue(n.Actual.Time)})
		}
		doc = append(doc,
			yaml.MapItem{Key: "Actual Rows", Value: n.Actual.RowCount},
			yaml.MapItem{Key: "Actual Loops", Value: n.Actual.Loops})
	}
	if ob.flags.Buffers && n.Buffers != nil {
		b := n.Buffers
		doc = append(doc,
			yaml.MapItem{Key: "Shared Hit Blocks", Value: b.Hits},
			yaml.MapItem{Key: "Shared Read Blocks", Value: b.Misses},
			yaml.MapItem{Key: "Shared Dirtied Blocks", Value: b.Dirtied},
			yaml.MapItem{Key: "Shared Written Blocks", Value: b.Written})
	}
	if len(n.Children) > 0 {
		plans := make([]yaml.MapSlice, len(n.Children))
		for i, child := range n.Children {
			plans[i] = ob.yamlNode(child)
		}
		doc = append(doc, yaml.MapItem{Key: "Plans", Value: plans})
	}
	return doc
}

// helpers

// formatMillis renders a duration as fractional milliseconds with
// microsecond precision, the resolution used throughout plan reports.
func formatMillis(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 3, 64)
}

func millisValue(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func jsonString(s string) string {
	// Marshal through an encoder with HTML escaping off so characters like
	// '>' render literally, matching the document shape of the original.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		// Strings always marshal.
		panic(err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func xmlEscape(buf *bytes.Buffer, s string) {
	// EscapeText only fails if the writer fails; bytes.Buffer never does.
	_ = xml.EscapeText(buf, []byte(s))
}

// xmlTagName derives an element name from a field key the way plan keys have
// always mapped to XML: spaces become dashes.
func xmlTagName(key string) string {
	return strings.ReplaceAll(key, " ", "-")
}
