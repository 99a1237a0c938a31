// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package explain_test

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/autoexplain/pkg/sql/execstats"
	"github.com/cockroachdb/autoexplain/pkg/sql/explain"
	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

// examplePlan builds the plan used across the output tests: a sort over a
// join of two scans.
func examplePlan() *explain.Node {
	return &explain.Node{
		Name:   "Sort",
		Fields: []explain.Field{{Key: "Sort Key", Value: "k"}},
		VerboseFields: []explain.Field{
			{Key: "Output", Value: "k, v"},
		},
		Actual:  &explain.NodeStats{RowCount: 10, Loops: 1, Time: 2500 * time.Microsecond},
		Buffers: &execstats.BufferUsage{Hits: 40, Misses: 4},
		Children: []*explain.Node{
			{
				Name:   "Hash Join",
				Fields: []explain.Field{{Key: "Hash Cond", Value: "(a.k = b.k)"}},
				Actual: &explain.NodeStats{RowCount: 10, Loops: 1, Time: 2100 * time.Microsecond},
				Children: []*explain.Node{
					{
						Name:   "Seq Scan on a",
						Fields: []explain.Field{{Key: "Filter", Value: "v > 10"}},
						Actual: &explain.NodeStats{RowCount: 25, Loops: 1, Time: 800 * time.Microsecond},
					},
					{
						Name:   "Seq Scan on b",
						Actual: &explain.NodeStats{RowCount: 25, Loops: 1, Time: 700 * time.Microsecond},
					},
				},
			},
		},
	}
}

func buildExample(flags explain.Flags, withTriggers bool) string {
	ob := explain.NewOutputBuilder(flags)
	ob.BeginOutput()
	ob.AddQueryText("SELECT k, v FROM a JOIN b USING (k) ORDER BY k")
	ob.AddPlan(examplePlan())
	if withTriggers {
		ob.AddTriggers([]explain.TriggerStats{
			{Name: "audit_trg", Calls: 10, Time: 1200 * time.Microsecond},
		})
	}
	ob.AddExecutionTime(3 * time.Millisecond)
	ob.EndOutput()
	return ob.Build()
}

func TestOutputBuilder(t *testing.T) {
	datadriven.RunTest(t, "testdata/output", func(t *testing.T, d *datadriven.TestData) string {
		var flags explain.Flags
		withTriggers := false
		for _, arg := range d.CmdArgs {
			switch arg.Key {
			case "analyze":
				flags.Analyze = true
				flags.Summary = true
			case "verbose":
				flags.Verbose = true
			case "buffers":
				flags.Buffers = true
			case "timing":
				flags.Timing = true
			case "triggers":
				withTriggers = true
			default:
				panic(fmt.Sprintf("unknown argument %s", arg.Key))
			}
		}
		var err error
		flags.Format, err = explain.ParseFormat(d.Cmd)
		if err != nil {
			panic(err)
		}
		return buildExample(flags, withTriggers)
	})
}

func TestOutputYAML(t *testing.T) {
	out := buildExample(explain.Flags{
		Analyze: true, Timing: true, Summary: true, Format: explain.FormatYAML,
	}, true /* withTriggers */)

	require.True(t, strings.HasSuffix(out, "\n"))

	var doc []yaml.MapSlice
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc, 1)

	keys := make([]string, len(doc[0]))
	for i, item := range doc[0] {
		keys[i] = item.Key.(string)
	}
	require.Equal(t, []string{"Query Text", "Plan", "Triggers", "Execution Time"}, keys)

	planSlice, ok := doc[0][1].Value.(yaml.MapSlice)
	require.True(t, ok)
	plan := make(map[interface{}]interface{}, len(planSlice))
	for _, item := range planSlice {
		plan[item.Key] = item.Value
	}
	require.Equal(t, "Sort", plan["Node Type"])
	require.Equal(t, 2.5, plan["Actual Total Time"])
	require.Equal(t, 10, plan["Actual Rows"])
}

func TestOutputXMLWellFormed(t *testing.T) {
	out := buildExample(explain.Flags{
		Analyze: true, Verbose: true, Buffers: true, Timing: true, Summary: true,
		Format: explain.FormatXML,
	}, true /* withTriggers */)

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"text", "xml", "json", "yaml"} {
		f, err := explain.ParseFormat(name)
		require.NoError(t, err)
		require.Equal(t, name, f.String())
	}
	_, err := explain.ParseFormat("csv")
	require.Error(t, err)
}
