// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log provides a severity-leveled logging facility whose entries
// carry the logging tags found in the context, in the manner of the server's
// main log. A single process-wide sink receives finished entries; tests can
// intercept it.
package log

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/autoexplain/pkg/util/timeutil"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// Entry is a fully rendered log entry, ready for a sink.
type Entry struct {
	Severity Severity
	Time     time.Time
	// Tags is the rendered form of the context's logging tags, without
	// brackets, e.g. "stmt=42,user=root". Empty if the context carried none.
	Tags string
	// Message is the formatted message body, with redaction markers stripped.
	Message string
	// HideStmt indicates that the statement-identifying tag must not be
	// rendered with this entry, because the consumer relies on ambient context
	// (or the message body itself) and a repeat would be duplication.
	HideStmt bool
}

// StmtTagKey is the context tag under which the executor registers the
// statement being executed.
const StmtTagKey = "stmt"

// Sink consumes finished log entries. Emission is fire-and-forget: sinks do
// not report delivery status back to the caller.
type Sink interface {
	Output(e Entry)
}

var logging struct {
	mu   sync.Mutex
	sink Sink
}

func init() {
	logging.sink = stderrSink{}
}

// Intercept diverts all subsequent entries to the given sink and returns a
// function restoring the previous one. For use in tests.
func Intercept(s Sink) func() {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	prev := logging.sink
	logging.sink = s
	return func() {
		logging.mu.Lock()
		defer logging.mu.Unlock()
		logging.sink = prev
	}
}

func currentSink() Sink {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	return logging.sink
}

// Infof logs at INFO severity with the formatted message and the context's
// logging tags.
func Infof(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, Severity_INFO, false /* hideStmt */, format, args...)
}

// InfofHideStmt is like Infof but marks the entry so the sink suppresses the
// statement-identifying tag. Use it when the surrounding logging context
// already identifies the statement and repeating it would be duplication.
func InfofHideStmt(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, Severity_INFO, true /* hideStmt */, format, args...)
}

// Warningf logs at WARNING severity.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, Severity_WARNING, false /* hideStmt */, format, args...)
}

// Errorf logs at ERROR severity.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, Severity_ERROR, false /* hideStmt */, format, args...)
}

func logf(ctx context.Context, sev Severity, hideStmt bool, format string, args ...interface{}) {
	entry := Entry{
		Severity: sev,
		Time:     timeutil.Now(),
		Tags:     renderTags(ctx, hideStmt),
		Message:  redact.Sprintf(format, args...).StripMarkers(),
		HideStmt: hideStmt,
	}
	currentSink().Output(entry)
}

// renderTags flattens the context's logging tags. The statement tag is
// omitted when hideStmt is set.
func renderTags(ctx context.Context, hideStmt bool) string {
	b := logtags.FromContext(ctx)
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for _, t := range b.Get() {
		if hideStmt && t.Key() == StmtTagKey {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(t.Key())
		if v := t.ValueStr(); v != "" {
			// Short keys are rendered glued to their value, long keys with an
			// equals sign, following the main log's tag conventions.
			if len(t.Key()) > 1 {
				sb.WriteByte('=')
			}
			sb.WriteString(v)
		}
	}
	return sb.String()
}

// stderrSink renders entries to standard error.
type stderrSink struct{}

func (stderrSink) Output(e Entry) {
	var sb strings.Builder
	sb.WriteByte(e.Severity.Char())
	sb.WriteString(e.Time.Format("060102 15:04:05.000000"))
	if e.Tags != "" {
		sb.WriteString(" [")
		sb.WriteString(e.Tags)
		sb.WriteByte(']')
	}
	sb.WriteByte(' ')
	sb.WriteString(e.Message)
	sb.WriteByte('\n')
	fmt.Fprint(os.Stderr, sb.String())
}
