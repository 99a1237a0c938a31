// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

// Severity identifies the importance of a log entry.
type Severity int32

const (
	// Severity_UNKNOWN is populated in decoded log entries when the severity
	// could not be determined.
	Severity_UNKNOWN Severity = iota
	// Severity_INFO is used for informational messages that do not require
	// action.
	Severity_INFO
	// Severity_WARNING is used for situations which may require special
	// handling, where normal operation is expected to resume automatically.
	Severity_WARNING
	// Severity_ERROR is used for situations that require special handling,
	// where normal operation could not proceed as expected.
	Severity_ERROR
)

var severityChar = [...]byte{'?', 'I', 'W', 'E'}

func (s Severity) String() string {
	switch s {
	case Severity_INFO:
		return "INFO"
	case Severity_WARNING:
		return "WARNING"
	case Severity_ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Char returns the one-letter prefix used when rendering an entry.
func (s Severity) Char() byte {
	if int(s) < len(severityChar) {
		return severityChar[s]
	}
	return '?'
}
