// Package storage owns the on-disk layout of a research session:
// output/<session>/<agent>/ holds each agent's memory snapshot and the
// markdown artifacts produced along the way.
package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSessionID returns a sortable session identifier, a UTC timestamp
// joined with a short random suffix.
func NewSessionID() string {
	ts := time.Now().UTC().Format("20060102150405")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return ts + "_" + suffix
}

// NewSubagentID returns a default identifier for a spawned sub-agent.
func NewSubagentID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return "sub-agent-" + suffix
}

// SanitizeName reduces an arbitrary string to a safe filename component.
// Characters outside [a-zA-Z0-9_-] become dashes, leading and trailing
// separators are stripped, and fallback fills in when nothing survives.
func SanitizeName(name, fallback string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-_")
	if out == "" {
		return fallback
	}
	return out
}
