// Package identity derives canonical student keys from loosely-consistent
// raw identifiers.
//
// The same student appears across exam sessions under id variants such as
// "12345" and "12345-2" (the suffix marks a retake or a reissued session).
// Both must collapse to one canonical key so that per-student aggregation
// and IP cross-referencing merge all of that student's activity.
//
// Design decision: Identifiers are NFC-normalized before matching because
// the upstream exports contain names and ids typed on different platforms;
// composed and decomposed forms of the same characters must compare equal.
package identity

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// idVariant matches a purely numeric id with an optional "-digits" suffix.
// The first capture group is the base id shared by all variants.
var idVariant = regexp.MustCompile(`^(\d+)(?:-\d+)?$`)

// Normalize canonicalizes a raw student identifier.
//
// The identifier is NFC-normalized and trimmed. A numeric id with an
// optional suffix ("12345", "12345-2") collapses to its base digit run.
// Any other non-empty string passes through unchanged. The second return
// value is false when the input is empty or whitespace-only.
//
// Normalize has no failure modes; it always returns a value or reports
// absence.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(norm.NFC.String(raw))
	if s == "" {
		return "", false
	}
	if m := idVariant.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return s, true
}
