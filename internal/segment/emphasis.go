package segment

import (
	"strings"

	"github.com/lawbridge/lawbridge/pkg/api"
)

const boldMarker = "**"

// Runs splits s on the ** delimiter. Pieces at odd positions are bold.
// Empty pieces are dropped, so an unmatched trailing marker is harmless.
func Runs(s string) []api.Run {
	parts := strings.Split(s, boldMarker)
	out := make([]api.Run, 0, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, api.Run{Text: p, Bold: i%2 == 1})
	}
	return out
}

// StripEmphasis returns s with every ** marker removed.
func StripEmphasis(s string) string {
	return strings.ReplaceAll(s, boldMarker, "")
}
