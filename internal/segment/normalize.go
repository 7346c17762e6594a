package segment

import (
	"regexp"
	"strings"
)

var (
	// A bullet that follows a sentence end, e.g. "Intro text. • a".
	sentenceBulletRe = regexp.MustCompile(`([.!?:])[ \t]*•`)
	// A bullet with whitespace on both sides, e.g. "a • b".
	spacedBulletRe = regexp.MustCompile(`[ \t]+•[ \t]+`)
)

// normalize splits text into trimmed candidate lines. Inline bullets are moved
// onto their own line and runs of blank lines collapse to a single blank.
func normalize(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = sentenceBulletRe.ReplaceAllString(text, "$1\n•")
	text = spacedBulletRe.ReplaceAllString(text, "\n• ")

	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	blank := false
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return out
}
