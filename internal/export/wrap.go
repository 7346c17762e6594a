package export

import "strings"

// wrap breaks s into lines no wider than width under font f. Words are kept
// whole unless a single word is wider than the line, in which case it is
// split by rune. An empty s yields one empty line.
func wrap(s string, width float64, f Font, m Measurer) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var (
		out []string
		cur string
	)
	for _, w := range words {
		if m.StringWidth(w, f) > width {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			pieces := splitWord(w, width, f, m)
			out = append(out, pieces[:len(pieces)-1]...)
			cur = pieces[len(pieces)-1]
			continue
		}
		if cur == "" {
			cur = w
			continue
		}
		if cand := cur + " " + w; m.StringWidth(cand, f) <= width {
			cur = cand
			continue
		}
		out = append(out, cur)
		cur = w
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func splitWord(w string, width float64, f Font, m Measurer) []string {
	var (
		out []string
		cur []rune
	)
	for _, r := range w {
		next := append(cur, r)
		if len(cur) > 0 && m.StringWidth(string(next), f) > width {
			out = append(out, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	return append(out, string(cur))
}
