// Package segment turns freeform assistant text into an ordered sequence of
// typed blocks (headings, paragraphs, bulleted and numbered lists).
//
// Segmentation is total: any input, however malformed, yields at least one
// block. Markup that does not match a known shape degrades to paragraph text.
package segment

import (
	"regexp"
	"strings"

	"github.com/lawbridge/lawbridge/pkg/api"
)

var numberedRe = regexp.MustCompile(`^\d+\.\s+`)

// Segment partitions text into a Document.
func Segment(text string) api.Document {
	var (
		doc     api.Document
		emitted []api.Block
		s       state
	)
	for _, l := range normalize(text) {
		s, emitted = step(s, l)
		doc = append(doc, emitted...)
	}
	doc = append(doc, s.close()...)
	if len(doc) == 0 {
		return api.Document{api.Paragraph(strings.TrimSpace(text))}
	}
	return doc
}

type mode int

const (
	accumulatingParagraph mode = iota
	accumulatingBulletList
	accumulatingNumberedList
)

// state is the reducer state. It is treated as a value: step never mutates
// the slices of the state it was given.
type state struct {
	mode  mode
	lines []string
	items []string
}

// close returns the block accumulated so far, if it has content.
func (s state) close() []api.Block {
	switch s.mode {
	case accumulatingParagraph:
		if len(s.lines) == 0 {
			return nil
		}
		return []api.Block{api.Paragraph(s.lines...)}
	case accumulatingBulletList, accumulatingNumberedList:
		if len(s.items) == 0 {
			return nil
		}
		return []api.Block{api.List(s.mode == accumulatingNumberedList, s.items...)}
	}
	return nil
}

// step feeds one normalized line into the reducer and returns the next state
// together with any blocks that the line completed.
func step(s state, line string) (state, []api.Block) {
	if line == "" {
		return s, nil
	}
	switch kind, payload := classify(line); kind {
	case lineHeading:
		return state{}, append(s.close(), api.Heading(payload[0]))
	case lineBullet:
		return appendItems(s, accumulatingBulletList, payload)
	case lineNumbered:
		return appendItems(s, accumulatingNumberedList, payload)
	default:
		if s.mode != accumulatingParagraph {
			return state{lines: []string{line}}, s.close()
		}
		return state{lines: push(s.lines, line)}, nil
	}
}

func appendItems(s state, m mode, items []string) (state, []api.Block) {
	if s.mode == m {
		next := state{mode: m, items: s.items}
		for _, it := range items {
			next.items = push(next.items, it)
		}
		return next, nil
	}
	return state{mode: m, items: append([]string(nil), items...)}, s.close()
}

// push appends without ever writing into the backing array of xs.
func push(xs []string, x string) []string {
	return append(xs[:len(xs):len(xs)], x)
}

type lineKind int

const (
	lineText lineKind = iota
	lineHeading
	lineBullet
	lineNumbered
)

// classify decides what a trimmed, non-empty line is and returns its payload:
// the heading text, the list items, or nothing for plain text.
func classify(line string) (lineKind, []string) {
	if strings.HasPrefix(line, "**") && strings.Contains(line, ":**") {
		return lineHeading, []string{headingText(line)}
	}
	switch {
	case strings.HasPrefix(line, "•"):
		return lineBullet, splitBullets(strings.TrimPrefix(line, "•"))
	case strings.HasPrefix(line, "* "):
		return lineBullet, splitBullets(line[2:])
	case strings.HasPrefix(line, "- "):
		return lineBullet, splitBullets(line[2:])
	}
	if loc := numberedRe.FindStringIndex(line); loc != nil {
		return lineNumbered, []string{strings.TrimSpace(line[loc[1]:])}
	}
	return lineText, nil
}

// headingText strips the **...:** marker. Text after the closing marker is
// kept, joined to the heading with ": ".
func headingText(line string) string {
	s := strings.TrimPrefix(line, "**")
	i := strings.Index(s, ":**")
	head, tail := s[:i], strings.TrimSpace(s[i+len(":**"):])
	out := head
	if tail != "" {
		out = head + ": " + tail
	}
	return strings.TrimSpace(StripEmphasis(out))
}

func splitBullets(rest string) []string {
	parts := strings.Split(rest, "•")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
