package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// WritePlain writes the tree as wrapped terminal text without emphasis.
// Blocks are separated by a blank line; list items keep a hanging indent.
func WritePlain(w io.Writer, t Tree, width int) error {
	if width <= 0 {
		width = 80
	}
	var b strings.Builder
	for i, n := range t.Nodes {
		if i > 0 && !(n.Kind == NodeItem && t.Nodes[i-1].Kind == NodeItem) {
			b.WriteString("\n")
		}
		switch n.Kind {
		case NodeHeading, NodeParagraph:
			b.WriteString(wordwrap.String(n.Text(), width))
			b.WriteString("\n")
		case NodeItem:
			b.WriteString(hanging(n.Marker+" ", n.Text(), width))
		case NodeConfidence:
			fmt.Fprintf(&b, "Confidence: %d%% (%s)\n", n.Badge.Percent, n.Badge.Tier)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func hanging(prefix, text string, width int) string {
	pad := strings.Repeat(" ", len([]rune(prefix)))
	inner := width - len(pad)
	if inner < 10 {
		inner = 10
	}
	lines := strings.Split(wordwrap.String(text, inner), "\n")
	var b strings.Builder
	for i, l := range lines {
		if i == 0 {
			b.WriteString(prefix)
		} else {
			b.WriteString(pad)
		}
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}
