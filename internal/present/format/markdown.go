package format

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/lawbridge/lawbridge/pkg/api"
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`, `#`, `\#`, `|`, `\|`,
)

// Markdown re-emits the tree as CommonMark. Confidence badges are left to
// the caller since each surface styles them differently.
func Markdown(t Tree) string {
	var b strings.Builder
	var prev *Node
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Kind == NodeConfidence {
			continue
		}
		if prev != nil && !(n.Kind == NodeItem && prev.Kind == NodeItem && n.Ordered == prev.Ordered && n.Marker != "1.") {
			b.WriteString("\n")
		}
		switch n.Kind {
		case NodeHeading:
			b.WriteString("### " + runsMarkdown(n.Runs) + "\n")
		case NodeParagraph:
			b.WriteString(escapeLineStart(runsMarkdown(n.Runs)) + "\n")
		case NodeItem:
			marker := "-"
			if n.Ordered {
				marker = n.Marker
			}
			b.WriteString(marker + " " + escapeLineStart(runsMarkdown(n.Runs)) + "\n")
		}
		prev = n
	}
	return b.String()
}

func runsMarkdown(runs []api.Run) string {
	var b strings.Builder
	for _, r := range runs {
		text := mdEscaper.Replace(r.Text)
		if !r.Bold || strings.TrimSpace(text) == "" {
			b.WriteString(text)
			continue
		}
		// Delimiters must hug the text to count as emphasis.
		core := strings.TrimSpace(text)
		lead := text[:strings.Index(text, core)]
		trail := text[len(lead)+len(core):]
		b.WriteString(lead + "**" + core + "**" + trail)
	}
	return b.String()
}

var orderedStart = regexp.MustCompile(`^(\d+)([.)])`)

// escapeLineStart keeps text that looks like a list marker, a rule, a tilde
// fence or a setext underline from being parsed as one.
func escapeLineStart(s string) string {
	if m := orderedStart.FindStringSubmatchIndex(s); m != nil {
		return s[:m[3]] + `\` + s[m[4]:]
	}
	if s != "" && strings.ContainsRune("+-=~", rune(s[0])) {
		return `\` + s
	}
	return s
}

var tierColors = map[api.Tier]lipgloss.Color{
	api.TierGood: lipgloss.Color("#2E7D32"),
	api.TierWarn: lipgloss.Color("#F9A825"),
	api.TierLow:  lipgloss.Color("#C62828"),
}

// BadgeStyle colors a confidence badge by tier.
func BadgeStyle(t api.Tier) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(tierColors[t])
}

// NewTermRenderer builds the glamour renderer for style ("auto" or a
// standard style name) and wrap width.
func NewTermRenderer(style string, width int) (*glamour.TermRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return r, nil
}

// WritePretty renders the tree with glamour followed by a colored badge.
func WritePretty(w io.Writer, r *glamour.TermRenderer, t Tree) error {
	out, err := r.Render(Markdown(t))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return err
	}
	for _, n := range t.Nodes {
		if n.Kind == NodeConfidence && n.Badge != nil {
			if _, err := io.WriteString(w, "  "+BadgeStyle(n.Badge.Tier).Render(n.Badge.Label())+"\n\n"); err != nil {
				return err
			}
		}
	}
	return nil
}
