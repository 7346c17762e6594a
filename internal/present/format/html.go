package format

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// WriteHTML converts the tree to an HTML fragment. The confidence badge is a
// paragraph classed by tier so pages can color it.
func WriteHTML(w io.Writer, t Tree) error {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(t)), &buf); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	for _, n := range t.Nodes {
		if n.Kind == NodeConfidence && n.Badge != nil {
			fmt.Fprintf(&buf, "<p class=\"confidence confidence-%s\">%s</p>\n",
				html.EscapeString(string(n.Badge.Tier)), html.EscapeString(n.Badge.Label()))
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}
