package segment

import (
	"strconv"
	"strings"

	"github.com/lawbridge/lawbridge/pkg/api"
)

// BulletGlyph prefixes unordered list items on line-oriented surfaces.
const BulletGlyph = "•"

// Marker returns the prefix for the i-th (0-based) item of a list.
// Ordered lists are numbered by position, not by the digits in the source.
func Marker(ordered bool, i int) string {
	if ordered {
		return strconv.Itoa(i+1) + "."
	}
	return BulletGlyph
}

// Flatten renders a document as plain lines with emphasis markers removed:
// headings as-is, paragraphs joined by single spaces, list items prefixed by
// their marker. Blocks of unknown kind are skipped.
func Flatten(doc api.Document) []string {
	var out []string
	for _, b := range doc {
		switch b.Kind {
		case api.BlockHeading:
			out = append(out, StripEmphasis(b.Text))
		case api.BlockParagraph:
			out = append(out, StripEmphasis(strings.Join(b.Lines, " ")))
		case api.BlockList:
			for i, it := range b.Items {
				out = append(out, Marker(b.Ordered, i)+" "+StripEmphasis(it))
			}
		}
	}
	return out
}
