package format

import (
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/lawbridge/lawbridge/pkg/api"
)

// TSV columns: id, title, bot, turns, created
const headerLine = "id\ttitle\tbot\tturns\tcreated\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

// PlainStreamWriter writes summaries as aligned columns, flushing per page.
type PlainStreamWriter struct {
	tw          *tabwriter.Writer
	headers     bool
	wroteHeader bool
}

func NewPlainStreamWriter(w io.Writer, headers bool) *PlainStreamWriter {
	return &PlainStreamWriter{
		tw:      tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers: headers,
	}
}

func (pw *PlainStreamWriter) WriteSummaries(items []api.Summary) error {
	if pw.headers && !pw.wroteHeader {
		_, _ = io.WriteString(pw.tw, headerLine)
		pw.wroteHeader = true
	}
	for _, s := range items {
		line := esc(s.ID) + "\t" + esc(s.Title) + "\t" + esc(s.Bot) + "\t" +
			strconv.Itoa(s.Turns) + "\t" + s.CreatedAt.Local().Format("2006-01-02 15:04") + "\n"
		_, _ = io.WriteString(pw.tw, line)
	}
	return pw.tw.Flush()
}

func (pw *PlainStreamWriter) Close() error {
	return pw.tw.Flush()
}
