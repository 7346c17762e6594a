package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lawbridge/lawbridge/pkg/api"
)

// ErrExportFailed wraps any backend failure. Surfaces show it as a retry notice.
var ErrExportFailed = errors.New("export failed, please try again")

// NothingToExport is the notice shown when a conversation has no turns.
const NothingToExport = "No conversation to export"

// Request carries per-export overrides. Empty fields fall back to the
// Exporter's defaults and the conversation's bot name.
type Request struct {
	Title    string
	Subtitle string
	Prefix   string
}

// Artifact is a finished export held in memory.
type Artifact struct {
	Filename string
	Pages    int
	Bytes    []byte
	Digest   string
	// ConversationHash identifies the snapshot the artifact was built from.
	ConversationHash string
}

type Exporter struct {
	backend  *Backend
	log      *zap.Logger
	defaults Options
	prefix   string
	now      func() time.Time
}

type Option func(*Exporter)

// WithOptions sets the default page geometry and fixed strings.
func WithOptions(o Options) Option { return func(e *Exporter) { e.defaults = o } }

// WithPrefix sets the filename prefix used when neither the request nor the
// conversation provides one.
func WithPrefix(p string) Option { return func(e *Exporter) { e.prefix = p } }

// WithClock replaces time.Now for filenames, subtitles and PDF metadata.
func WithClock(now func() time.Time) Option { return func(e *Exporter) { e.now = now } }

func New(b *Backend, log *zap.Logger, opts ...Option) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Exporter{
		backend:  b,
		log:      log,
		defaults: DefaultOptions(),
		prefix:   "Legal_Chat",
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Export renders conv into an in-memory PDF. The boolean is false when the
// conversation is empty; no work is done in that case.
func (e *Exporter) Export(ctx context.Context, conv api.Conversation, req Request) (art Artifact, ok bool, err error) {
	if len(conv.Turns) == 0 {
		return Artifact{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return Artifact{}, false, err
	}
	snap := conv.Snapshot()
	now := e.now()

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("export panicked", zap.String("conversation", snap.ID), zap.Any("panic", r))
			art, ok, err = Artifact{}, false, fmt.Errorf("%w: %v", ErrExportFailed, r)
		}
	}()

	opts := e.options(snap, req, now)
	c := e.backend.newCanvas(opts, now)
	doc, _ := Layout(snap, opts, c)
	data, err := c.draw(doc)
	if err != nil {
		e.log.Error("export failed", zap.String("conversation", snap.ID), zap.Error(err))
		return Artifact{}, false, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	art = Artifact{
		Filename:         Filename(firstNonEmpty(req.Prefix, filePrefix(snap.Bot), e.prefix), now),
		Pages:            len(doc.Pages),
		Bytes:            data,
		Digest:           api.Digest(data),
		ConversationHash: snap.Hash(),
	}
	e.log.Debug("exported conversation",
		zap.String("conversation", snap.ID),
		zap.String("file", art.Filename),
		zap.Int("pages", art.Pages),
		zap.Int("bytes", len(data)))
	return art, true, nil
}

// options resolves the document title as request title, then
// "<Bot> Conversation", then the stored title, then the configured default.
func (e *Exporter) options(conv api.Conversation, req Request, now time.Time) Options {
	opts := e.defaults
	opts.Title = firstNonEmpty(req.Title, botTitle(conv.Bot), conv.Title, opts.Title)
	opts.Subtitle = firstNonEmpty(req.Subtitle, "Date: "+now.Format("2006-01-02 15:04"))
	return opts.withDefaults()
}

// ExportToFile exports conv and writes the artifact into dir. The file only
// appears once the whole document has been produced.
func (e *Exporter) ExportToFile(ctx context.Context, conv api.Conversation, req Request, dir string) (string, bool, error) {
	art, ok, err := e.Export(ctx, conv, req)
	if err != nil || !ok {
		return "", ok, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, err
	}
	path := filepath.Join(dir, art.Filename)
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", false, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(art.Bytes); err != nil {
		_ = tmp.Close()
		return "", false, err
	}
	if err := tmp.Close(); err != nil {
		return "", false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", false, err
	}
	e.log.Info("export written", zap.String("path", path), zap.Int("pages", art.Pages))
	return path, true, nil
}

// Filename builds <prefix>_<epoch-millis>.pdf.
func Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%d.pdf", prefix, now.UnixMilli())
}

func botTitle(bot string) string {
	if strings.TrimSpace(bot) == "" {
		return ""
	}
	return strings.TrimSpace(bot) + " Conversation"
}

func filePrefix(bot string) string {
	return strings.Join(strings.Fields(bot), "_")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
