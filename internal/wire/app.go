package wire

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lawbridge/lawbridge/internal/config"
	"github.com/lawbridge/lawbridge/internal/db"
	"github.com/lawbridge/lawbridge/internal/export"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg      *viper.Viper
	Log      *zap.Logger
	Store    *db.Store
	Exporter *export.Exporter
}

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, v *viper.Viper, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	exp, err := BuildExporter(v, log)
	if err != nil {
		return nil, err
	}

	dsn := strings.TrimSpace(v.GetString("db"))
	if dsn == "" {
		dsn = config.ResolveDBPath(v)
	}
	store, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", zap.String("dsn", dsn))

	return &App{
		Cfg:      v,
		Log:      log,
		Store:    store,
		Exporter: exp,
	}, nil
}

// BuildExporter resolves the export.* keys into an Exporter. It needs no
// store, so `export --file` works without touching the database.
func BuildExporter(v *viper.Viper, log *zap.Logger) (*export.Exporter, error) {
	backend, err := export.NewBackend(export.BackendConfig{
		FontDir:     v.GetString("export.font_dir"),
		UTF8Regular: v.GetString("export.font_regular"),
		UTF8Bold:    v.GetString("export.font_bold"),
		Compress:    true,
	})
	if err != nil {
		return nil, err
	}
	opts := export.DefaultOptions()
	opts.PageWidth = v.GetFloat64("export.page_width")
	opts.PageHeight = v.GetFloat64("export.page_height")
	opts.Margin = v.GetFloat64("export.margin")
	opts.BodySize = v.GetFloat64("export.body_size")
	opts.LineHeight = v.GetFloat64("export.line_height")
	if s := v.GetString("export.user_label"); s != "" {
		opts.UserLabel = s
	}
	if s := v.GetString("export.assistant_label"); s != "" {
		opts.AssistantLabel = s
	}
	if s := v.GetString("export.disclaimer"); s != "" {
		opts.Disclaimer = s
	}
	return export.New(backend, log.Named("export"),
		export.WithOptions(opts),
		export.WithPrefix(v.GetString("export.prefix")),
	), nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	_ = a.Log.Sync()
	return a.Store.Close()
}
