package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const appName = "lawbridge"

// applyDefaults seeds Viper with the defaults from GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, appName))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	// A missing file is fine; a broken one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// LAWBRIDGE_EXPORT_DIR overrides export.dir, and so on.
	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		v.Set("data_dir", defaultDataDir())
	}
	if strings.TrimSpace(v.GetString("export.dir")) == "" {
		v.Set("export.dir", ".")
	}
	return nil
}

// defaultDataDir resolves $XDG_DATA_HOME/lawbridge or ~/.local/share/lawbridge.
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, appName, "config.toml")
}

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns every known option with its default and meaning.
// It feeds both Viper defaults and `config generate`.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; DB is data_dir/lawbridge.db"},
		{Key: "db", Default: "", Comment: "Store DSN override: mem:// or a sqlite file path; empty uses data_dir"},
		{Key: "http_addr", Default: ":8080", Comment: "HTTP listen address for `serve`"},

		{Key: "log.level", Default: "info", Comment: "debug, info, warn or error"},
		{Key: "log.format", Default: "console", Comment: "console or json"},

		{Key: "render.mode", Default: "auto", Comment: "auto, plain, pretty, html, json or tui; auto picks pretty on a terminal"},
		{Key: "render.width", Default: 80, Comment: "Wrap width for plain and pretty output"},
		{Key: "render.style", Default: "auto", Comment: "glamour style for pretty output (auto, dark, light, notty)"},

		{Key: "export.dir", Default: ".", Comment: "Directory PDF exports are written to"},
		{Key: "export.prefix", Default: "Legal_Chat", Comment: "Filename prefix when the conversation has no bot name"},
		{Key: "export.page_width", Default: 210.0, Comment: "Page width in mm (A4 = 210)"},
		{Key: "export.page_height", Default: 297.0, Comment: "Page height in mm (A4 = 297)"},
		{Key: "export.margin", Default: 15.0, Comment: "Page margin in mm"},
		{Key: "export.body_size", Default: 10.0, Comment: "Body font size in pt; labels and title keep their sizes"},
		{Key: "export.line_height", Default: 6.0, Comment: "Body line height in mm"},
		{Key: "export.user_label", Default: "YOUR QUESTION:", Comment: "Label printed above user turns"},
		{Key: "export.assistant_label", Default: "LEGAL ADVICE:", Comment: "Label printed above assistant turns"},
		{Key: "export.disclaimer", Default: "AI-generated legal information, not a substitute for advice from a qualified lawyer.", Comment: "Footer disclaimer on every page"},
		{Key: "export.font_dir", Default: "", Comment: "Directory holding UTF-8 TTF fonts; empty uses Helvetica"},
		{Key: "export.font_regular", Default: "", Comment: "Regular TTF file name inside font_dir"},
		{Key: "export.font_bold", Default: "", Comment: "Bold TTF file name inside font_dir"},

		{Key: "http.tls_domain", Default: "", Comment: "Serve HTTPS with an ACME certificate for this domain"},
		{Key: "http.acme_email", Default: "", Comment: "Contact email for the ACME account"},
		{Key: "http.max_body", Default: 1 << 20, Comment: "Maximum request body size in bytes"},
		{Key: "auth.token", Default: "", Comment: "Bearer token required by the /v1 API; empty leaves it open"},

		{Key: "editor.delete_empty", Default: true, Comment: "Discard a turn if the editor exits with no content"},
	}
}

// ResolveDBPath returns the sqlite DB file path under data_dir.
func ResolveDBPath(v *viper.Viper) string {
	return filepath.Join(expandHome(v.GetString("data_dir")), appName+".db")
}

// ResolveExportDir returns export.dir with ~ expanded.
func ResolveExportDir(v *viper.Viper) string {
	dir := strings.TrimSpace(v.GetString("export.dir"))
	if dir == "" {
		return "."
	}
	return expandHome(dir)
}

func expandHome(dir string) string {
	if dir == "" {
		dir = defaultDataDir()
	}
	if dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return dir
}
