package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

var renderModes = map[string]bool{"auto": true, "plain": true, "pretty": true, "html": true, "json": true, "tui": true}

// CheckConfigValidity reports every problem in v at once.
func CheckConfigValidity(v *viper.Viper) error {
	var problems []string
	add := func(format string, args ...any) { problems = append(problems, fmt.Sprintf(format, args...)) }

	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		add("data_dir is required")
	}

	if _, err := zapcore.ParseLevel(v.GetString("log.level")); err != nil {
		add("log.level %q is not a log level", v.GetString("log.level"))
	}
	switch f := v.GetString("log.format"); f {
	case "", "console", "json":
	default:
		add("log.format %q must be console or json", f)
	}

	if m := v.GetString("render.mode"); !renderModes[m] {
		add("render.mode %q is not one of auto, plain, pretty, html, json, tui", m)
	}
	if v.GetInt("render.width") <= 0 {
		add("render.width must be greater than 0")
	}

	w, h, m := v.GetFloat64("export.page_width"), v.GetFloat64("export.page_height"), v.GetFloat64("export.margin")
	if w <= 0 {
		add("export.page_width must be greater than 0")
	}
	if h <= 0 {
		add("export.page_height must be greater than 0")
	}
	if m < 0 {
		add("export.margin must not be negative")
	}
	if w > 0 && h > 0 && (2*m >= w || 2*m >= h) {
		add("export.margin leaves no room on a %gx%g page", w, h)
	}
	if v.GetFloat64("export.body_size") <= 0 {
		add("export.body_size must be greater than 0")
	}
	if v.GetFloat64("export.line_height") <= 0 {
		add("export.line_height must be greater than 0")
	}
	if strings.TrimSpace(v.GetString("export.prefix")) == "" {
		add("export.prefix is required")
	}
	if (v.GetString("export.font_regular") == "") != (v.GetString("export.font_bold") == "") {
		add("export.font_regular and export.font_bold must be set together")
	}

	if addr := v.GetString("http_addr"); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			add("http_addr %q is not host:port", addr)
		}
	}
	if v.GetInt64("http.max_body") <= 0 {
		add("http.max_body must be greater than 0")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid config:\n  " + strings.Join(problems, "\n  "))
}
