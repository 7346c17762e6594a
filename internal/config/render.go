package config

import (
	"fmt"
	"strconv"
	"strings"
)

// tomlSection groups options under a [name] header; the unnamed section holds
// top-level keys.
type tomlSection struct {
	name string
	opts []ConfigOption
}

// splitSections groups opts by the part of the key before the first dot,
// preserving first-seen order.
func splitSections(opts []ConfigOption) []tomlSection {
	out := []tomlSection{{}}
	index := map[string]int{"": 0}
	for _, o := range opts {
		name, key := "", o.Key
		if i := strings.IndexByte(o.Key, '.'); i >= 0 {
			name, key = o.Key[:i], o.Key[i+1:]
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, tomlSection{name: name})
		}
		out[i].opts = append(out[i].opts, ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return out
}

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	var lines []string
	lines = append(lines, "# LawBridge configuration (TOML)", "")
	for _, s := range splitSections(GetConfigOptions()) {
		if len(s.opts) == 0 {
			continue
		}
		if s.name != "" {
			lines = append(lines, "["+s.name+"]")
		}
		for _, o := range s.opts {
			lines = appendOption(lines, o)
		}
	}
	return strings.Join(lines, "\n")
}

// UpdateTOML merges missing defaults into an existing TOML document and
// comments out keys that are no longer known. Missing top-level keys go
// before the first table, missing table keys at the end of their table.
func UpdateTOML(existing string) (string, bool) {
	known := make(map[string]bool)
	for _, o := range GetConfigOptions() {
		known[o.Key] = true
	}

	type block struct {
		name  string
		lines []string
	}
	blocks := []*block{{}}
	byName := map[string]*block{"": blocks[0]}
	seen := make(map[string]bool)
	changed := false

	cur := blocks[0]
	for _, line := range strings.Split(existing, "\n") {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]") {
			name := strings.TrimSpace(trim[1 : len(trim)-1])
			cur = &block{name: name}
			blocks = append(blocks, cur)
			if _, dup := byName[name]; !dup {
				byName[name] = cur
			}
			cur.lines = append(cur.lines, line)
			continue
		}
		key, ok := parseTOMLKey(line)
		if !ok {
			cur.lines = append(cur.lines, line)
			continue
		}
		full := key
		if cur.name != "" {
			full = cur.name + "." + key
		}
		if !known[full] {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			cur.lines = append(cur.lines,
				indent+"# OUTDATED: option removed from config schema",
				indent+"# "+strings.TrimLeft(line, " \t"))
			changed = true
			continue
		}
		seen[full] = true
		cur.lines = append(cur.lines, line)
	}

	for _, s := range splitSections(GetConfigOptions()) {
		var missing []ConfigOption
		for _, o := range s.opts {
			full := o.Key
			if s.name != "" {
				full = s.name + "." + o.Key
			}
			if !seen[full] {
				missing = append(missing, o)
			}
		}
		if len(missing) == 0 {
			continue
		}
		changed = true
		b, ok := byName[s.name]
		if !ok {
			b = &block{name: s.name, lines: []string{"", "[" + s.name + "]"}}
			blocks = append(blocks, b)
			byName[s.name] = b
		}
		b.lines = trimTrailingBlank(b.lines)
		if len(b.lines) > 0 {
			b.lines = append(b.lines, "")
		}
		for _, o := range missing {
			b.lines = appendOption(b.lines, o)
		}
	}

	if !changed {
		return existing, false
	}
	var out []string
	for _, b := range blocks {
		out = append(out, b.lines...)
	}
	return strings.Join(out, "\n"), true
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func parseTOMLKey(line string) (string, bool) {
	trim := strings.TrimSpace(line)
	if trim == "" || strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, ";") {
		return "", false
	}
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "[") || strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

func appendOption(lines []string, o ConfigOption) []string {
	if o.Comment != "" {
		lines = append(lines, "# "+o.Comment)
	}
	return append(lines, o.Key+" = "+tomlValue(o.Default), "")
}

func tomlValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case []string:
		q := make([]string, len(x))
		for i, s := range x {
			q[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(q, ", ") + "]"
	default:
		return fmt.Sprint(x)
	}
}
