package config

import (
	"fmt"
	"strconv"
	"strings"
)

// section groups options sharing a dotted prefix; the top-level group has Name "".
type section struct {
	Name string
	Opts []ConfigOption
}

// groupOptions splits dotted keys into TOML tables, keeping first-seen order.
func groupOptions(opts []ConfigOption) []section {
	out := []section{{}}
	index := map[string]int{"": 0}
	for _, o := range opts {
		name, key := "", o.Key
		if i := strings.Index(o.Key, "."); i >= 0 {
			name, key = o.Key[:i], o.Key[i+1:]
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, section{Name: name})
		}
		out[i].Opts = append(out[i].Opts, ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return out
}

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	lines := []string{"# tabnote configuration (TOML)", ""}
	lines = appendSections(lines, groupOptions(GetConfigOptions()))
	return strings.Join(lines, "\n")
}

// UpdateTOML adds missing defaults to an existing TOML document and
// comments out keys that are no longer recognised. Missing keys of a table
// already present are inserted at the end of that table.
func UpdateTOML(existing string) (string, bool) {
	known := make(map[string]bool)
	for _, o := range GetConfigOptions() {
		known[o.Key] = true
	}

	present := make(map[string]bool)
	tableEnd := make(map[string]int)
	firstTable := -1
	current := ""
	changed := false
	var out []string
	for _, line := range strings.Split(existing, "\n") {
		trim := strings.TrimSpace(line)
		switch {
		case trim == "" || strings.HasPrefix(trim, "#"):
			out = append(out, line)
			continue
		case strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]"):
			current = strings.TrimSpace(trim[1 : len(trim)-1])
			if firstTable < 0 {
				firstTable = len(out)
			}
		default:
			key, ok := parseTOMLKey(trim)
			if !ok {
				break
			}
			if current != "" {
				key = current + "." + key
			}
			present[key] = true
			if !known[key] {
				indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
				out = append(out, indent+"# OUTDATED: option removed from config schema", indent+"# "+trim)
				tableEnd[current] = len(out) - 1
				changed = true
				continue
			}
		}
		out = append(out, line)
		tableEnd[current] = len(out) - 1
	}

	var missing []ConfigOption
	for _, o := range GetConfigOptions() {
		if !present[o.Key] {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return strings.Join(out, "\n"), changed
	}

	const marker = "# Added by config update"
	inserts := make(map[int][]string)
	var tail []string
	for _, s := range groupOptions(missing) {
		if len(s.Opts) == 0 {
			continue
		}
		end, seen := tableEnd[s.Name]
		switch {
		case s.Name == "":
			at := len(out)
			if firstTable >= 0 {
				at = firstTable
			}
			inserts[at] = appendSections(append(inserts[at], marker), []section{s})
		case seen:
			body := section{Opts: s.Opts}
			inserts[end+1] = appendSections(append(inserts[end+1], marker), []section{body})
		default:
			tail = appendSections(append(tail, marker), []section{s})
		}
	}

	merged := make([]string, 0, len(out)+len(tail))
	for i := 0; i <= len(out); i++ {
		merged = append(merged, inserts[i]...)
		if i < len(out) {
			merged = append(merged, out[i])
		}
	}
	merged = append(merged, tail...)
	return strings.Join(merged, "\n"), true
}

func appendSections(lines []string, sections []section) []string {
	for _, s := range sections {
		if len(s.Opts) == 0 {
			continue
		}
		if s.Name != "" {
			lines = append(lines, "["+s.Name+"]")
		}
		for _, o := range s.Opts {
			if o.Comment != "" {
				lines = append(lines, "# "+o.Comment)
			}
			lines = append(lines, o.Key+" = "+tomlValue(o.Default), "")
		}
	}
	return lines
}

func parseTOMLKey(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

func tomlValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case []string:
		q := make([]string, len(x))
		for i, s := range x {
			q[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(q, ", ") + "]"
	default:
		return fmt.Sprintf("%v", x)
	}
}
