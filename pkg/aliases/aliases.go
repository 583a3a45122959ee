// Package aliases loads the manual venue alias file and resolves each
// alias against the asset index. Alias problems never stop a run: they are
// reported as warnings and the alias is skipped.
package aliases

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/culturalmap/eventmap/internal/textnorm"
	"github.com/culturalmap/eventmap/pkg/catalogs"
)

// Entry is one raw alias record. Values stay untyped until Resolve so that
// a malformed entry only costs that entry.
type Entry = any

// File is the parsed alias document.
type File struct {
	Path    string
	Entries []Entry
}

// Load reads an alias document in JSON or YAML (chosen by extension).
// A missing file, an unreadable or unparsable file, a non-object document,
// or a document without an "aliases" list all yield an empty File plus a
// warning.
func Load(path string) (*File, []string) {
	f := &File{Path: path}
	if strings.TrimSpace(path) == "" {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, []string{fmt.Sprintf("Alias file not found, continuing without aliases: %s", path)}
		}
		return f, []string{fmt.Sprintf("Alias file unreadable, continuing without aliases: %s: %v", path, err)}
	}

	entries, warning := Parse(data, formatOf(path))
	if warning != "" {
		return f, []string{fmt.Sprintf("%s: %s", warning, path)}
	}
	f.Entries = entries
	return f, nil
}

// Parse decodes an alias document. The returned warning is empty on
// success.
func Parse(data []byte, format string) ([]Entry, string) {
	var doc any
	var err error
	if format == "yaml" {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Sprintf("Alias file is not valid %s (%v)", strings.ToUpper(format), err)
	}

	obj, ok := asObject(doc)
	if !ok {
		return nil, "Alias file must be an object"
	}
	list, ok := obj["aliases"].([]any)
	if !ok {
		return nil, "Alias file missing aliases list"
	}
	return list, ""
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// asObject normalizes decoded maps. YAML decoders may produce
// map[any]any for nested mappings.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return textnorm.Text(v)
	case nil:
		return ""
	default:
		return textnorm.Text(fmt.Sprint(v))
	}
}

// intField accepts whole numbers only. JSON numbers decode as float64 and
// YAML integers as int64 or uint64.
func intField(obj map[string]any, key string) (int, bool) {
	switch v := obj[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		if v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		i, err := strconv.Atoi(v.String())
		return i, err == nil
	default:
		return 0, false
	}
}

func pidField(obj map[string]any, key string) catalogs.ID {
	switch v := obj[key].(type) {
	case string:
		return catalogs.ID(strings.TrimSpace(v))
	case float64:
		if v == math.Trunc(v) {
			return catalogs.ID(strconv.FormatInt(int64(v), 10))
		}
	case int, int64, uint64:
		return catalogs.ID(fmt.Sprint(v))
	}
	return ""
}
