// Package save writes pipeline artifacts. Output is byte-stable for equal
// input: map keys are sorted, HTML characters are not escaped and files are
// replaced atomically.
package save

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/culturalmap/eventmap/pkg/constants"
	"github.com/culturalmap/eventmap/pkg/errors"
)

// Save encodes v and writes it to the configured writer or path. A writer
// takes precedence over a path.
func Save(v any, opts ...Option) error {
	options := Defaults().Apply(opts...)
	if !options.format.IsValid() {
		return &errors.ValidationError{Field: "format", Value: options.format.String(), Message: "unsupported format"}
	}

	data, err := Encode(v, options.format)
	if err != nil {
		return err
	}

	if options.writer != nil {
		if _, err := options.writer.Write(data); err != nil {
			return errors.WrapIO("write", "output", err)
		}
		return nil
	}
	if options.path == "" {
		return &errors.ValidationError{Field: "path", Message: "a path or writer is required"}
	}
	return WriteFile(options.path, data)
}

// Encode renders v in the given format with a trailing newline.
func Encode(v any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, errors.NewParseError("yaml", "", fmt.Sprintf("encoding: %v", err), err)
		}
		return data, nil
	case FormatJSON, FormatCompactJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if format == FormatJSON {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(v); err != nil {
			return nil, errors.NewParseError("json", "", fmt.Sprintf("encoding: %v", err), err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported format %s", format)
}

// WriteFile writes data to path through a temporary file in the same
// directory, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
