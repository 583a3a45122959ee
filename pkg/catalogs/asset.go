// Package catalogs defines the asset and event records the pipeline works
// on, the read-only asset index, and the decoding rules for the JSON shapes
// the catalog and the adapters produce.
package catalogs

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/culturalmap/eventmap/pkg/categories"
)

// Asset is a curated place record. Assets are read-only and referred to by
// their position in the catalog.
type Asset struct {
	PID         ID     `json:"pid,omitempty" yaml:"pid,omitempty"`
	Name        string `json:"n" yaml:"n"`
	City        string `json:"c,omitempty" yaml:"c,omitempty"`
	Category    string `json:"l,omitempty" yaml:"l,omitempty"`
	Description string `json:"d,omitempty" yaml:"d,omitempty"`
}

// CategoryValue returns the asset's category label.
func (a Asset) CategoryValue() categories.Category {
	return categories.Category(strings.TrimSpace(a.Category))
}

// ID is an external identifier that feeds write either as a JSON string or
// as a number. It always re-encodes as a string.
type ID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}
