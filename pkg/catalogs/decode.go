package catalogs

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/culturalmap/eventmap/pkg/errors"
)

// DecodeAssets decodes the asset catalog, which must be a JSON array of
// objects.
func DecodeAssets(data []byte, file string) ([]Asset, error) {
	raws, err := decodeArray(data, file, false)
	if err != nil {
		return nil, err
	}
	assets := make([]Asset, len(raws))
	for i, raw := range raws {
		if err := decodeObject(raw, &assets[i]); err != nil {
			return nil, errors.NewParseError("json", file, fmt.Sprintf("asset %d: %v", i, err), err)
		}
	}
	return assets, nil
}

// DecodeEvents decodes an event batch. A bare JSON array is always
// accepted; when wrapped is true an object with an "events" array is also
// accepted.
func DecodeEvents(data []byte, file string, wrapped bool) ([]*Event, error) {
	raws, err := decodeArray(data, file, wrapped)
	if err != nil {
		return nil, err
	}
	events := make([]*Event, len(raws))
	for i, raw := range raws {
		e := &Event{}
		if err := decodeObject(raw, e); err != nil {
			re := errors.NewRecordError(file, i, "", "", err.Error())
			re.Err = err
			return nil, re
		}
		events[i] = e
	}
	return events, nil
}

func decodeArray(data []byte, file string, wrapped bool) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.NewParseError("json", file, "empty document", nil)
	}

	switch trimmed[0] {
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, errors.WrapParse("json", file, err)
		}
		return raws, nil
	case '{':
		if !wrapped {
			return nil, errors.NewParseError("json", file, "expected a JSON array at top level", nil)
		}
		var doc struct {
			Events *[]json.RawMessage `json:"events"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, errors.WrapParse("json", file, err)
		}
		if doc.Events == nil {
			return nil, errors.NewParseError("json", file, `object has no "events" array`, nil)
		}
		return *doc.Events, nil
	default:
		return nil, errors.NewParseError("json", file, "expected a JSON array at top level", nil)
	}
}

func decodeObject(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("record is not an object")
	}
	return json.Unmarshal(trimmed, v)
}
