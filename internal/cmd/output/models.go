package output

import (
	"io"

	"github.com/culturalmap/eventmap/internal/cmd/constants"
	"github.com/culturalmap/eventmap/internal/cmd/table"
)

// Write renders data in the requested format. Table formats use the
// prepared table data; every other format encodes the raw value.
func Write(w io.Writer, format Format, raw any, tableData table.Data) error {
	formatter := NewFormatter(format)

	var outputData any
	switch string(format) {
	case constants.FormatTable, constants.FormatWide, "":
		outputData = tableData
	default:
		outputData = raw
	}

	return formatter.Format(w, outputData)
}

// IsTable reports whether the format renders tables.
func IsTable(format Format) bool {
	switch string(format) {
	case constants.FormatTable, constants.FormatWide, "":
		return true
	}
	return false
}
