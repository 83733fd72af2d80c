// Package delimited parses comma-separated text into records.
package delimited

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/leapstack-labs/runlens/pkg/core"
)

var numeric = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// Parse reads text with a header row and returns a sequence of records.
//
// Cells that look numeric become numbers, everything else stays a string.
// Short rows yield records without the trailing fields; extra cells are
// ignored. Empty lines are skipped. When a header repeats, the later column wins.
func Parse(text string) (*core.Value, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return core.List(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	records := core.List()
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		record := core.NewMap()
		for i, name := range header {
			if i >= len(row) {
				break
			}
			record.Set(name, Cell(row[i]))
		}
		records.Append(record)
	}
	return records, nil
}

// Cell coerces a single cell.
func Cell(s string) *core.Value {
	trimmed := strings.TrimSpace(s)
	if numeric.MatchString(trimmed) {
		if v, err := core.NumberLiteral(trimmed); err == nil {
			return v
		}
	}
	return core.String(s)
}
