package ingest

import (
	"bufio"
	"io"
	"strings"

	"github.com/jengzang/maritime-metrics-go/internal/apperr"
	"github.com/jengzang/maritime-metrics-go/internal/classify"
)

const maxLineBytes = 1 << 20

// SourceRow is a split data row with its 1-based line number
type SourceRow struct {
	Line int
	Row  classify.Row
}

// ReadRows reads the tabular stream, skips the header line and blank lines and
// splits every other line on commas. Quoted commas are not supported.
func ReadRows(r io.Reader) ([]SourceRow, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var (
		rows      []SourceRow
		line      int
		seenFirst bool
	)
	for scanner.Scan() {
		line++
		if !seenFirst {
			seenFirst = true
			continue
		}

		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		row, err := SplitRow(line, text)
		if err != nil {
			return nil, err
		}
		rows = append(rows, SourceRow{Line: line, Row: row})
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.MalformedInput("failed to read line %d: %v", line+1, err)
	}
	if !seenFirst {
		return nil, apperr.MalformedInput("empty input: no header line")
	}

	return rows, nil
}

// SplitRow splits one line into exactly classify.ColumnCount unquoted fields
func SplitRow(line int, text string) (classify.Row, error) {
	var row classify.Row

	parts := strings.Split(text, ",")
	if len(parts) != classify.ColumnCount {
		return row, apperr.MalformedInput("line %d: expected %d fields, got %d", line, classify.ColumnCount, len(parts))
	}
	for i, p := range parts {
		row[i] = classify.Unquote(p)
	}
	return row, nil
}
