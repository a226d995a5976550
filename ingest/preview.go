package ingest

import (
	"io"
)

const DefaultPreviewRows = 10

// PreviewResult lists the columns and the first rows of a file so a user can pick the date and
// value columns
type PreviewResult struct {
	Columns  []string    `json:"columns"`
	HeadRows [][]string  `json:"headRows"`
	Meta     PreviewMeta `json:"meta"`
}

type PreviewMeta struct {
	Rows int `json:"rows"`
}

// Preview returns the header, up to limit data rows padded to the header width with empty
// strings and the total number of data rows
func Preview(r io.Reader, limit int) (*PreviewResult, error) {
	if limit <= 0 {
		limit = DefaultPreviewRows
	}

	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrParse
	}

	columns := normalizeHeader(records[0])
	data := records[1:]

	head := make([][]string, 0, min(limit, len(data)))
	for _, rec := range data[:min(limit, len(data))] {
		row := make([]string, len(columns))
		for i := range row {
			row[i] = normalizeCell(cell(rec, i))
		}
		head = append(head, row)
	}

	return &PreviewResult{
		Columns:  columns,
		HeadRows: head,
		Meta:     PreviewMeta{Rows: len(data)},
	}, nil
}
