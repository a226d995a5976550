package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode returns the input as UTF-8. Bytes that are not valid UTF-8 are treated as Shift_JIS which
// is what spreadsheet exports in Japanese locales produce.
func decode(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}

	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("unable to decode as shift_jis, %v, %w", err, ErrParse)
	}
	if !utf8.Valid(decoded) || bytes.ContainsRune(decoded, utf8.RuneError) {
		return nil, fmt.Errorf("unknown text encoding, %w", ErrParse)
	}
	return decoded, nil
}

// readRecords decodes and splits the input into records. Rows may have differing numbers of
// fields; blank lines are skipped.
func readRecords(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read input, %v, %w", err, ErrParse)
	}
	text, err := decode(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv, %v, %w", err, ErrParse)
	}
	return records, nil
}

// normalizeCell folds full-width characters and trims surrounding whitespace
func normalizeCell(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

func normalizeHeader(header []string) []string {
	res := make([]string, len(header))
	for i, col := range header {
		res[i] = normalizeCell(col)
	}
	return res
}
