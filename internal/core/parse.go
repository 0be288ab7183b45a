package core

// parse.go turns uploaded CSV bytes into a RawDataset.
//
// Uploads come from spreadsheet exports, so the parser accepts:
//   - a UTF-8 byte order mark, or UTF-16 with a BOM
//   - Windows-1252 text when the bytes are not valid UTF-8
//   - ragged rows shorter than the header (padded with empty values)
//   - blank or whitespace-only rows (skipped)
//
// Cell values are kept exactly as written. Type handling happens in coerce.go.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVExtension is the only accepted upload suffix.
const CSVExtension = ".csv"

// CheckExtension fails with InvalidExtension unless filename ends in ".csv".
// The comparison is case-sensitive.
func CheckExtension(filename string) error {
	if !strings.HasSuffix(filename, CSVExtension) {
		return invalidExtension(filename)
	}
	return nil
}

// ParseCSV reads a whole CSV document. The first record is the header.
func ParseCSV(data []byte) (*RawDataset, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, invalidFormat(err)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, invalidFormat(errors.New("file is empty"))
	}
	if err != nil {
		return nil, invalidFormat(err)
	}

	columns := uniqueHeaders(header)
	ds := &RawDataset{Columns: columns}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, invalidFormat(err)
		}
		if isEmptyRow(record) {
			continue
		}
		if len(record) > len(columns) {
			line, _ := reader.FieldPos(0)
			return nil, invalidFormat(fmt.Errorf("line %d: expected %d fields, got %d", line, len(columns), len(record)))
		}

		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

// decodeText returns data as UTF-8. A BOM selects UTF-8 or UTF-16; without one
// the input is used as-is when it is valid UTF-8 and read as Windows-1252 otherwise.
func decodeText(data []byte) ([]byte, error) {
	var fallback encoding.Encoding = unicode.UTF8
	if !utf8.Valid(data) {
		fallback = charmap.Windows1252
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(fallback.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}

// uniqueHeaders names empty header cells "Unnamed: <index>" and suffixes
// repeated names with ".1", ".2", ... in order of appearance.
func uniqueHeaders(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	next := make(map[string]int)
	for i, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if used[name] {
			base := name
			for used[name] {
				next[base]++
				name = base + "." + strconv.Itoa(next[base])
			}
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// isEmptyRow checks if a CSV row contains only empty or whitespace values.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
