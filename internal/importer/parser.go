package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var (
	ErrEmptyFile      = errors.New("file contains no data rows")
	ErrMalformedFile  = errors.New("file could not be parsed as delimited text")
	ErrMissingColumns = errors.New("required columns not found")
)

// Row is one parsed input line with its columns resolved to canonical fields.
// Line is 1-based and counts the header, matching what a user sees in a
// spreadsheet.
type Row struct {
	Line   int
	fields map[Field]string
}

func (r Row) Get(f Field) string {
	return r.fields[f]
}

// NewRow builds a Row directly from canonical fields. Used by the multi-file
// join, which synthesizes flat rows out of three separate exports.
func NewRow(line int, fields map[Field]string) Row {
	return Row{Line: line, fields: fields}
}

// Parse reads raw delimited text into rows according to the schema. Any error
// here is fatal for the whole import: no partial parse is accepted.
func Parse(contents []byte, schema Schema) ([]Row, error) {
	contents = bytes.TrimPrefix(contents, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(contents)) == 0 {
		return nil, ErrEmptyFile
	}

	reader := csv.NewReader(bytes.NewReader(contents))
	reader.Comma = detectDelimiter(contents, schema.SniffDelimiter)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	columns, err := resolveColumns(header, schema)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0)
	line := 1
	for {
		record, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedFile, line, err)
		}
		if isRecordEmpty(record) {
			continue
		}
		fields := make(map[Field]string, len(columns))
		for idx, field := range columns {
			if idx < len(record) {
				fields[field] = strings.TrimSpace(record[idx])
			}
		}
		rows = append(rows, Row{Line: line, fields: fields})
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// resolveColumns maps header positions to canonical fields through the
// schema's alias table. Unknown columns are ignored; a missing required
// column fails with a diagnostic listing what was present versus expected.
func resolveColumns(header []string, schema Schema) (map[int]Field, error) {
	byAlias := make(map[string]Field)
	for field, aliases := range schema.Aliases {
		for _, alias := range aliases {
			byAlias[normalizeHeader(alias)] = field
		}
	}

	columns := make(map[int]Field, len(header))
	found := make(map[Field]bool, len(header))
	for idx, raw := range header {
		name := normalizeHeader(raw)
		if field, ok := byAlias[name]; ok && !found[field] {
			columns[idx] = field
			found[field] = true
		}
	}

	var missing []string
	for _, req := range schema.Required {
		if !found[req] {
			missing = append(missing, string(req))
		}
	}
	if len(missing) > 0 {
		present := make([]string, 0, len(header))
		for _, raw := range header {
			if name := normalizeHeader(raw); name != "" {
				present = append(present, name)
			}
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: missing %s; file has: %s",
			ErrMissingColumns, strings.Join(missing, ", "), strings.Join(present, ", "))
	}
	return columns, nil
}

func normalizeHeader(raw string) string {
	name := strings.TrimPrefix(raw, "\uFEFF")
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

// detectDelimiter counts candidate separators on the header line. Legacy
// WordPress exports show up with semicolons or tabs depending on the locale
// of the machine that produced them; the platform template always uses
// commas, so sniffing is per-schema.
func detectDelimiter(contents []byte, sniff bool) rune {
	if !sniff {
		return ','
	}
	firstLine := contents
	if idx := bytes.IndexByte(contents, '\n'); idx >= 0 {
		firstLine = contents[:idx]
	}
	best := ','
	bestCount := bytes.Count(firstLine, []byte{','})
	for _, candidate := range []byte{';', '\t'} {
		if count := bytes.Count(firstLine, []byte{candidate}); count > bestCount {
			best = rune(candidate)
			bestCount = count
		}
	}
	return best
}

func isRecordEmpty(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
