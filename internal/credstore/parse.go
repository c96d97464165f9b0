package credstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func NormalizePassword(s string) string { return strings.TrimSpace(s) }

func NormalizeRole(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func NormalizeActive(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// ParseLoginCount coerces a login_count cell. Empty, unparseable, negative
// and non-finite values become 0; "4.0" style floats are truncated.
func ParseLoginCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// Decode reads a credential table from CSV, validating the header and
// normalizing every row.
func Decode(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Field: RequiredColumns[0], Reason: "missing column"}
	}
	if err != nil {
		return nil, syntaxErr("read credential header", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	// Spreadsheet exports often start with a UTF-8 BOM.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	idx := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := idx[name]; dup {
			return nil, &SchemaError{Field: name, Line: 1, Reason: "duplicate column"}
		}
		idx[name] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &SchemaError{Field: col, Reason: "missing column"}
		}
	}

	required := make(map[string]bool, len(RequiredColumns))
	for _, col := range RequiredColumns {
		required[col] = true
	}
	var extra []string
	for _, name := range header {
		if !required[name] {
			extra = append(extra, name)
		}
	}

	t := &Table{header: header, extra: extra, byEmail: map[string]*Record{}}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, syntaxErr("read credential row", err)
		}
		line, _ := cr.FieldPos(0)
		if len(row) != len(header) {
			return nil, &SchemaError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(row))}
		}

		cell := func(col string) string { return row[idx[col]] }
		rec := &Record{
			Email:           NormalizeEmail(cell(ColEmail)),
			Password:        NormalizePassword(cell(ColPassword)),
			Role:            NormalizeRole(cell(ColRole)),
			IsActive:        NormalizeActive(cell(ColIsActive)),
			LoginCount:      ParseLoginCount(cell(ColLoginCount)),
			LastLogin:       cell(ColLastLogin),
			ActiveSessionID: cell(ColActiveSessionID),
			SessionLastSeen: cell(ColSessionLastSeen),
		}
		for _, col := range extra {
			rec.extra = append(rec.extra, cell(col))
		}

		if rec.Email == "" {
			return nil, &SchemaError{Field: ColEmail, Line: line, Reason: "empty email"}
		}
		if _, dup := t.byEmail[rec.Email]; dup {
			return nil, &SchemaError{Field: ColEmail, Line: line, Reason: fmt.Sprintf("duplicate email %q", rec.Email)}
		}
		t.byEmail[rec.Email] = rec
		t.records = append(t.records, rec)
	}
	return t, nil
}

// syntaxErr reports malformed CSV as a SchemaError. Other reader failures
// are I/O errors and stay wrapped.
func syntaxErr(op string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &SchemaError{Line: pe.Line, Reason: pe.Err.Error()}
	}
	return fmt.Errorf("%s: %w", op, err)
}
