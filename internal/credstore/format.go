package credstore

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
)

func (r *Record) value(col string, extra []string) string {
	switch col {
	case ColEmail:
		return r.Email
	case ColPassword:
		return r.Password
	case ColRole:
		return r.Role
	case ColIsActive:
		return r.IsActive
	case ColLoginCount:
		return strconv.Itoa(r.LoginCount)
	case ColLastLogin:
		return r.LastLogin
	case ColActiveSessionID:
		return r.ActiveSessionID
	case ColSessionLastSeen:
		return r.SessionLastSeen
	}
	for i, name := range extra {
		if name == col && i < len(r.extra) {
			return r.extra[i]
		}
	}
	return ""
}

// Encode writes t as CSV with its original column order.
func Encode(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return err
	}
	row := make([]string, len(t.header))
	for _, r := range t.records {
		for i, col := range t.header {
			row[i] = r.value(col, t.extra)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t *Table) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
