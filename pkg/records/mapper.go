package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// IDField is the key under which a record's external id is serialized.
const IDField = "_id"

// Fields maps column names to cell values.
type Fields map[string]string

// Record is one data row keyed by header. ID is its position among the data
// rows of the snapshot it was read from; it is not stored anywhere and stops
// being meaningful once any row above it is removed.
type Record struct {
	ID      int
	Fields  Fields
	headers []string
}

// Get returns the value of a column, "" when absent.
func (r Record) Get(column string) string {
	return r.Fields[column]
}

// MarshalJSON writes "_id" first and then one key per header in sheet order.
func (r Record) MarshalJSON() ([]byte, error) {
	keys := r.headers
	if keys == nil {
		keys = make([]string, 0, len(r.Fields))
		for k := range r.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"` + IDField + `":`)
	buf.WriteString(fmt.Sprint(r.ID))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == IDField || seen[k] {
			continue
		}
		seen[k] = true
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.Fields[k])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NormalizeHeaders trims every column name. Positions are kept, so an empty
// header cell still occupies its column.
func NormalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

// ToRecord maps a raw row onto headers. Every header yields a key; cells past
// the end of the row become "" and cells past the last header are ignored.
// A repeated header takes the value of its last column.
func ToRecord(headers, row []string) Record {
	fields := make(Fields, len(headers))
	for i, h := range headers {
		v := ""
		if i < len(row) {
			v = row[i]
		}
		fields[h] = v
	}
	return Record{Fields: fields, headers: headers}
}

// ToRow is the inverse of ToRecord: one cell per header, "" for missing
// fields. Fields that are not column names are dropped.
func ToRow(headers []string, fields Fields) []string {
	row := make([]string, len(headers))
	for i, h := range headers {
		row[i] = fields[h]
	}
	return row
}

// DecodeFields reads a JSON object of arbitrary values into Fields. Strings are
// kept verbatim, numbers keep their JSON text, booleans become "true"/"false"
// and null becomes "". Nested objects and arrays are kept as compact JSON.
// Keys are trimmed; two keys naming the same column are rejected.
func DecodeFields(r io.Reader) (Fields, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidBody)
	}
	return fieldsFromRaw(raw)
}

func fieldsFromRaw(raw map[string]json.RawMessage) (Fields, error) {
	fields := make(Fields, len(raw))
	for k, v := range raw {
		name := strings.TrimSpace(k)
		if name == IDField {
			continue
		}
		if _, dup := fields[name]; dup {
			return nil, fmt.Errorf("%w: field %q given more than once", ErrInvalidBody, name)
		}
		s, err := cellText(v)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidBody, k, err)
		}
		fields[name] = s
	}
	return fields, nil
}

func cellText(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", nil
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	return string(v), nil
}
