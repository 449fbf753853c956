package browser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EditSession is the form state for one record. Sessions are values; Change
// returns a new one and leaves its input untouched.
type EditSession struct {
	Record     Record
	IsCreating bool
	Err        error

	schema *TableSchema
}

// OpenEditor starts a session for record, or for a new record when record is
// nil. Tables without a primary key cannot be edited.
func OpenEditor(record Record, schema *TableSchema) (EditSession, error) {
	if schema == nil {
		return EditSession{}, ErrSchemaUnavailable
	}
	if !schema.HasPrimaryKey() {
		return EditSession{}, ErrNoPrimaryKey
	}

	s := EditSession{
		Record:     make(Record, len(schema.Columns)),
		IsCreating: record == nil,
		schema:     schema,
	}
	for _, col := range schema.Columns {
		if record == nil {
			s.Record[col.Name] = nil
			continue
		}
		if v, ok := record[col.Name]; ok {
			s.Record[col.Name] = v
		}
	}
	return s, nil
}

// ReadOnly reports whether field cannot be changed in this session. The key
// of an existing record is fixed because updates are addressed by it.
func (s EditSession) ReadOnly(field string) bool {
	return !s.IsCreating && s.schema != nil && field == s.schema.PK
}

func (s EditSession) Schema() *TableSchema {
	return s.schema
}

// Change sets field from raw input, coerced per the column's TypeTag.
func (s EditSession) Change(field string, raw any) (EditSession, error) {
	if s.schema == nil {
		return s, ErrNoSession
	}
	col, ok := s.schema.Column(field)
	if !ok {
		return s, &ValidationError{Field: field, Message: "unknown field"}
	}
	if s.ReadOnly(field) {
		return s, &ValidationError{Field: field, Message: "primary key cannot be changed"}
	}

	value, err := Coerce(col.Type, raw)
	if err != nil {
		return s, &ValidationError{Field: field, Message: err.Error()}
	}

	next := s
	next.Record = make(Record, len(s.Record))
	for k, v := range s.Record {
		next.Record[k] = v
	}
	next.Record[field] = value
	next.Err = nil
	return next, nil
}

// Submit validates the session and returns the payload to send. New records
// omit unset fields so the database can apply its defaults.
func (s EditSession) Submit() (Record, error) {
	if s.schema == nil {
		return nil, ErrNoSession
	}
	pk := s.schema.PK
	if s.IsCreating && isBlank(s.Record[pk]) {
		return nil, &ValidationError{Field: pk, Message: "primary key is required"}
	}

	payload := make(Record, len(s.schema.Columns))
	for _, col := range s.schema.Columns {
		v, ok := s.Record[col.Name]
		if !ok || (s.IsCreating && v == nil) {
			continue
		}
		payload[col.Name] = v
	}
	return payload, nil
}

// Coerce converts raw form input to a value of the given kind. Numbers are
// parsed, with nil and blank input becoming nil. Booleans follow checkbox
// truthiness. Text, dates and times pass through unchanged.
func Coerce(tag TypeTag, raw any) (any, error) {
	switch tag {
	case TypeInteger:
		return coerceInteger(raw)
	case TypeFloat:
		return coerceFloat(raw)
	case TypeBoolean:
		return truthy(raw), nil
	case TypeText, TypeDate, TypeTime:
		switch v := raw.(type) {
		case nil, string:
			return v, nil
		default:
			return fmt.Sprint(v), nil
		}
	}
	return nil, fmt.Errorf("unknown type tag %d", tag)
}

func coerceInteger(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case json.Number:
		return coerceInteger(v.String())
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("cannot use %T as an integer", raw)
}

func coerceFloat(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return coerceFloat(v.String())
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v)
		}
		return f, nil
	}
	return nil, fmt.Errorf("cannot use %T as a number", raw)
}

func truthy(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes", "on", "checked":
			return true
		}
		return false
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	return false
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

// KeyString renders a primary key value the way it appears in a URL.
func KeyString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}
