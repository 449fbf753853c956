package common

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

var (
	identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	commentRegex    = regexp.MustCompile(`(?m)^\s*--.*$`)
)

func IsValidIdentifier(s string) bool {
	return identifierRegex.MatchString(s)
}

// ValidateIdentifiers rejects any table or column name that could not be
// safely interpolated into SQL.
func ValidateIdentifiers(names ...string) error {
	for _, name := range names {
		if !IsValidIdentifier(name) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
	}
	return nil
}

// SplitStatements splits a script on semicolons that are not inside quotes.
func SplitStatements(script string) []string {
	script = commentRegex.ReplaceAllString(script, "")

	var (
		statements []string
		current    strings.Builder
		quote      rune
	)
	for _, ch := range script {
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
		case ch == ';':
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}
		current.WriteRune(ch)
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// FormatValue converts a driver value into something that encodes cleanly
// as JSON. dbType is the column's declared type; only DATE columns render
// times without a clock part.
func FormatValue(val any, dbType string) any {
	switch v := val.(type) {
	case nil:
		return nil
	case []byte:
		return string(v)
	case time.Time:
		if strings.EqualFold(strings.TrimSpace(dbType), "DATE") {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339Nano)
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
