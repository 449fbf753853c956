package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	midnight := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		val    any
		dbType string
		want   any
	}{
		{"date column", midnight, "DATE", "2024-03-01"},
		{"midnight timestamp", midnight, "TIMESTAMP", "2024-03-01T00:00:00Z"},
		{"midnight without type", midnight, "", "2024-03-01T00:00:00Z"},
		{"timestamp", morning, "DATETIME", "2024-03-01T07:30:00Z"},
		{"bytes", []byte("R1"), "VARCHAR", "R1"},
		{"nil", nil, "TEXT", nil},
		{"integer", int64(3), "INTEGER", int64(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.val, tt.dbType))
		})
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := SplitStatements(`-- header
CREATE TABLE a (x TEXT);
INSERT INTO a VALUES ('semi;colon');
`)
	assert.Equal(t, []string{"CREATE TABLE a (x TEXT)", "INSERT INTO a VALUES ('semi;colon')"}, stmts)
}
