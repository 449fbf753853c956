package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeValues(t *testing.T) {
	in := map[string]any{
		"route_type": json.Number("3"),
		"stop_lat":   json.Number("48.8566"),
		"huge":       json.Number("1e400"),
		"name":       "Central",
		"note":       nil,
	}

	out := NormalizeValues(in)
	assert.Equal(t, int64(3), out["route_type"])
	assert.Equal(t, 48.8566, out["stop_lat"])
	assert.Equal(t, "1e400", out["huge"])
	assert.Equal(t, "Central", out["name"])
	assert.Nil(t, out["note"])
	assert.Contains(t, out, "note")
}
