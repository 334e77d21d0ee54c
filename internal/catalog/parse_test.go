package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name   string
		raw    interface{}
		want   int
		wantOK bool
	}{
		{name: "nil", raw: nil},
		{name: "number", raw: 400.0, want: 400, wantOK: true},
		{name: "fractional number rounds", raw: 399.6, want: 400, wantOK: true},
		{name: "negative number", raw: -1.0},
		{name: "int", raw: 250, want: 250, wantOK: true},
		{name: "rupee sign", raw: "₹500", want: 500, wantOK: true},
		{name: "rs with thousands separator", raw: "Rs. 1,500", want: 1500, wantOK: true},
		{name: "suffix", raw: "800/-", want: 800, wantOK: true},
		{name: "range is absent", raw: "₹300 - ₹500"},
		{name: "negative string", raw: "-200"},
		{name: "text only", raw: "on request"},
		{name: "empty string", raw: ""},
		{name: "bool", raw: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		name   string
		raw    interface{}
		want   float64
		wantOK bool
	}{
		{name: "number", raw: 4.5, want: 4.5, wantOK: true},
		{name: "zero", raw: 0.0, want: 0, wantOK: true},
		{name: "string", raw: "4.2", want: 4.2, wantOK: true},
		{name: "out of five", raw: "3.9/5", want: 3.9, wantOK: true},
		{name: "with stars", raw: "4 stars", want: 4, wantOK: true},
		{name: "above range", raw: 5.5},
		{name: "negative", raw: -1.0},
		{name: "not a number", raw: "N/A"},
		{name: "nil", raw: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRating(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	id, ok := ParseID(" svc-1 ")
	assert.True(t, ok)
	assert.Equal(t, "svc-1", id)

	id, ok = ParseID(42.0)
	assert.True(t, ok)
	assert.Equal(t, "42", id)

	_, ok = ParseID(1.5)
	assert.False(t, ok)

	id, ok = ParseID(float64(1 << 53))
	assert.True(t, ok)
	assert.Equal(t, "9007199254740992", id)

	for _, v := range []float64{1e19, -1e19, float64(1<<53) + 2, math.Inf(1), math.NaN()} {
		_, ok = ParseID(v)
		assert.False(t, ok, "id %v must be rejected", v)
	}

	_, ok = ParseID("  ")
	assert.False(t, ok)

	_, ok = ParseID(nil)
	assert.False(t, ok)
}

func TestParseCoordinates(t *testing.T) {
	p, ok := ParseCoordinates(map[string]interface{}{"lat": 17.40, "lon": 78.47})
	assert.True(t, ok)
	assert.Equal(t, 17.40, p.Lat)
	assert.Equal(t, 78.47, p.Lon)

	p, ok = ParseCoordinates(map[string]interface{}{"lat": "17.41", "lon": "78.48"})
	assert.True(t, ok)
	assert.Equal(t, 78.48, p.Lon)

	p, ok = ParseCoordinates(map[string]interface{}{
		"coordinates": map[string]interface{}{"lat": 19.07, "lon": 72.87},
	})
	assert.True(t, ok)
	assert.Equal(t, 19.07, p.Lat)

	_, ok = ParseCoordinates(map[string]interface{}{"lat": 17.40})
	assert.False(t, ok, "both components are required")

	_, ok = ParseCoordinates(map[string]interface{}{"lat": 95.0, "lon": 78.0})
	assert.False(t, ok, "latitude out of range")
}
