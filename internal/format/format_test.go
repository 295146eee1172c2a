package format

import (
	"testing"
	"time"

	"github.com/Veraticus/immowert/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		want   string
		v      float64
		places int32
	}{
		{v: 0, places: 0, want: "0"},
		{v: 999, places: 0, want: "999"},
		{v: 1000, places: 0, want: "1.000"},
		{v: 420000, places: 0, want: "420.000"},
		{v: 1234567.891, places: 2, want: "1.234.567,89"},
		{v: 350, places: 2, want: "350,00"},
		{v: 2.5, places: 0, want: "3"},
		{v: -12500.5, places: 1, want: "-12.500,5"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.v, tt.places))
		})
	}
}

func TestLocale(t *testing.T) {
	assert.Equal(t, "750.000", Locale(750000))
	assert.Equal(t, "1.234,5", Locale(1234.5))
	assert.Equal(t, "0,125", Locale(0.125))
	assert.Equal(t, "3,142", Locale(3.14159))
}

func TestValue(t *testing.T) {
	assert.Equal(t, "420.000 €", Value(420000, model.UnitEUR))
	assert.Equal(t, "350,00 €/m²", Value(350, model.UnitEURPerSquareMeter))
}

func TestDate(t *testing.T) {
	ts := time.Date(2026, 10, 5, 9, 7, 0, 0, time.UTC)
	assert.Equal(t, "05.10.2026", Date(ts))
	assert.Equal(t, "05.10.2026, 09:07", DateTime(ts))
}
