package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{-3, ""},
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{31, "AE"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
		{16384, "XFD"},
	}
	for _, tt := range tests {
		if got := ColumnLetter(tt.n); got != tt.want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestColumnNumberRoundTrip(t *testing.T) {
	for n := 1; n <= 2000; n++ {
		got, err := ColumnNumber(ColumnLetter(n))
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
	got, err := ColumnNumber("ae")
	require.NoError(t, err)
	assert.Equal(t, 31, got)

	_, err = ColumnNumber("A1")
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = ColumnNumber("")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'Visão geral'", QuoteSheet("Visão geral"))
	assert.Equal(t, "'O''Brien'", QuoteSheet("O'Brien"))
}

func TestRowRange(t *testing.T) {
	assert.Equal(t, "'Dados'!A2:B2", RowRange("Dados", 2, 2))
	assert.Equal(t, "'Dados'!A5:AE5", RowRange("Dados", 5, 31))
	assert.Equal(t, "'Dados'!A3:AA3", RowRange("Dados", 3, 27))
	assert.Equal(t, "'Dados'!1:1", HeaderRange("Dados"))
	assert.Equal(t, "'Dados'", SheetRange("Dados"))
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want Range
	}{
		{"Sheet1", Range{Sheet: "Sheet1"}},
		{"'Visão geral'", Range{Sheet: "Visão geral"}},
		{"'Visão geral'!A:AE", Range{Sheet: "Visão geral", StartCol: 1, EndCol: 31}},
		{"Sheet1!A1:C3", Range{Sheet: "Sheet1", StartCol: 1, StartRow: 1, EndCol: 3, EndRow: 3}},
		{"Sheet1!1:1", Range{Sheet: "Sheet1", StartRow: 1, EndRow: 1}},
		{"Sheet1!B2", Range{Sheet: "Sheet1", StartCol: 2, StartRow: 2, EndCol: 2, EndRow: 2}},
		{"'O''Brien'!A2:AA2", Range{Sheet: "O'Brien", StartCol: 1, StartRow: 2, EndCol: 27, EndRow: 2}},
		{"'a!b'!A1", Range{Sheet: "a!b", StartCol: 1, StartRow: 1, EndCol: 1, EndRow: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRangeErrors(t *testing.T) {
	for _, in := range []string{"", "!A1", "'unterminated", "''!A1", "S!A1:B2:C3", "S!C1:A1", "S!A3:B1", "S!A:1", "S!0:0", "'S'x"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseRange(in)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestRangeStringRoundTrip(t *testing.T) {
	for _, in := range []string{"'S'", "'S'!A1:C3", "'S'!A:C", "'S'!1:1", "'S'!B2", "'It''s'!A2:AE2"} {
		r, err := ParseRange(in)
		require.NoError(t, err)
		assert.Equal(t, in, r.String())
	}
}
