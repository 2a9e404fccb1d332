package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{"1,234.50", 1234.5, true},
		{"$12.00", 12, true},
		{"1 234,50", 1234.5, true},
		{"1.234,50", 1234.5, true},
		{"(12.00)", -12, true},
		{"EUR 3,5", 3.5, true},
		{"1,234", 1234, true},
		{"1,234,567", 1234567, true},
		{"-7", -7, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseAmount(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}
