package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"ACME-1001", "ACME-1001", 100},
		{"ACME-1001", "ACME-1002", 89},
		{"kitten", "sitting", 62},
		{"WIDGET-RED", "WIDGET-BLU", 70},
		{"ACME-1001", "ZZZ-9", 14},
		{"AMZ-B001122334", "B001122334", 83},
		{"WIDG-0001", "WIDG-0001X", 95},
		{"ABC", "abc", 100},
		{"A-B", "a b", 100},
		{"", "ABC", 0},
		{"---", "ABC", 0},
	}
	for _, tc := range cases {
		t.Run(tc.a+"~"+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.want, Ratio(tc.a, tc.b))
			assert.Equal(t, tc.want, Ratio(tc.b, tc.a), "symmetric")
		})
	}
}

func TestIndelDistance(t *testing.T) {
	assert.Equal(t, 0, indelDistance([]rune("abc"), []rune("abc")))
	assert.Equal(t, 2, indelDistance([]rune("abc"), []rune("abd")))
	assert.Equal(t, 3, indelDistance([]rune(""), []rune("abc")))
}
