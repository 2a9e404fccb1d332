package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trim and upper", "  b001122334 ", "B001122334"},
		{"quotes", `"'ab-12'"`, "AB-12"},
		{"inner spaces become hyphen", "ab 12", "AB-12"},
		{"whitespace run collapses", "ab \t 12", "AB-12"},
		{"nbsp inside", "sku\u00a0123", "SKU-123"},
		{"junk dropped", "a/b#c_d", "ABCD"},
		{"accents folded", "caf\u00e9-1", "CAFE-1"},
		{"ligature folded", "\ufb01le", "FILE"},
		{"ideographic space around", "\u3000B001122334\u3000", "B001122334"},
		{"em space leading", "\u2003B001122334", "B001122334"},
		{"narrow nbsp and quotes", "\u202f\"ab-12\"\u2009", "AB-12"},
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"quotes only", `" '`, ""},
		{"only junk", "!!!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"B001122334", "ab 12", "caf\u00e9-1", "SHO-TSHIRT-RED-L"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestNormalizeUnicodeSpaceKeepsASINRule(t *testing.T) {
	n := Normalize("\u3000B001122334\u3000")
	assert.Equal(t, "AMZ-B001122334", Transform(n, model.Amazon))
}
