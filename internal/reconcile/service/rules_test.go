package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

func TestTransform(t *testing.T) {
	cases := []struct {
		name string
		in   string
		mp   model.Marketplace
		want string
	}{
		{"amazon asin", "B001122334", model.Amazon, "AMZ-B001122334"},
		{"amazon non asin", "X001122334", model.Amazon, "X001122334"},
		{"amazon short", "B0011", model.Amazon, "B0011"},
		{"ebay item id keeps last 8", "123456789012", model.EBay, "EBY-56789012"},
		{"ebay other", "ABC-1", model.EBay, "ABC-1"},
		{"shopify always prefixed", "TSHIRT-RED-L", model.Shopify, "SHO-TSHIRT-RED-L"},
		{"walmart", "12345678", model.Walmart, "WMT-12345678"},
		{"walmart too short", "1234567", model.Walmart, "1234567"},
		{"no rule", "ANY-THING", model.Etsy, "ANY-THING"},
		{"unknown tag", "ANY-THING", model.Marketplace("otto"), "ANY-THING"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Transform(tc.in, tc.mp))
		})
	}
}

func TestHasRule(t *testing.T) {
	for _, mp := range []model.Marketplace{model.Amazon, model.EBay, model.Shopify, model.Walmart} {
		assert.True(t, HasRule(mp), mp)
	}
	assert.False(t, HasRule(model.Etsy))
	assert.False(t, HasRule(model.Custom))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		sku  string
		mp   model.Marketplace
		want bool
	}{
		{"B001122334", model.Amazon, true},
		{"b001122334", model.Amazon, true},
		{"B00112233", model.Amazon, false},
		{"123456789012", model.EBay, true},
		{"12345678901", model.EBay, false},
		{"tshirt_red-l", model.Shopify, true},
		{"tshirt red", model.Shopify, false},
		{"ABCD1234", model.Walmart, true},
		{"ABC-1234", model.Walmart, false},
		{"", model.Amazon, false},
		{"   ", model.Custom, false},
		{"AB-1234", model.Custom, true},
		{"AB-1234,CD-5678", model.Custom, true},
		{"AB 1234", model.Custom, false},
		{"!!!", model.Etsy, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.mp)+"/"+tc.sku, func(t *testing.T) {
			assert.Equal(t, tc.want, Validate(tc.sku, tc.mp))
		})
	}
}

func TestSplitCombo(t *testing.T) {
	assert.Equal(t, []string{"AB-1234", "CD-5678"}, SplitCombo("AB-1234,CD-5678"))
	assert.Equal(t, []string{"AB-1234"}, SplitCombo("AB-1234"))
	assert.Equal(t, []string{"foo,bar"}, SplitCombo("foo,bar"))
	assert.Equal(t, []string{""}, SplitCombo(""))
}
