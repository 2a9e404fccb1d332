package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

func TestScore(t *testing.T) {
	widget := &model.CatalogProduct{ID: "p1", SKU: "W-1", Name: "Widget"}

	cases := []struct {
		name        string
		original    string
		transformed string
		mp          model.Marketplace
		matched     *model.CatalogProduct
		conf        float64
		method      model.Method
	}{
		{
			name:     "exact sku match forces 1.0",
			original: "b0", transformed: "W-1", mp: model.Etsy, matched: widget,
			conf: 1.0, method: model.MethodAutomatic,
		},
		{
			name:     "asin without match",
			original: "B001122334", transformed: "AMZ-B001122334", mp: model.Amazon,
			conf: 0.8, method: model.MethodAISuggested,
		},
		{
			name:     "asin with match clamps at 1.0",
			original: "B001122334", transformed: "AMZ-B001122334", mp: model.Amazon, matched: widget,
			conf: 1.0, method: model.MethodAutomatic,
		},
		{
			name:     "0.9 without match stays ai_suggested",
			original: "WIDGET-12345", transformed: "SHO-WIDGET-12345", mp: model.Shopify,
			conf: 0.9, method: model.MethodAISuggested,
		},
		{
			name:     "0.9 with match is automatic",
			original: "AB CD-EFGH", transformed: "AB-CD-EFGH", mp: model.Etsy, matched: widget,
			conf: 0.9, method: model.MethodAutomatic,
		},
		{
			name:     "match with weak signals",
			original: "a b", transformed: "A-B", mp: model.Etsy, matched: widget,
			conf: 0.8, method: model.MethodAISuggested,
		},
		{
			name:     "nothing but base",
			original: "a b", transformed: "A-B", mp: model.Etsy,
			conf: 0.5, method: model.MethodManual,
		},
		{
			name:     "structured length counts runes not bytes",
			original: "\u00e9-abcde", transformed: "E-ABCDE", mp: model.Etsy,
			conf: 0.5, method: model.MethodManual,
		},
		{
			name:     "eight runes with hyphen is structured",
			original: "\u00e9-abcdef", transformed: "E-ABCDEF", mp: model.Etsy,
			conf: 0.6, method: model.MethodManual,
		},
		{
			name:     "structured and valid without rule",
			original: "ACME-1001", transformed: "ACME-1001", mp: model.Custom,
			conf: 0.8, method: model.MethodAISuggested,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conf, method := Score(tc.original, tc.transformed, tc.mp, tc.matched)
			assert.Equal(t, tc.conf, conf)
			assert.Equal(t, tc.method, method)
		})
	}
}

func TestNotes(t *testing.T) {
	p := &model.CatalogProduct{Name: "Blue Mug"}
	assert.Equal(t, "High confidence automatic mapping; Matched to existing product: Blue Mug", notes(1.0, p))
	assert.Equal(t, "AI suggested mapping - review recommended; No existing product match found", notes(0.8, nil))
	assert.Equal(t, "Low confidence mapping - manual review required; No existing product match found", notes(0.5, nil))
	// уровень в notes зависит только от уверенности, не от наличия матча
	assert.Equal(t, "High confidence automatic mapping; No existing product match found", notes(0.9, nil))
}
