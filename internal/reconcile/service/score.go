package service

import (
	"strings"
	"unicode/utf8"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

// Баллы считаем в десятых долях целым числом: 0.7+0.1 во float64 даёт
// 0.7999…, и граница 0.9 для automatic начинает «плавать».
const (
	pointsBase       = 5 // 0.5
	pointsValidFmt   = 2 // формат SKU валиден для площадки
	pointsMatched    = 3 // найден продукт в каталоге
	pointsRule       = 1 // у площадки есть правило (даже если оно ничего не поменяло)
	pointsStructured = 1 // длина >= 8 и есть дефис
	pointsMax        = 10
)

const (
	automaticMin   = 0.9
	aiSuggestedMin = 0.7
)

// Score combines the mapping signals into a confidence in [0,1] and picks
// the method. An exact sku-to-sku match short-circuits to 1.0.
func Score(original, transformed string, mp model.Marketplace, matched *model.CatalogProduct) (float64, model.Method) {
	if matched != nil && matched.SKU == transformed {
		return 1.0, pickMethod(1.0, matched)
	}

	pts := pointsBase
	if Validate(original, mp) {
		pts += pointsValidFmt
	}
	if matched != nil {
		pts += pointsMatched
	}
	if HasRule(mp) {
		pts += pointsRule
	}
	if utf8.RuneCountInString(original) >= 8 && strings.Contains(original, "-") {
		pts += pointsStructured
	}

	conf := clamp01(float64(min(pts, pointsMax)) / 10)
	return conf, pickMethod(conf, matched)
}

// без матча automatic невозможен, максимум ai_suggested
func pickMethod(conf float64, matched *model.CatalogProduct) model.Method {
	switch {
	case matched != nil && conf >= automaticMin:
		return model.MethodAutomatic
	case conf >= aiSuggestedMin:
		return model.MethodAISuggested
	default:
		return model.MethodManual
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func notes(conf float64, matched *model.CatalogProduct) string {
	var tier string
	switch {
	case conf >= automaticMin:
		tier = "High confidence automatic mapping"
	case conf >= aiSuggestedMin:
		tier = "AI suggested mapping - review recommended"
	default:
		tier = "Low confidence mapping - manual review required"
	}
	if matched != nil {
		return tier + "; Matched to existing product: " + matched.Name
	}
	return tier + "; No existing product match found"
}
