package service

import "github.com/Asif12as/wsm-warehouse/internal/reconcile/model"

const lowConfidence = 0.6

// ValidateBatch re-checks prior decisions against the format rules. It never
// touches the results themselves; the verdict is a separate report.
func ValidateBatch(results []model.MappingResult) model.ValidationReport {
	rep := model.ValidationReport{
		Valid:          make([]model.MappingResult, 0, len(results)),
		Invalid:        make([]model.MappingResult, 0),
		Warnings:       make([]string, 0),
		TotalProcessed: len(results),
	}
	for _, r := range results {
		if !Validate(r.OriginalSKU, r.Marketplace) {
			rep.Invalid = append(rep.Invalid, r)
			continue
		}
		rep.Valid = append(rep.Valid, r)
		if r.Confidence < lowConfidence {
			rep.Warnings = append(rep.Warnings, "Low confidence mapping for SKU: "+r.OriginalSKU)
		}
	}
	if len(results) > 0 {
		rep.SuccessRate = float64(len(rep.Valid)) / float64(len(results))
	}
	return rep
}
