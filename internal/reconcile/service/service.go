package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

// ErrInvalidSKU: SKU пустой или пустеет после нормализации.
var ErrInvalidSKU = errors.New("invalid sku")

const defaultWorkers = 4

// Mapper sequences normalize → transform → lookup → score → synthesize into
// one mapping decision. It holds no mutable state; Map is safe for concurrent use.
type Mapper struct {
	lookup  *Lookup
	workers int
	logger  zerolog.Logger
}

func New(catalog Catalog, opt model.Options, logger zerolog.Logger) *Mapper {
	w := opt.Workers
	if w < 1 {
		w = defaultWorkers
	}
	return &Mapper{
		lookup:  NewLookup(catalog, opt.Threshold, opt.FuzzyBudget),
		workers: w,
		logger:  logger.With().Str("component", "sku-mapper").Logger(),
	}
}

// Map produces one decision for a raw seller SKU.
//
// Invalid input returns a failed result together with ErrInvalidSKU.
// A catalog failure returns a zero result and an error wrapping ErrLookup.
func (m *Mapper) Map(ctx context.Context, originalSKU, marketplace string) (model.MappingResult, error) {
	mp := model.ParseMarketplace(marketplace)

	normalized := Normalize(originalSKU)
	if normalized == "" {
		return failedResult(originalSKU, mp, "Invalid SKU: empty after normalization"), ErrInvalidSKU
	}
	transformed := Transform(normalized, mp)

	match, err := m.lookup.Find(ctx, transformed, mp)
	if err != nil {
		return model.MappingResult{}, err
	}

	conf, method := Score(originalSKU, transformed, mp, match.Product)
	res := model.MappingResult{
		OriginalSKU: originalSKU,
		MappedSKU:   transformed,
		CanonicalID: Synthesize(transformed, mp, match.Product),
		Marketplace: mp,
		Confidence:  conf,
		Method:      method,
		Notes:       notes(conf, match.Product),
	}
	if match.Product != nil {
		id := match.Product.ID
		res.MatchedProductID = &id
	}

	m.logger.Debug().
		Str("sku", originalSKU).
		Str("mapped", transformed).
		Str("msku", res.CanonicalID).
		Str("via", match.Via).
		Int("score", match.Score).
		Float64("confidence", conf).
		Str("method", string(method)).
		Msg("sku mapped")
	return res, nil
}

// MapBatch maps every item independently on a bounded worker pool. The output
// has the same length and order as items; a failing item becomes a degraded
// result (confidence 0, method failed) and never affects the others.
// Items without a marketplace use defaultMarketplace.
func (m *Mapper) MapBatch(ctx context.Context, defaultMarketplace string, items []model.BatchItem) []model.BatchResult {
	out := make([]model.BatchResult, len(items))

	var g errgroup.Group
	g.SetLimit(m.workers)
	for i := range items {
		g.Go(func() error {
			out[i] = m.mapItem(ctx, i, defaultMarketplace, items[i])
			return nil // ошибки элемента остаются в его результате
		})
	}
	_ = g.Wait()

	failed := 0
	for i := range out {
		if out[i].Failed() {
			failed++
		}
	}
	m.logger.Info().
		Int("items", len(items)).
		Int("failed", failed).
		Msg("batch mapped")
	return out
}

func (m *Mapper) mapItem(ctx context.Context, i int, defaultMarketplace string, it model.BatchItem) (br model.BatchResult) {
	mpTag := it.Marketplace
	if mpTag == "" {
		mpTag = defaultMarketplace
	}
	br = model.BatchResult{Index: i, Extra: it.Extra}

	// паника в коллабораторе не должна ронять весь батч
	defer func() {
		if rec := recover(); rec != nil {
			m.logger.Error().
				Int("index", i).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("batch item panic")
			msg := fmt.Sprintf("panic: %v", rec)
			br.Result = failedResult(it.SKU, model.ParseMarketplace(mpTag), "Error: "+msg)
			br.Error = msg
		}
	}()

	res, err := m.Map(ctx, it.SKU, mpTag)
	if err != nil {
		m.logger.Warn().Err(err).Int("index", i).Str("sku", it.SKU).Msg("batch item failed")
		br.Result = failedResult(it.SKU, model.ParseMarketplace(mpTag), "Error: "+err.Error())
		br.Error = err.Error()
		return br
	}
	br.Result = res
	return br
}

func failedResult(sku string, mp model.Marketplace, note string) model.MappingResult {
	return model.MappingResult{
		OriginalSKU: sku,
		Marketplace: mp,
		Confidence:  0,
		Method:      model.MethodFailed,
		Notes:       note,
	}
}
