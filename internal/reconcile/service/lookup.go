package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

// DefaultThreshold — минимальный Ratio для fuzzy-совпадения.
const DefaultThreshold = 80

// ErrLookup wraps any failure of the catalog collaborator.
var ErrLookup = errors.New("catalog lookup failed")

// Catalog is what the mapper needs from product storage. Every Find* returns
// (nil, nil) when nothing matches.
type Catalog interface {
	FindBySKU(ctx context.Context, sku string) (*model.CatalogProduct, error)
	FindByCanonicalID(ctx context.Context, id string) (*model.CatalogProduct, error)
	FindByListing(ctx context.Context, sku string, mp model.Marketplace) (*model.CatalogProduct, error)
	ListProducts(ctx context.Context) ([]model.CatalogProduct, error)
}

// Match — чем закончился поиск: продукт (или nil), способ и fuzzy-оценка.
type Match struct {
	Product *model.CatalogProduct
	Via     string // sku | canonical_id | listing | fuzzy_sku | fuzzy_canonical_id
	Score   int
}

type Lookup struct {
	catalog   Catalog
	threshold int
	budget    time.Duration
}

func NewLookup(catalog Catalog, threshold int, budget time.Duration) *Lookup {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &Lookup{catalog: catalog, threshold: threshold, budget: budget}
}

// Find runs the lookup chain; the first hit wins:
// exact sku → exact canonical id → marketplace listing → fuzzy sku → fuzzy canonical id.
func (l *Lookup) Find(ctx context.Context, sku string, mp model.Marketplace) (Match, error) {
	p, err := l.catalog.FindBySKU(ctx, sku)
	if err != nil {
		return Match{}, fmt.Errorf("%w: by sku: %w", ErrLookup, err)
	}
	if p != nil {
		return Match{Product: p, Via: "sku", Score: 100}, nil
	}

	if p, err = l.catalog.FindByCanonicalID(ctx, sku); err != nil {
		return Match{}, fmt.Errorf("%w: by canonical id: %w", ErrLookup, err)
	}
	if p != nil {
		return Match{Product: p, Via: "canonical_id", Score: 100}, nil
	}

	if p, err = l.catalog.FindByListing(ctx, sku, mp); err != nil {
		return Match{}, fmt.Errorf("%w: by listing: %w", ErrLookup, err)
	}
	if p != nil {
		return Match{Product: p, Via: "listing", Score: 100}, nil
	}

	return l.fuzzy(ctx, sku)
}

// fuzzy — полный проход по каталогу, O(n) на вызов. Единственный дорогой шаг,
// поэтому только он ограничивается бюджетом времени.
func (l *Lookup) fuzzy(ctx context.Context, sku string) (Match, error) {
	if l.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.budget)
		defer cancel()
	}

	products, err := l.catalog.ListProducts(ctx)
	if err != nil {
		return Match{}, fmt.Errorf("%w: list products: %w", ErrLookup, err)
	}
	if len(products) == 0 {
		return Match{}, nil
	}

	i, score, err := bestOf(ctx, sku, products, func(p model.CatalogProduct) string { return p.SKU })
	if err != nil {
		return Match{}, err
	}
	if i >= 0 && score >= l.threshold {
		return Match{Product: &products[i], Via: "fuzzy_sku", Score: score}, nil
	}

	i, score, err = bestOf(ctx, sku, products, func(p model.CatalogProduct) string { return p.CanonicalID })
	if err != nil {
		return Match{}, err
	}
	if i >= 0 && score >= l.threshold {
		return Match{Product: &products[i], Via: "fuzzy_canonical_id", Score: score}, nil
	}
	return Match{}, nil
}

// bestOf возвращает индекс лучшего кандидата; при равенстве побеждает первый.
func bestOf(ctx context.Context, sku string, products []model.CatalogProduct, field func(model.CatalogProduct) string) (int, int, error) {
	best, bestScore := -1, -1
	for i := range products {
		if i%256 == 0 && ctx.Err() != nil {
			return -1, 0, fmt.Errorf("%w: fuzzy match: %w", ErrLookup, ctx.Err())
		}
		v := field(products[i])
		if v == "" {
			continue
		}
		if s := Ratio(sku, v); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore, nil
}
