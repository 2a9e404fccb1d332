package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

// Memory — каталог в памяти с индексами по sku / canonical id / листингу.
// Годится для тестов и небольших справочников; все методы потокобезопасны.
type Memory struct {
	mu sync.RWMutex

	products    []model.CatalogProduct
	bySku       map[string]int
	byCanonical map[string]int
	byListing   map[string]int // platform|marketplace_sku -> индекс продукта

	audits []model.MappingAudit
	sales  []model.SalesRecord
	jobs   map[string]*model.Job
}

func NewMemory() *Memory {
	return &Memory{
		bySku:       make(map[string]int),
		byCanonical: make(map[string]int),
		byListing:   make(map[string]int),
		jobs:        make(map[string]*model.Job),
	}
}

func listingKey(sku string, mp model.Marketplace) string {
	return string(mp) + "|" + sku
}

func (m *Memory) FindBySKU(_ context.Context, sku string) (*model.CatalogProduct, error) {
	return m.find(m.bySku, sku), nil
}

func (m *Memory) FindByCanonicalID(_ context.Context, id string) (*model.CatalogProduct, error) {
	return m.find(m.byCanonical, id), nil
}

func (m *Memory) FindByListing(_ context.Context, sku string, mp model.Marketplace) (*model.CatalogProduct, error) {
	return m.find(m.byListing, listingKey(sku, mp)), nil
}

func (m *Memory) find(idx map[string]int, key string) *model.CatalogProduct {
	if key == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := idx[key]
	if !ok {
		return nil
	}
	p := m.products[i]
	return &p
}

// ListProducts returns a copy in insertion order.
func (m *Memory) ListProducts(_ context.Context) ([]model.CatalogProduct, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.CatalogProduct, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *Memory) CreateProduct(_ context.Context, p model.CatalogProduct) (model.CatalogProduct, error) {
	p.SKU = strings.TrimSpace(p.SKU)
	if p.SKU == "" {
		return model.CatalogProduct{}, fmt.Errorf("product sku is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bySku[p.SKU]; ok {
		return model.CatalogProduct{}, fmt.Errorf("product %s: %w", p.SKU, ErrDuplicate)
	}
	m.products = append(m.products, p)
	i := len(m.products) - 1
	m.bySku[p.SKU] = i
	// первый продукт с данным MSKU остаётся «владельцем» индекса
	if p.CanonicalID != "" {
		if _, ok := m.byCanonical[p.CanonicalID]; !ok {
			m.byCanonical[p.CanonicalID] = i
		}
	}
	return p, nil
}

func (m *Memory) AddListing(_ context.Context, l model.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == l.ProductID {
			m.byListing[listingKey(l.MarketplaceSKU, l.Platform)] = i
			return nil
		}
	}
	return fmt.Errorf("product %s: %w", l.ProductID, ErrNotFound)
}

func (m *Memory) InsertMappingAudit(_ context.Context, r model.MappingResult) (model.MappingAudit, error) {
	a := model.MappingAudit{ID: uuid.NewString(), MappingResult: r, CreatedAt: time.Now().UTC()}
	m.mu.Lock()
	m.audits = append(m.audits, a)
	m.mu.Unlock()
	return a, nil
}

// ListMappingAudits: последние сверху; пустой mp = все площадки.
func (m *Memory) ListMappingAudits(_ context.Context, mp model.Marketplace, limit int) ([]model.MappingAudit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.MappingAudit, 0)
	for i := len(m.audits) - 1; i >= 0; i-- {
		if mp != "" && m.audits[i].Marketplace != mp {
			continue
		}
		out = append(out, m.audits[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) InsertSalesRecords(_ context.Context, recs []model.SalesRecord) error {
	m.mu.Lock()
	m.sales = append(m.sales, recs...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) ListSalesRecords(_ context.Context, limit int) ([]model.SalesRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.sales)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.SalesRecord, n)
	copy(out, m.sales[:n])
	return out, nil
}

func (m *Memory) CreateJob(_ context.Context, j model.Job) (model.Job, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	j.Status = model.JobPending
	j.CreatedAt = time.Now().UTC()
	if j.Errors == nil {
		j.Errors = []string{}
	}
	if j.Warnings == nil {
		j.Warnings = []string{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[j.ID]; ok {
		return model.Job{}, fmt.Errorf("job %s: %w", j.ID, ErrDuplicate)
	}
	cp := j
	m.jobs[j.ID] = &cp
	return j, nil
}

func (m *Memory) GetJob(_ context.Context, id string) (model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return model.Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return cloneJob(j), nil
}

// ListJobs: новые сверху.
func (m *Memory) ListJobs(_ context.Context, limit int) ([]model.Job, error) {
	m.mu.RLock()
	out := make([]model.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, cloneJob(j))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) UpdateJobProgress(_ context.Context, id string, processed, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	j.RecordsProcessed = processed
	j.RecordsTotal = total
	j.Progress = progressOf(processed, total)
	return nil
}

// TransitionJob moves a job through its state machine. Terminal states stamp
// CompletedAt and replace the error/warning lists.
func (m *Memory) TransitionJob(_ context.Context, id string, to model.JobStatus, errs, warnings []string) (model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return model.Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err := checkTransition(j.Status, to); err != nil {
		return model.Job{}, err
	}
	j.Status = to
	if isTerminal(to) {
		now := time.Now().UTC()
		j.CompletedAt = &now
		j.Errors = append([]string{}, errs...)
		j.Warnings = append([]string{}, warnings...)
	}
	if to == model.JobCompleted {
		j.Progress = 100
	}
	return cloneJob(j), nil
}

func cloneJob(j *model.Job) model.Job {
	c := *j
	c.Errors = append([]string{}, j.Errors...)
	c.Warnings = append([]string{}, j.Warnings...)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return c
}
