package model

import (
	"strings"
	"time"
)

// Marketplace — тег площадки, с которой пришла выгрузка.
type Marketplace string

const (
	Amazon  Marketplace = "amazon"
	EBay    Marketplace = "ebay"
	Shopify Marketplace = "shopify"
	Walmart Marketplace = "walmart"
	Etsy    Marketplace = "etsy"
	Custom  Marketplace = "custom"
)

// ParseMarketplace lower-cases and trims a raw tag. Unknown tags are kept as-is.
func ParseMarketplace(s string) Marketplace {
	return Marketplace(strings.ToLower(strings.TrimSpace(s)))
}

// Method is how a mapping decision was reached.
type Method string

const (
	MethodAutomatic   Method = "automatic"
	MethodAISuggested Method = "ai_suggested"
	MethodManual      Method = "manual"
	MethodFailed      Method = "failed"
)

// CatalogProduct is a catalog entry. CanonicalID is empty when the product has no MSKU yet.
type CatalogProduct struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku"`
	CanonicalID string  `json:"canonical_id,omitempty"`
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
}

// Listing ties a marketplace-specific SKU to a catalog product.
type Listing struct {
	ProductID      string      `json:"product_id"`
	Platform       Marketplace `json:"platform"`
	MarketplaceSKU string      `json:"marketplace_sku"`
}

// MappingResult — одно решение о сопоставлении SKU. После сборки не меняется.
type MappingResult struct {
	OriginalSKU      string      `json:"original_sku"`
	MappedSKU        string      `json:"mapped_sku"`
	CanonicalID      string      `json:"canonical_id"` // MSKU
	Marketplace      Marketplace `json:"marketplace"`
	Confidence       float64     `json:"confidence"`
	Method           Method      `json:"method"`
	MatchedProductID *string     `json:"matched_product_id"`
	Notes            string      `json:"notes"`
}

// Matched reports whether the decision points at an existing catalog product.
func (r MappingResult) Matched() bool { return r.MatchedProductID != nil }

type BatchItem struct {
	SKU         string            `json:"sku"`
	Marketplace string            `json:"marketplace,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// BatchResult keeps the input position; Error is set only for degraded items.
type BatchResult struct {
	Index  int               `json:"index"`
	Result MappingResult     `json:"result"`
	Extra  map[string]string `json:"extra,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func (b BatchResult) Failed() bool { return b.Error != "" }

type ValidationReport struct {
	Valid          []MappingResult `json:"valid"`
	Invalid        []MappingResult `json:"invalid"`
	Warnings       []string        `json:"warnings"`
	TotalProcessed int             `json:"total_processed"`
	SuccessRate    float64         `json:"success_rate"`
}

// Options: настройки сопоставления.
type Options struct {
	Threshold   int           // порог fuzzy (0..100)
	Workers     int           // параллелизм batch-режима
	FuzzyBudget time.Duration // лимит времени на fuzzy-шаг, 0 = без лимита
}

// SalesRow: строка выгрузки, уже приведённая к каноническим полям.
type SalesRow struct {
	OrderID     string    `json:"order_id"`
	SKU         string    `json:"sku"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalAmount float64   `json:"total_amount"`
	Fees        float64   `json:"fees"`
	OrderDate   time.Time `json:"order_date"`
	Status      string    `json:"status"`
}

type SalesRecord struct {
	ID          string      `json:"id"`
	OrderID     string      `json:"order_id"`
	Marketplace Marketplace `json:"marketplace"`
	SKU         string      `json:"sku"`
	CanonicalID string      `json:"canonical_id"`
	ProductID   *string     `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	UnitPrice   float64     `json:"unit_price"`
	TotalAmount float64     `json:"total_amount"`
	Fees        float64     `json:"fees"`
	NetAmount   float64     `json:"net_amount"`
	OrderDate   time.Time   `json:"order_date"`
	Status      string      `json:"status"`
	JobID       string      `json:"job_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job — запись об обработке одного загруженного файла.
type Job struct {
	ID               string      `json:"id"`
	FileName         string      `json:"file_name"`
	FileSize         int64       `json:"file_size"`
	Marketplace      Marketplace `json:"marketplace"`
	Status           JobStatus   `json:"status"`
	Progress         int         `json:"progress"`
	RecordsProcessed int         `json:"records_processed"`
	RecordsTotal     int         `json:"records_total"`
	Errors           []string    `json:"errors"`
	Warnings         []string    `json:"warnings"`
	CreatedAt        time.Time   `json:"created_at"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty"`
}

// JobSummary is what a finished processing run reports back.
type JobSummary struct {
	JobID            string   `json:"job_id"`
	RecordsProcessed int      `json:"records_processed"`
	RecordsTotal     int      `json:"records_total"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
	SuccessRate      float64  `json:"success_rate"`
}

// MappingAudit: сохранённое решение (строка аудита).
type MappingAudit struct {
	ID string `json:"id"`
	MappingResult
	CreatedAt time.Time `json:"created_at"`
}
