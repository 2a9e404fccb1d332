package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Asif12as/wsm-warehouse/internal/fileio"
	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
	"github.com/Asif12as/wsm-warehouse/internal/reconcile/service"
)

type Mapper interface {
	Map(ctx context.Context, originalSKU, marketplace string) (model.MappingResult, error)
	MapBatch(ctx context.Context, defaultMarketplace string, items []model.BatchItem) []model.BatchResult
}

type Store interface {
	CreateProduct(ctx context.Context, p model.CatalogProduct) (model.CatalogProduct, error)
	AddListing(ctx context.Context, l model.Listing) error
	ListProducts(ctx context.Context) ([]model.CatalogProduct, error)
	InsertMappingAudit(ctx context.Context, r model.MappingResult) (model.MappingAudit, error)
	ListMappingAudits(ctx context.Context, mp model.Marketplace, limit int) ([]model.MappingAudit, error)
	CreateJob(ctx context.Context, j model.Job) (model.Job, error)
	GetJob(ctx context.Context, id string) (model.Job, error)
	ListJobs(ctx context.Context, limit int) ([]model.Job, error)
}

type Processor interface {
	Process(ctx context.Context, job model.Job, rows []map[string]string) (model.JobSummary, error)
}

// Handler serves the SKU mapping, catalog and file processing endpoints.
// Uploaded files are processed in the background; Wait blocks until they finish.
type Handler struct {
	mapper    Mapper
	store     Store
	processor Processor
	logger    zerolog.Logger
	maxUpload int64

	jobs sync.WaitGroup
}

func New(mapper Mapper, store Store, processor Processor, maxUpload int64, logger zerolog.Logger) *Handler {
	return &Handler{
		mapper:    mapper,
		store:     store,
		processor: processor,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Wait blocks until every background processing job has returned.
func (h *Handler) Wait() { h.jobs.Wait() }

// логгер запроса (с rid), если middleware его положил
func (h *Handler) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.logger
}

type mapRequest struct {
	SKU         string `json:"sku"`
	Marketplace string `json:"marketplace"`
}

// MapSKU: POST /api/sku-mappings/map. Решение сохраняется в аудит.
func (h *Handler) MapSKU(w http.ResponseWriter, r *http.Request) {
	var req mapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Marketplace) == "" {
		writeError(w, http.StatusBadRequest, "marketplace is required")
		return
	}

	res, err := h.mapper.Map(r.Context(), req.SKU, req.Marketplace)
	switch {
	case errors.Is(err, service.ErrInvalidSKU):
		_ = writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	case err != nil:
		h.log(r).Error().Err(err).Str("sku", req.SKU).Msg("map sku")
		writeError(w, statusOf(err), err.Error())
		return
	}

	if _, err := h.store.InsertMappingAudit(r.Context(), res); err != nil {
		h.log(r).Error().Err(err).Msg("save mapping audit")
		writeError(w, statusOf(err), "failed to save mapping")
		return
	}
	_ = writeJSON(w, http.StatusOK, res)
}

type batchRequest struct {
	Marketplace string            `json:"marketplace"`
	Items       []model.BatchItem `json:"items"`
}

type batchResponse struct {
	Results []model.BatchResult `json:"results"`
	Total   int                 `json:"total"`
	Failed  int                 `json:"failed"`
}

// MapBatch: POST /api/sku-mappings/batch.
func (h *Handler) MapBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if len(req.Items) > maxBatch {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("too many items: %d > %d", len(req.Items), maxBatch))
		return
	}

	start := time.Now()
	results := h.mapper.MapBatch(r.Context(), req.Marketplace, req.Items)
	resp := batchResponse{Results: results, Total: len(results)}
	for _, br := range results {
		if br.Failed() || br.Result.Method == model.MethodFailed {
			resp.Failed++
			continue
		}
		if _, err := h.store.InsertMappingAudit(r.Context(), br.Result); err != nil {
			h.log(r).Error().Err(err).Int("index", br.Index).Msg("save mapping audit")
			writeError(w, statusOf(err), "failed to save mappings")
			return
		}
	}

	h.log(r).Info().
		Int("items", resp.Total).
		Int("failed", resp.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("batch done")
	_ = writeJSON(w, http.StatusOK, resp)
}

type validateRequest struct {
	Mappings []model.MappingResult `json:"mappings"`
}

// Validate: POST /api/sku-mappings/validate.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	// "Amazon" и " amazon " должны попасть в правило площадки, а не в общий перебор
	for i := range req.Mappings {
		req.Mappings[i].Marketplace = model.ParseMarketplace(string(req.Mappings[i].Marketplace))
	}
	_ = writeJSON(w, http.StatusOK, service.ValidateBatch(req.Mappings))
}

// ListMappings: GET /api/sku-mappings?marketplace=&limit=
func (h *Handler) ListMappings(w http.ResponseWriter, r *http.Request) {
	mp := model.ParseMarketplace(r.URL.Query().Get("marketplace"))
	audits, err := h.store.ListMappingAudits(r.Context(), mp, limitParam(r))
	if err != nil {
		h.log(r).Error().Err(err).Msg("list mappings")
		writeError(w, statusOf(err), err.Error())
		return
	}
	_ = writeJSON(w, http.StatusOK, audits)
}

type listingRequest struct {
	Platform       string `json:"platform"`
	MarketplaceSKU string `json:"marketplace_sku"`
}

type productRequest struct {
	SKU         string           `json:"sku"`
	CanonicalID string           `json:"canonical_id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Price       float64          `json:"price"`
	Listings    []listingRequest `json:"listings"`
}

// CreateProduct: POST /api/products, вместе с листингами площадок.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	switch {
	case strings.TrimSpace(req.SKU) == "":
		writeError(w, http.StatusBadRequest, "sku is required")
		return
	case strings.TrimSpace(req.Name) == "":
		writeError(w, http.StatusBadRequest, "name is required")
		return
	case req.Price < 0:
		writeError(w, http.StatusBadRequest, "price cannot be negative")
		return
	}

	p, err := h.store.CreateProduct(r.Context(), model.CatalogProduct{
		SKU:         req.SKU,
		CanonicalID: strings.TrimSpace(req.CanonicalID),
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
	})
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	for _, l := range req.Listings {
		sku := strings.TrimSpace(l.MarketplaceSKU)
		if sku == "" {
			continue
		}
		err := h.store.AddListing(r.Context(), model.Listing{
			ProductID:      p.ID,
			Platform:       model.ParseMarketplace(l.Platform),
			MarketplaceSKU: sku,
		})
		if err != nil {
			writeError(w, statusOf(err), err.Error())
			return
		}
	}
	_ = writeJSON(w, http.StatusCreated, p)
}

// ListProducts: GET /api/products?limit=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	if n := limitParam(r); len(products) > n {
		products = products[:n]
	}
	_ = writeJSON(w, http.StatusOK, products)
}

// Upload: POST /api/data-processing/upload (multipart: file, marketplace, header_row).
// Файл разбирается сразу, обработка строк идёт в фоне; ответ 202 с задачей.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		writeError(w, status, "bad multipart form: "+err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	mp := model.ParseMarketplace(r.FormValue("marketplace"))
	if mp == "" {
		writeError(w, http.StatusBadRequest, "marketplace is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file: "+err.Error())
		return
	}
	defer file.Close()
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	rows, err := fileio.ReadAnyMaps(file, header.Filename, atoi(r.FormValue("header_row"), 1))
	if err != nil {
		h.log(r).Warn().Err(err).Str("file", header.Filename).Msg("read upload")
		writeError(w, http.StatusBadRequest, "failed to read file: "+err.Error())
		return
	}

	job, err := h.store.CreateJob(r.Context(), model.Job{
		FileName:    header.Filename,
		FileSize:    header.Size,
		Marketplace: mp,
	})
	if err != nil {
		h.log(r).Error().Err(err).Msg("create job")
		writeError(w, statusOf(err), err.Error())
		return
	}

	ctx := context.WithoutCancel(r.Context())
	h.jobs.Add(1)
	go func() {
		defer h.jobs.Done()
		if _, err := h.processor.Process(ctx, job, rows); err != nil {
			h.logger.Error().Err(err).Str("job_id", job.ID).Msg("process upload")
		}
	}()

	h.log(r).Info().
		Str("job_id", job.ID).
		Str("file", header.Filename).
		Int("rows", len(rows)).
		Msg("upload accepted")
	_ = writeJSON(w, http.StatusAccepted, job)
}

// GetJob: GET /api/data-processing/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	_ = writeJSON(w, http.StatusOK, job)
}

// ListJobs: GET /api/data-processing/jobs?limit=
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.ListJobs(r.Context(), limitParam(r))
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	_ = writeJSON(w, http.StatusOK, jobs)
}
