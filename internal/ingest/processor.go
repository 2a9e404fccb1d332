package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
	"github.com/Asif12as/wsm-warehouse/internal/reconcile/service"
)

const (
	progressEvery = 10  // строк между обновлениями прогресса
	insertBatch   = 100 // записей продаж за одну вставку
)

// Mapper is the part of the SKU mapper the processor needs.
type Mapper interface {
	Map(ctx context.Context, originalSKU, marketplace string) (model.MappingResult, error)
}

// Store owns the job state machine and persists what the processor produces.
type Store interface {
	InsertMappingAudit(ctx context.Context, r model.MappingResult) (model.MappingAudit, error)
	InsertSalesRecords(ctx context.Context, recs []model.SalesRecord) error
	UpdateJobProgress(ctx context.Context, id string, processed, total int) error
	TransitionJob(ctx context.Context, id string, to model.JobStatus, errs, warnings []string) (model.Job, error)
}

type Processor struct {
	mapper Mapper
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

func NewProcessor(mapper Mapper, store Store, logger zerolog.Logger) *Processor {
	return &Processor{
		mapper: mapper,
		store:  store,
		logger: logger.With().Str("component", "ingest").Logger(),
		now:    time.Now,
	}
}

// Process turns parsed export rows into sales records for one job. A bad row
// is recorded as "Row N: ..." and skipped; only store failures fail the job.
func (p *Processor) Process(ctx context.Context, job model.Job, rows []map[string]string) (model.JobSummary, error) {
	log := p.logger.With().Str("job_id", job.ID).Str("marketplace", string(job.Marketplace)).Logger()

	if _, err := p.store.TransitionJob(ctx, job.ID, model.JobProcessing, nil, nil); err != nil {
		return model.JobSummary{}, fmt.Errorf("start job: %w", err)
	}
	log.Info().Int("rows", len(rows)).Msg("job processing")

	data := make([]map[string]string, 0, len(rows))
	for _, rec := range rows {
		if !isRepeatedHeader(rec) {
			data = append(data, rec)
		}
	}
	total := len(data)
	if err := p.store.UpdateJobProgress(ctx, job.ID, 0, total); err != nil {
		return model.JobSummary{}, p.fail(ctx, log, job.ID, err)
	}

	var (
		records  = make([]model.SalesRecord, 0, total)
		errs     = make([]string, 0)
		warnings = make([]string, 0)
		okRows   = 0
	)
	for i, rec := range data {
		n := i + 1
		recs, warn, err := p.processRow(ctx, job, rec)
		switch {
		case err != nil && isFatal(err):
			return model.JobSummary{}, p.fail(ctx, log, job.ID, err)
		case err != nil:
			msg := fmt.Sprintf("Row %d: %s", n, strings.ReplaceAll(err.Error(), "\n", "; "))
			errs = append(errs, msg)
			log.Warn().Int("row", n).Err(err).Msg("row skipped")
		default:
			okRows++
			records = append(records, recs...)
			for _, w := range warn {
				warnings = append(warnings, fmt.Sprintf("Row %d: %s", n, w))
			}
		}

		if n%progressEvery == 0 {
			if err := p.store.UpdateJobProgress(ctx, job.ID, n, total); err != nil {
				return model.JobSummary{}, p.fail(ctx, log, job.ID, err)
			}
		}
	}

	for start := 0; start < len(records); start += insertBatch {
		end := min(start+insertBatch, len(records))
		if err := p.store.InsertSalesRecords(ctx, records[start:end]); err != nil {
			return model.JobSummary{}, p.fail(ctx, log, job.ID, fmt.Errorf("save sales records: %w", err))
		}
	}
	// в задаче остаётся число успешно обработанных строк, как и в сводке
	if err := p.store.UpdateJobProgress(ctx, job.ID, okRows, total); err != nil {
		return model.JobSummary{}, p.fail(ctx, log, job.ID, err)
	}
	if _, err := p.store.TransitionJob(ctx, job.ID, model.JobCompleted, errs, warnings); err != nil {
		return model.JobSummary{}, fmt.Errorf("complete job: %w", err)
	}

	sum := model.JobSummary{
		JobID:            job.ID,
		RecordsProcessed: okRows,
		RecordsTotal:     total,
		Errors:           errs,
		Warnings:         warnings,
	}
	if total > 0 {
		sum.SuccessRate = float64(okRows) / float64(total)
	}
	log.Info().
		Int("processed", okRows).
		Int("total", total).
		Int("records", len(records)).
		Int("errors", len(errs)).
		Float64("success_rate", sum.SuccessRate).
		Msg("job completed")
	return sum, nil
}

// fatalError — сбой хранилища, после которого задачу продолжать нельзя.
type fatalError struct{ err error }

func (e fatalError) Error() string { return e.err.Error() }
func (e fatalError) Unwrap() error { return e.err }

func isFatal(err error) bool {
	_, ok := err.(fatalError)
	return ok
}

// processRow: адаптация → сопоставление SKU (комбо по частям) → записи продаж.
func (p *Processor) processRow(ctx context.Context, job model.Job, rec map[string]string) ([]model.SalesRecord, []string, error) {
	row, err := Adapt(rec, job.Marketplace, p.now().UTC())
	if err != nil {
		return nil, nil, err
	}

	parts := service.SplitCombo(row.SKU)
	share := 1 / float64(len(parts))

	// сначала сопоставляем все части: упавшая строка не оставляет аудита
	results := make([]model.MappingResult, 0, len(parts))
	for _, sku := range parts {
		res, err := p.mapper.Map(ctx, sku, string(job.Marketplace))
		if err != nil {
			return nil, nil, fmt.Errorf("sku %q: %w", sku, err)
		}
		results = append(results, res)
	}

	var (
		out      = make([]model.SalesRecord, 0, len(parts))
		warnings []string
	)
	for i, res := range results {
		if _, err := p.store.InsertMappingAudit(ctx, res); err != nil {
			return nil, nil, fatalError{fmt.Errorf("save mapping audit: %w", err)}
		}
		if res.Method == model.MethodManual {
			warnings = append(warnings, "low confidence mapping for SKU "+parts[i]+" - manual review required")
		}
		out = append(out, newSalesRecord(job, row, res, share, p.now().UTC()))
	}
	return out, warnings, nil
}

// комбо-строка делится на компоненты поровну по сумме; количество у каждого то же
func newSalesRecord(job model.Job, row model.SalesRow, res model.MappingResult, share float64, now time.Time) model.SalesRecord {
	total := row.TotalAmount * share
	fees := row.Fees * share
	return model.SalesRecord{
		ID:          uuid.NewString(),
		OrderID:     row.OrderID,
		Marketplace: job.Marketplace,
		SKU:         res.OriginalSKU,
		CanonicalID: res.CanonicalID,
		ProductID:   res.MatchedProductID,
		ProductName: row.ProductName,
		Quantity:    row.Quantity,
		UnitPrice:   row.UnitPrice * share,
		TotalAmount: total,
		Fees:        fees,
		NetAmount:   total - fees,
		OrderDate:   row.OrderDate,
		Status:      row.Status,
		JobID:       job.ID,
		CreatedAt:   now,
	}
}

func (p *Processor) fail(ctx context.Context, log zerolog.Logger, jobID string, cause error) error {
	log.Error().Err(cause).Msg("job failed")
	if _, err := p.store.TransitionJob(context.WithoutCancel(ctx), jobID, model.JobFailed, []string{cause.Error()}, nil); err != nil {
		log.Error().Err(err).Msg("mark job failed")
	}
	return cause
}
