package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id           TEXT PRIMARY KEY,
	sku          TEXT NOT NULL UNIQUE,
	msku         TEXT,
	name         TEXT NOT NULL,
	category     TEXT,
	price        REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_products_msku ON products(msku);

CREATE TABLE IF NOT EXISTS marketplace_listings (
	id              TEXT PRIMARY KEY,
	product_id      TEXT NOT NULL REFERENCES products(id),
	platform        TEXT NOT NULL,
	marketplace_sku TEXT NOT NULL,
	UNIQUE (platform, marketplace_sku)
);

CREATE TABLE IF NOT EXISTS sku_mappings (
	id             TEXT PRIMARY KEY,
	original_sku   TEXT NOT NULL,
	mapped_sku     TEXT NOT NULL,
	msku           TEXT,
	product_id     TEXT,
	marketplace    TEXT NOT NULL,
	confidence     REAL NOT NULL,
	mapping_method TEXT NOT NULL,
	notes          TEXT,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sku_mappings_original ON sku_mappings(original_sku);

CREATE TABLE IF NOT EXISTS data_processing_jobs (
	id                TEXT PRIMARY KEY,
	file_name         TEXT NOT NULL,
	file_size         INTEGER NOT NULL,
	marketplace       TEXT NOT NULL,
	status            TEXT NOT NULL,
	progress          INTEGER NOT NULL DEFAULT 0,
	records_processed INTEGER NOT NULL DEFAULT 0,
	records_total     INTEGER NOT NULL DEFAULT 0,
	errors            TEXT NOT NULL DEFAULT '[]',
	warnings          TEXT NOT NULL DEFAULT '[]',
	created_at        TEXT NOT NULL,
	completed_at      TEXT
);

CREATE TABLE IF NOT EXISTS sales_records (
	id           TEXT PRIMARY KEY,
	order_id     TEXT NOT NULL,
	marketplace  TEXT NOT NULL,
	sku          TEXT NOT NULL,
	msku         TEXT,
	product_id   TEXT,
	product_name TEXT NOT NULL,
	quantity     INTEGER NOT NULL,
	unit_price   REAL NOT NULL,
	total_amount REAL NOT NULL,
	fees         REAL NOT NULL DEFAULT 0,
	net_amount   REAL NOT NULL,
	order_date   TEXT NOT NULL,
	status       TEXT NOT NULL,
	job_id       TEXT,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sales_records_order ON sales_records(order_id);
`

const tsLayout = time.RFC3339Nano

// SQLite — каталог, аудит сопоставлений, продажи и задачи в одном файле БД.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// ":memory:" is accepted for tests.
func OpenSQLite(path string) (*SQLite, error) {
	inMemory := path == ":memory:"
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// один коннект: записи сериализуются, а :memory: не расползается по разным БД
	db.SetMaxOpenConns(1)

	pragmas := []string{`PRAGMA foreign_keys = ON;`}
	if !inMemory {
		pragmas = append(pragmas, `PRAGMA journal_mode = WAL;`)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", strings.TrimSuffix(p, ";"), err)
		}
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// mapError: sql.ErrNoRows → ErrNotFound, нарушение UNIQUE → ErrDuplicate.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

const productCols = `id, sku, COALESCE(msku, ''), name, COALESCE(category, ''), price`

func scanProduct(row interface{ Scan(...any) error }) (model.CatalogProduct, error) {
	var p model.CatalogProduct
	err := row.Scan(&p.ID, &p.SKU, &p.CanonicalID, &p.Name, &p.Category, &p.Price)
	return p, err
}

func (s *SQLite) findOne(ctx context.Context, query string, args ...any) (*model.CatalogProduct, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLite) FindBySKU(ctx context.Context, sku string) (*model.CatalogProduct, error) {
	return s.findOne(ctx, `SELECT `+productCols+` FROM products WHERE sku = ? LIMIT 1`, sku)
}

func (s *SQLite) FindByCanonicalID(ctx context.Context, id string) (*model.CatalogProduct, error) {
	if id == "" {
		return nil, nil
	}
	return s.findOne(ctx, `SELECT `+productCols+` FROM products WHERE msku = ? ORDER BY rowid LIMIT 1`, id)
}

func (s *SQLite) FindByListing(ctx context.Context, sku string, mp model.Marketplace) (*model.CatalogProduct, error) {
	return s.findOne(ctx, `
		SELECT p.id, p.sku, COALESCE(p.msku, ''), p.name, COALESCE(p.category, ''), p.price
		FROM marketplace_listings l
		JOIN products p ON p.id = l.product_id
		WHERE l.marketplace_sku = ? AND l.platform = ?
		LIMIT 1`, sku, string(mp))
}

func (s *SQLite) ListProducts(ctx context.Context) ([]model.CatalogProduct, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productCols+` FROM products ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.CatalogProduct, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateProduct(ctx context.Context, p model.CatalogProduct) (model.CatalogProduct, error) {
	p.SKU = strings.TrimSpace(p.SKU)
	if p.SKU == "" {
		return model.CatalogProduct{}, fmt.Errorf("product sku is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, sku, msku, name, category, price) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.SKU, nullString(p.CanonicalID), p.Name, nullString(p.Category), p.Price)
	if err != nil {
		return model.CatalogProduct{}, fmt.Errorf("product %s: %w", p.SKU, mapError(err))
	}
	return p, nil
}

func (s *SQLite) AddListing(ctx context.Context, l model.Listing) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = ?`, l.ProductID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("product %s: %w", l.ProductID, mapError(err))
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO marketplace_listings (id, product_id, platform, marketplace_sku) VALUES (?, ?, ?, ?)
		ON CONFLICT(platform, marketplace_sku) DO UPDATE SET product_id = excluded.product_id`,
		uuid.NewString(), l.ProductID, string(l.Platform), l.MarketplaceSKU)
	return mapError(err)
}

func (s *SQLite) InsertMappingAudit(ctx context.Context, r model.MappingResult) (model.MappingAudit, error) {
	a := model.MappingAudit{ID: uuid.NewString(), MappingResult: r, CreatedAt: time.Now().UTC()}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sku_mappings
			(id, original_sku, mapped_sku, msku, product_id, marketplace, confidence, mapping_method, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, r.OriginalSKU, r.MappedSKU, nullString(r.CanonicalID), nullPtr(r.MatchedProductID),
		string(r.Marketplace), r.Confidence, string(r.Method), r.Notes, a.CreatedAt.Format(tsLayout))
	if err != nil {
		return model.MappingAudit{}, fmt.Errorf("insert mapping audit: %w", err)
	}
	return a, nil
}

func (s *SQLite) ListMappingAudits(ctx context.Context, mp model.Marketplace, limit int) ([]model.MappingAudit, error) {
	q := `SELECT id, original_sku, mapped_sku, COALESCE(msku, ''), product_id, marketplace,
	             confidence, mapping_method, COALESCE(notes, ''), created_at
	      FROM sku_mappings`
	var args []any
	if mp != "" {
		q += ` WHERE marketplace = ?`
		args = append(args, string(mp))
	}
	q += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.MappingAudit, 0)
	for rows.Next() {
		var (
			a         model.MappingAudit
			productID sql.NullString
			mpTag     string
			method    string
			created   string
		)
		if err := rows.Scan(&a.ID, &a.OriginalSKU, &a.MappedSKU, &a.CanonicalID, &productID, &mpTag,
			&a.Confidence, &method, &a.Notes, &created); err != nil {
			return nil, err
		}
		a.Marketplace = model.Marketplace(mpTag)
		a.Method = model.Method(method)
		if productID.Valid {
			id := productID.String
			a.MatchedProductID = &id
		}
		a.CreatedAt, _ = time.Parse(tsLayout, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// InsertSalesRecords пишет записи одной транзакцией.
func (s *SQLite) InsertSalesRecords(ctx context.Context, recs []model.SalesRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_records
			(id, order_id, marketplace, sku, msku, product_id, product_name, quantity, unit_price,
			 total_amount, fees, net_amount, order_date, status, job_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.OrderID, string(r.Marketplace), r.SKU, nullString(r.CanonicalID), nullPtr(r.ProductID),
			r.ProductName, r.Quantity, r.UnitPrice, r.TotalAmount, r.Fees, r.NetAmount,
			r.OrderDate.UTC().Format(tsLayout), r.Status, nullString(r.JobID), r.CreatedAt.Format(tsLayout),
		); err != nil {
			return fmt.Errorf("insert sales record %s: %w", r.OrderID, mapError(err))
		}
	}
	return tx.Commit()
}

func (s *SQLite) ListSalesRecords(ctx context.Context, limit int) ([]model.SalesRecord, error) {
	q := `SELECT id, order_id, marketplace, sku, COALESCE(msku, ''), product_id, product_name, quantity,
	             unit_price, total_amount, fees, net_amount, order_date, status, COALESCE(job_id, ''), created_at
	      FROM sales_records ORDER BY rowid`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SalesRecord, 0)
	for rows.Next() {
		var (
			r                  model.SalesRecord
			mpTag              string
			productID          sql.NullString
			orderDate, created string
		)
		if err := rows.Scan(&r.ID, &r.OrderID, &mpTag, &r.SKU, &r.CanonicalID, &productID, &r.ProductName,
			&r.Quantity, &r.UnitPrice, &r.TotalAmount, &r.Fees, &r.NetAmount, &orderDate, &r.Status,
			&r.JobID, &created); err != nil {
			return nil, err
		}
		r.Marketplace = model.Marketplace(mpTag)
		if productID.Valid {
			id := productID.String
			r.ProductID = &id
		}
		r.OrderDate, _ = time.Parse(tsLayout, orderDate)
		r.CreatedAt, _ = time.Parse(tsLayout, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateJob(ctx context.Context, j model.Job) (model.Job, error) {
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
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO data_processing_jobs (id, file_name, file_size, marketplace, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		j.ID, j.FileName, j.FileSize, string(j.Marketplace), string(j.Status), j.CreatedAt.Format(tsLayout))
	if err != nil {
		return model.Job{}, fmt.Errorf("job %s: %w", j.ID, mapError(err))
	}
	return j, nil
}

const jobCols = `id, file_name, file_size, marketplace, status, progress, records_processed,
	records_total, errors, warnings, created_at, completed_at`

func scanJob(row interface{ Scan(...any) error }) (model.Job, error) {
	var (
		j                model.Job
		mpTag, status    string
		errsRaw, warnRaw string
		created          string
		completed        sql.NullString
	)
	if err := row.Scan(&j.ID, &j.FileName, &j.FileSize, &mpTag, &status, &j.Progress, &j.RecordsProcessed,
		&j.RecordsTotal, &errsRaw, &warnRaw, &created, &completed); err != nil {
		return model.Job{}, err
	}
	j.Marketplace = model.Marketplace(mpTag)
	j.Status = model.JobStatus(status)
	j.Errors = decodeList(errsRaw)
	j.Warnings = decodeList(warnRaw)
	j.CreatedAt, _ = time.Parse(tsLayout, created)
	if completed.Valid {
		if t, err := time.Parse(tsLayout, completed.String); err == nil {
			j.CompletedAt = &t
		}
	}
	return j, nil
}

func (s *SQLite) GetJob(ctx context.Context, id string) (model.Job, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx, `SELECT `+jobCols+` FROM data_processing_jobs WHERE id = ?`, id))
	if err != nil {
		return model.Job{}, fmt.Errorf("job %s: %w", id, mapError(err))
	}
	return j, nil
}

func (s *SQLite) ListJobs(ctx context.Context, limit int) ([]model.Job, error) {
	q := `SELECT ` + jobCols + ` FROM data_processing_jobs ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *SQLite) UpdateJobProgress(ctx context.Context, id string, processed, total int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE data_processing_jobs SET records_processed = ?, records_total = ?, progress = ? WHERE id = ?`,
		processed, total, progressOf(processed, total), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

// TransitionJob: проверка перехода и запись — в одной транзакции.
func (s *SQLite) TransitionJob(ctx context.Context, id string, to model.JobStatus, errs, warnings []string) (model.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Job{}, err
	}
	defer func() { _ = tx.Rollback() }()

	j, err := scanJob(tx.QueryRowContext(ctx, `SELECT `+jobCols+` FROM data_processing_jobs WHERE id = ?`, id))
	if err != nil {
		return model.Job{}, fmt.Errorf("job %s: %w", id, mapError(err))
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

	var completed any
	if j.CompletedAt != nil {
		completed = j.CompletedAt.Format(tsLayout)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE data_processing_jobs
		SET status = ?, progress = ?, errors = ?, warnings = ?, completed_at = ?
		WHERE id = ?`,
		string(j.Status), j.Progress, encodeList(j.Errors), encodeList(j.Warnings), completed, id)
	if err != nil {
		return model.Job{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Job{}, err
	}
	return j, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func encodeList(l []string) string {
	if l == nil {
		l = []string{}
	}
	b, _ := json.Marshal(l)
	return string(b)
}

func decodeList(raw string) []string {
	out := []string{}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}
