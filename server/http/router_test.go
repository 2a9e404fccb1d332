package serverhttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asif12as/wsm-warehouse/internal/catalog"
	"github.com/Asif12as/wsm-warehouse/internal/config"
	"github.com/Asif12as/wsm-warehouse/internal/ingest"
	recHnd "github.com/Asif12as/wsm-warehouse/internal/reconcile/handler"
	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
	"github.com/Asif12as/wsm-warehouse/internal/reconcile/service"
)

func testRouter(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	mem := catalog.NewMemory()
	mapper := service.New(mem, model.Options{}, zerolog.Nop())
	h := recHnd.New(mapper, mem, ingest.NewProcessor(mapper, mem, zerolog.Nop()), cfg.MaxUploadBytes(), zerolog.Nop())
	return NewRouter(cfg, zerolog.Nop(), h)
}

func baseConfig() config.Config {
	return config.Config{
		AllowOrigins:   []string{"*"},
		MaxUploadMB:    1,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

func TestHealth(t *testing.T) {
	r := testRouter(t, baseConfig())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes(t *testing.T) {
	r := testRouter(t, baseConfig())
	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/sku-mappings/map", `{"sku":"B001122334","marketplace":"amazon"}`, http.StatusOK},
		{http.MethodPost, "/api/sku-mappings/batch", `{"marketplace":"amazon","items":[{"sku":"B001122334"}]}`, http.StatusOK},
		{http.MethodPost, "/api/sku-mappings/validate", `{"mappings":[]}`, http.StatusOK},
		{http.MethodGet, "/api/sku-mappings", "", http.StatusOK},
		{http.MethodPost, "/api/products", `{"sku":"MUG-01","name":"Mug"}`, http.StatusCreated},
		{http.MethodGet, "/api/products", "", http.StatusOK},
		{http.MethodGet, "/api/data-processing/jobs", "", http.StatusOK},
		{http.MethodGet, "/api/data-processing/jobs/nope", "", http.StatusNotFound},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
		{http.MethodGet, "/api/sku-mappings/map", "", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestBodyLimit(t *testing.T) {
	r := testRouter(t, baseConfig())
	big := `{"sku":"` + strings.Repeat("A", 2<<20) + `","marketplace":"amazon"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sku-mappings/map", strings.NewReader(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRateLimited(t *testing.T) {
	cfg := baseConfig()
	cfg.RateLimitRPS, cfg.RateLimitBurst = 1, 1
	r := testRouter(t, cfg)

	codes := make([]int, 0, 2)
	for range 2 {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
