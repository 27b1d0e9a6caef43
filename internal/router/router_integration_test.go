//go:build integration

package router

// End-to-end tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gestionstock/internal/dto"
	"gestionstock/internal/infra"
	"gestionstock/internal/model"
	"gestionstock/internal/receipt"
	"gestionstock/internal/repository"
	"gestionstock/internal/service"
	"gestionstock/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

type integrationEnv struct {
	api        *apiClient
	db         *gorm.DB
	dispatcher *worker.Dispatcher
	pdfDir     string
}

func setupIntegration(t *testing.T) *integrationEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("gestionstock_test"),
		tcPostgres.WithUsername("gestionstock"),
		tcPostgres.WithPassword("gestionstock"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := infra.NewDatabase(pgURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(rdURL)
	require.NoError(t, err)

	appCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)

	cfg := testConfig()
	cfg.PDFStoragePath = t.TempDir()
	st := repository.NewStore(db, infra.NewRedisNotifier(rdb))

	dispatcher := worker.NewDispatcher(rdb)
	layout := receipt.DefaultLayout()
	emitter := receipt.NewPrinterEmitter(nil, "", layout, nil, time.Second)
	worker.StartWorkerPool(appCtx, rdb, worker.WorkerHandlers{
		Receipt: worker.NewReceiptWorker(emitter, layout, cfg.PDFStoragePath, nil, dispatcher),
	}, 1)

	r := New(appCtx, cfg, Deps{Store: st, DB: db, Redis: rdb, Hooks: []service.SaleHook{dispatcher}})
	api := &apiClient{t: t, h: r}
	var login dto.LoginResponse
	api.do(http.MethodPost, "/v1/auth/login", dto.LoginRequest{Passcode: "1234"}, http.StatusOK, &login)
	api.token = login.AccessToken

	return &integrationEnv{api: api, db: db, dispatcher: dispatcher, pdfDir: cfg.PDFStoragePath}
}

func TestIntegration_SaleCycle(t *testing.T) {
	env := setupIntegration(t)
	api := env.api
	p, c := api.seed()

	var health map[string]interface{}
	api.do(http.MethodGet, "/health", nil, http.StatusOK, &health)
	assert.Equal(t, "connected", health["db"])
	assert.Equal(t, "connected", health["redis"])

	var sess dto.SessionResponse
	api.do(http.MethodPost, "/v1/sessions", nil, http.StatusCreated, &sess)
	base := "/v1/sessions/" + sess.ID
	api.do(http.MethodPut, base+"/client", dto.SelectClientRequest{ClientID: c.ID.String()}, http.StatusOK)
	api.do(http.MethodPost, base+"/items", dto.AddItemRequest{ProductID: p.ID.String()}, http.StatusOK)
	api.do(http.MethodPatch, base+"/items/"+p.ID.String(), dto.AdjustQuantityRequest{Delta: 1}, http.StatusOK)

	var sale model.Sale
	api.do(http.MethodPost, base+"/commit", nil, http.StatusCreated, &sale)

	var got model.Product
	api.do(http.MethodGet, "/v1/products/"+p.ID.String(), nil, http.StatusOK, &got)
	assert.Equal(t, 3, got.Stock)

	// the receipt job runs through Redis and archives a PDF
	pdfPath := filepath.Join(env.pdfDir, "receipt_"+sale.ID.String()+".pdf")
	require.Eventually(t, func() bool {
		_, err := os.Stat(pdfPath)
		return err == nil
	}, 15*time.Second, 100*time.Millisecond)

	api.do(http.MethodPost, "/v1/sales/"+sale.ID.String()+"/return", nil, http.StatusOK)
	api.do(http.MethodGet, "/v1/products/"+p.ID.String(), nil, http.StatusOK, &got)
	assert.Equal(t, 5, got.Stock)

	// sales rows are write-once apart from their status
	err := env.db.Exec(`UPDATE sales SET total_amount = 0 WHERE id = ?`, sale.ID).Error
	assert.Error(t, err)
	err = env.db.Exec(`UPDATE sales SET status = 'Completed' WHERE id = ?`, sale.ID).Error
	assert.Error(t, err)
}

func TestIntegration_ConcurrentCommitsNeverOversell(t *testing.T) {
	env := setupIntegration(t)
	api := env.api
	p, c := api.seed() // stock 5

	const tills = 8
	bases := make([]string, tills)
	for i := range bases {
		var sess dto.SessionResponse
		api.do(http.MethodPost, "/v1/sessions", nil, http.StatusCreated, &sess)
		bases[i] = "/v1/sessions/" + sess.ID
		api.do(http.MethodPut, bases[i]+"/client", dto.SelectClientRequest{ClientID: c.ID.String()}, http.StatusOK)
		api.do(http.MethodPost, bases[i]+"/items", dto.AddItemRequest{ProductID: p.ID.String()}, http.StatusOK)
	}

	var wg sync.WaitGroup
	codes := make([]int, tills)
	for i, base := range bases {
		wg.Add(1)
		go func(i int, base string) {
			defer wg.Done()
			codes[i] = commitStatus(api, base)
		}(i, base)
	}
	wg.Wait()

	ok := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			ok++
		} else {
			assert.Equal(t, http.StatusConflict, code)
		}
	}
	assert.Equal(t, 5, ok)

	var got model.Product
	api.do(http.MethodGet, "/v1/products/"+p.ID.String(), nil, http.StatusOK, &got)
	assert.Equal(t, 0, got.Stock)
}

// commitStatus commits without asserting, for use from goroutines.
func TestIntegration_DLQBacklogOnHealth(t *testing.T) {
	env := setupIntegration(t)
	ctx := context.Background()

	env.dispatcher.SendToDLQ(ctx, worker.QueueEmail, "email", []byte(`{"to":"a@b.ma"}`), "smtp down", 3)
	n, err := env.dispatcher.DLQLength(ctx, worker.QueueEmail)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var health struct {
		DLQ map[string]float64 `json:"dlq"`
	}
	env.api.do(http.MethodGet, "/health", nil, http.StatusOK, &health)
	assert.Equal(t, float64(1), health.DLQ[worker.QueueEmail])
	assert.Equal(t, float64(0), health.DLQ[worker.QueueReceipt])
}

func commitStatus(api *apiClient, base string) int {
	req := httptest.NewRequest(http.MethodPost, base+"/commit", nil)
	req.Header.Set("Authorization", "Bearer "+api.token)
	w := httptest.NewRecorder()
	api.h.ServeHTTP(w, req)
	return w.Code
}
