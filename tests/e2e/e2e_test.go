//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Djidro/Royalpos/internal/config"
	"github.com/Djidro/Royalpos/internal/infra"
	"github.com/Djidro/Royalpos/internal/model"
	"github.com/Djidro/Royalpos/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("royalpos_test"),
		tcPostgres.WithUsername("royalpos"),
		tcPostgres.WithPassword("royalpos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		BusinessName:       "Royal Bakery",
		CurrencyCode:       "RWF",
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("royalpos2026"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.User{
		Username:     "admin",
		Name:         "Admin E2E",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Active:       true,
	}).Error)

	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	r, _ := router.New(cfg, db, rdb, cb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "royalpos2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func TestE2E_FullSaleCycle(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Create product
	prodResp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{"name": "Bread", "price": "1000", "stock": 10}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, prodResp, &prod)

	// 2. Open shift
	shiftResp := do(t, env.server, "POST", "/v1/shifts/open",
		jsonBody(t, map[string]any{"cashier": "Alice", "starting_cash": "5000"}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, shiftResp.StatusCode)

	// 3. Add to cart twice (merges into one line of 2)
	for i := 0; i < 2; i++ {
		cartResp := do(t, env.server, "POST", "/v1/cart/items",
			jsonBody(t, map[string]string{"product_id": prod.ID}),
			env.token,
		)
		require.Equal(t, http.StatusOK, cartResp.StatusCode)
		cartResp.Body.Close()
	}

	// 4. Checkout cash
	saleResp := do(t, env.server, "POST", "/v1/sales/checkout",
		jsonBody(t, map[string]string{"payment_method": "cash"}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var sale struct {
		ID    string          `json:"id"`
		Total json.RawMessage `json:"total"`
	}
	decodeJSON(t, saleResp, &sale)
	assert.JSONEq(t, `"2000"`, string(sale.Total))

	// 5. Stock went down
	getResp := do(t, env.server, "GET", "/v1/products/"+prod.ID, nil, env.token)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	var got struct {
		Stock json.RawMessage `json:"stock"`
	}
	decodeJSON(t, getResp, &got)
	assert.JSONEq(t, `8`, string(got.Stock))

	// 6. Cart is empty again
	cartResp := do(t, env.server, "GET", "/v1/cart", nil, env.token)
	require.Equal(t, http.StatusOK, cartResp.StatusCode)
	var cart struct {
		Lines []any `json:"lines"`
	}
	decodeJSON(t, cartResp, &cart)
	assert.Empty(t, cart.Lines)

	// 7. Shift report reflects the sale
	curResp := do(t, env.server, "GET", "/v1/shifts/current", nil, env.token)
	require.Equal(t, http.StatusOK, curResp.StatusCode)
	var cur struct {
		ID        string          `json:"id"`
		CashTotal json.RawMessage `json:"cash_total"`
	}
	decodeJSON(t, curResp, &cur)
	assert.JSONEq(t, `"2000"`, string(cur.CashTotal))

	reportResp := do(t, env.server, "GET", "/v1/shifts/"+cur.ID+"/report", nil, env.token)
	require.Equal(t, http.StatusOK, reportResp.StatusCode)
	var report struct {
		Sales       int    `json:"sales"`
		WhatsAppURL string `json:"whatsapp_url"`
	}
	decodeJSON(t, reportResp, &report)
	assert.Equal(t, 1, report.Sales)
	assert.Contains(t, report.WhatsAppURL, "https://wa.me/?text=")
}

func TestE2E_RefundRestoresStock(t *testing.T) {
	env := setupTestEnv(t)

	prodResp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{"name": "Cake", "price": "5000", "stock": 3}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, prodResp, &prod)

	resp := do(t, env.server, "POST", "/v1/shifts/open",
		jsonBody(t, map[string]any{"cashier": "Alice", "starting_cash": "0"}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/v1/cart/items",
		jsonBody(t, map[string]string{"product_id": prod.ID}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	saleResp := do(t, env.server, "POST", "/v1/sales/checkout",
		jsonBody(t, map[string]string{"payment_method": "momo"}), env.token)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var sale struct {
		ID string `json:"id"`
	}
	decodeJSON(t, saleResp, &sale)

	refundResp := do(t, env.server, "POST", "/v1/sales/"+sale.ID+"/refund", nil, env.token)
	require.Equal(t, http.StatusOK, refundResp.StatusCode)
	var refunded struct {
		Refunded bool `json:"refunded"`
	}
	decodeJSON(t, refundResp, &refunded)
	assert.True(t, refunded.Refunded)

	// Stock restored
	getResp := do(t, env.server, "GET", "/v1/products/"+prod.ID, nil, env.token)
	var got struct {
		Stock json.RawMessage `json:"stock"`
	}
	decodeJSON(t, getResp, &got)
	assert.JSONEq(t, `3`, string(got.Stock))

	// Second refund is rejected
	again := do(t, env.server, "POST", "/v1/sales/"+sale.ID+"/refund", nil, env.token)
	assert.Equal(t, http.StatusConflict, again.StatusCode)
	again.Body.Close()
}

func TestE2E_ExportImport(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{"name": "Croissant", "price": "1500", "stock": "unlimited"}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	exportResp := do(t, env.server, "GET", "/v1/export", nil, env.token)
	require.Equal(t, http.StatusOK, exportResp.StatusCode)
	var bundle map[string]any
	decodeJSON(t, exportResp, &bundle)
	require.NotEmpty(t, bundle["version"])

	// Re-importing the same bundle skips everything (local wins)
	importResp := do(t, env.server, "POST", "/v1/import", jsonBody(t, bundle), env.token)
	require.Equal(t, http.StatusOK, importResp.StatusCode)
	var result struct {
		Created map[string]int `json:"created"`
		Skipped map[string]int `json:"skipped"`
	}
	decodeJSON(t, importResp, &result)
	assert.Empty(t, result.Created)
	assert.Equal(t, 1, result.Skipped["products"])
}

func TestE2E_HealthReportsMirrorState(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		OK     bool   `json:"ok"`
		DB     string `json:"db"`
		Mirror string `json:"mirror"`
	}
	decodeJSON(t, resp, &body)
	assert.True(t, body.OK)
	assert.Equal(t, "connected", body.DB)
	assert.Equal(t, "closed", body.Mirror)
}
