package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/almlcv/sharanga-backend-sub001/internal/cache"
	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
	"github.com/almlcv/sharanga-backend-sub001/internal/server/handlers"
	"github.com/almlcv/sharanga-backend-sub001/internal/server/middleware"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/fgstock"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/hourly"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/plans"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/reporting"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/shifts"
	"github.com/almlcv/sharanga-backend-sub001/internal/testutil"
)

const testSecret = "router-secret"

var ist = time.FixedZone("IST", 5*3600+1800)

type testEnv struct {
	engine *gin.Engine
	stock  *testutil.StockStore
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	now := testutil.FixedClock(time.Date(2026, 1, 20, 9, 0, 0, 0, ist))

	production := testutil.NewHourlyStore()
	stock := testutil.NewStockStore()
	parts := testutil.NewPartStore(
		testutil.TwoSidedPart("Door Trim", "PN-7"),
		testutil.SingleSidedPart("Bracket", "PN-9"),
	)

	planSvc := plans.NewService(testutil.NewPlanStore(), parts, cache.NewMemoryStore(), nil, plans.WithClock(now))
	stockSvc := fgstock.NewService(stock, parts, planSvc, production, nil, fgstock.WithClock(now))
	resolver := shifts.NewResolver(testutil.ShiftStore{Setting: testutil.DayShifts()}, ist, nil)
	hourlySvc := hourly.NewService(production, resolver, nil, hourly.WithClock(now), hourly.WithStockSyncer(stockSvc))
	reportSvc := reporting.NewService(production, stock, planSvc, parts, nil)

	engine := New(Handlers{
		Hourly:  handlers.NewHourlyHandler(hourlySvc, nil),
		Stock:   handlers.NewStockHandler(stockSvc, nil),
		Plans:   handlers.NewPlanHandler(planSvc, nil),
		Reports: handlers.NewReportHandler(reportSvc, nil),
		Health:  handlers.NewHealthHandler(nil, nil),
	}, testSecret, nil)
	gin.SetMode(gin.TestMode)
	return testEnv{engine: engine, stock: stock}
}

func generateTestToken(t *testing.T, empID, role string) string {
	t.Helper()
	claims := middleware.Claims{
		Name: "Test User",
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   empID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (e testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/v1/fgstock/daily?date=2026-01-20", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestReportRoleGate(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		role string
		want int
	}{
		{"viewer", models.RoleViewer, http.StatusOK},
		{"production head", models.RoleProductionHead, http.StatusOK},
		{"operator", models.RoleOperator, http.StatusForbidden},
		{"dispatch", models.RoleDispatch, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := generateTestToken(t, "E1", tt.role)
			w := env.do(t, http.MethodGet, "/api/v1/production/report/daily?date=2026-01-20", token, nil)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestHourlyLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	operator := generateTestToken(t, "E100", models.RoleOperator)

	w := env.do(t, http.MethodPost, "/api/v1/production/hourly/init", operator, models.InitializeDocumentRequest{
		Date:            "2026-01-20",
		Side:            "LH",
		PartNumber:      "PN-7",
		PartDescription: "Door Trim",
		PartWeight:      500,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("init: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var doc models.HourlyProductionDocument
	parseResponse(t, w, &doc)
	if doc.DocumentStatus != models.DocumentOpen {
		t.Fatalf("expected OPEN, got %s", doc.DocumentStatus)
	}

	w = env.do(t, http.MethodGet, "/api/v1/production/hourly/"+doc.ID.Hex(), operator, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/v1/production/hourly/pending", operator, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("pending as operator: expected 403, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/production/hourly/"+doc.ID.Hex()+"/finalize", operator, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("finalize as operator: expected 403, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/v1/production/hourly?date=2026-01-20", operator, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var listing struct {
		Count int `json:"count"`
	}
	parseResponse(t, w, &listing)
	if listing.Count != 1 {
		t.Fatalf("expected 1 document, got %d", listing.Count)
	}
}

func TestHourlyErrorStatuses(t *testing.T) {
	env := newTestEnv(t)
	operator := generateTestToken(t, "E100", models.RoleOperator)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"malformed body", http.MethodPost, "/api/v1/production/hourly/init", `{"date":`, http.StatusBadRequest},
		{"too old", http.MethodPost, "/api/v1/production/hourly/init", models.InitializeDocumentRequest{
			Date: "2025-12-01", PartNumber: "PN-9", PartDescription: "Bracket",
		}, http.StatusUnprocessableEntity},
		{"invalid id", http.MethodGet, "/api/v1/production/hourly/not-an-id", nil, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/api/v1/production/hourly/65a000000000000000000000", nil, http.StatusNotFound},
		{"list without date", http.MethodGet, "/api/v1/production/hourly", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, operator, tt.body)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			var body map[string]string
			parseResponse(t, w, &body)
			if body["error"] == "" {
				t.Fatalf("expected an error message, got %v", body)
			}
		})
	}
}

func TestDispatchOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.stock.Seed(models.FGStockDocument{
		Date:            "2026-01-20",
		VariantName:     "Bracket",
		PartDescription: "Bracket",
		Year:            2026,
		Month:           1,
		Day:             20,
		ProductionAdded: 50,
	})
	dispatch := generateTestToken(t, "D01", models.RoleDispatch)

	w := env.do(t, http.MethodPost, "/api/v1/fgstock/dispatch", dispatch, models.DispatchRequest{
		Date: "2026-01-20", VariantName: "Bracket", DispatchedQty: 20,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var doc models.FGStockDocument
	parseResponse(t, w, &doc)
	if doc.ClosingStock != 30 {
		t.Fatalf("expected closing 30, got %d", doc.ClosingStock)
	}

	w = env.do(t, http.MethodPost, "/api/v1/fgstock/dispatch", dispatch, models.DispatchRequest{
		Date: "2026-01-20", VariantName: "Bracket", DispatchedQty: 31,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for insufficient stock, got %d", w.Code)
	}

	viewer := generateTestToken(t, "V01", models.RoleViewer)
	w = env.do(t, http.MethodPost, "/api/v1/fgstock/dispatch", viewer, models.DispatchRequest{
		Date: "2026-01-20", VariantName: "Bracket", DispatchedQty: 1,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer, got %d", w.Code)
	}
}

func TestPlanQueryValidation(t *testing.T) {
	env := newTestEnv(t)
	token := generateTestToken(t, "P01", models.RoleProduction)

	w := env.do(t, http.MethodGet, "/api/v1/production/plan?year=2026", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without month, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/production/plan", token, models.PlanRequest{
		Year: 2026, Month: 1, ItemDescription: "Bracket", Schedule: 260,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("upsert: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/v1/production/plan/daily?year=2026&month=1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("daily: expected 200, got %d", w.Code)
	}
	var daily struct {
		Variants []plans.VariantDailyPlan `json:"variants"`
	}
	parseResponse(t, w, &daily)
	if len(daily.Variants) != 1 || daily.Variants[0].TotalPlanned != 260 {
		t.Fatalf("unexpected daily plan: %+v", daily.Variants)
	}
}
