package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/models"
)

type fakeAIReportRepo struct {
	mu        sync.Mutex
	reports   []*models.AIReport
	anomalies []*models.AIAnomaly
}

func (r *fakeAIReportRepo) Create(rep *models.AIReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	r.reports = append(r.reports, rep)
	return nil
}

func (r *fakeAIReportRepo) List(reportType string, limit, offset int) ([]*models.AIReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AIReport
	for _, rep := range r.reports {
		if reportType == "" || rep.ReportType == reportType {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *fakeAIReportRepo) CreateAnomaly(a *models.AIAnomaly) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	r.anomalies = append(r.anomalies, a)
	return nil
}

func (r *fakeAIReportRepo) ListAnomalies(limit int) ([]*models.AIAnomaly, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.AIAnomaly{}, r.anomalies...), nil
}

func newAIService(t *testing.T, ollamaURL string) (*AIService, *fakeAIReportRepo, *fakeProductRepo, *fakeSaleRepo, *fakeNotificationRepo) {
	t.Helper()
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	logs := &fakeStockLogRepo{}
	sales := &fakeSaleRepo{}
	reports := &fakeAIReportRepo{}
	notifRepo := &fakeNotificationRepo{}
	notifier := NewNotificationService(notifRepo, users, newFakeHub(), nil, nil, "")

	client := NewOllamaClient(ollamaURL, "llama3", 5*time.Second)
	svc := NewAIService(client, reports, products, logs, sales, notifier)
	return svc, reports, products, sales, notifRepo
}

func TestOllamaClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req["model"])
		assert.Equal(t, false, req["stream"])

		json.NewEncoder(w).Encode(map[string]string{"response": "restock the beans"})
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "llama3", 5*time.Second)
	out, err := client.Generate(context.Background(), "advise me")
	require.NoError(t, err)
	assert.Equal(t, "restock the beans", out)
}

func TestOllamaClientDownMapsToUnavailable(t *testing.T) {
	client := NewOllamaClient("http://127.0.0.1:1", "llama3", time.Second)
	_, err := client.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestSalesReportStoresExtractedJSON(t *testing.T) {
	reply := "Here you go:\n```json\n{\"summary\": \"steady\", \"trend\": \"flat\"}\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": reply})
	}))
	defer srv.Close()

	svc, reports, _, sales, _ := newAIService(t, srv.URL)
	require.NoError(t, sales.Create(&models.Sale{ProductID: "p1", Quantity: 2, UnitPrice: 3, CreatedAt: time.Now()}))

	rep, err := svc.SalesReport(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.AIReportSales, rep.ReportType)
	assert.Equal(t, reply, rep.Raw)
	assert.JSONEq(t, `{"summary": "steady", "trend": "flat"}`, string(rep.Data))
	require.Len(t, reports.reports, 1)
}

func TestDetectAnomalies(t *testing.T) {
	svc, reports, products, sales, notifRepo := newAIService(t, "http://127.0.0.1:1")

	require.NoError(t, products.Create(&models.Product{ID: "neg", Name: "Ghost Item", Quantity: -2, LowStockThreshold: 5}))
	require.NoError(t, products.Create(&models.Product{ID: "hot", Name: "Hot Item", Quantity: 100, LowStockThreshold: 2}))
	require.NoError(t, products.Create(&models.Product{ID: "ok", Name: "Normal Item", Quantity: 20, LowStockThreshold: 5}))

	// 11 sold in the last day, over 5x the threshold of 2
	require.NoError(t, sales.Create(&models.Sale{ProductID: "hot", Quantity: 11, UnitPrice: 1, CreatedAt: time.Now()}))

	found, err := svc.DetectAnomalies()
	require.NoError(t, err)
	require.Len(t, found, 2)

	levels := map[string]string{}
	for _, a := range found {
		levels[a.Level] = a.Message
	}
	assert.Contains(t, levels["critical"], "Ghost Item")
	assert.Contains(t, levels["warning"], "Hot Item")

	assert.Len(t, reports.anomalies, 2)
	// anomalies are broadcast as notifications too
	assert.Len(t, notifRepo.created, 2)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced without tag", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounded by prose", "Sure! {\"a\": 1} Hope that helps.", `{"a": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractJSON(tc.in)
			require.NotNil(t, got)
			assert.JSONEq(t, tc.want, string(got))
		})
	}

	assert.Nil(t, ExtractJSON("no json here"))
	assert.Nil(t, ExtractJSON("{broken"))
	assert.Nil(t, ExtractJSON("{not: valid}"))
}
