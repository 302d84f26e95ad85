package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"stockroom/internal/models"
	"stockroom/internal/repositories"
)

var ErrAIUnavailable = errors.New("ai backend unavailable")

// OllamaClient talks to a local Ollama instance over its /api/generate
// endpoint. Generation is slow, hence the generous default timeout.
type OllamaClient struct {
	BaseURL string
	Model   string
	HTTP    *http.Client
}

func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{Model: c.Model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrAIUnavailable, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama decode: %w", err)
	}
	return out.Response, nil
}

// AIService builds prompts from inventory data, runs them through Ollama,
// and stores the results. It also runs the rule-based anomaly checks that
// work without any model at all.
type AIService struct {
	Ollama   *OllamaClient
	Reports  repositories.AIReportRepository
	Products repositories.ProductRepository
	Logs     repositories.StockLogRepository
	Sales    repositories.SaleRepository
	Notifier *NotificationService
}

func NewAIService(
	ollama *OllamaClient,
	reports repositories.AIReportRepository,
	products repositories.ProductRepository,
	logs repositories.StockLogRepository,
	sales repositories.SaleRepository,
	notifier *NotificationService,
) *AIService {
	return &AIService{
		Ollama:   ollama,
		Reports:  reports,
		Products: products,
		Logs:     logs,
		Sales:    sales,
		Notifier: notifier,
	}
}

// InventoryInsights asks the model for restock advice based on a snapshot of
// low-stock items, busiest movers, and dead stock.
func (s *AIService) InventoryInsights(ctx context.Context) (*models.AIReport, error) {
	low, err := s.Products.ListLowStock()
	if err != nil {
		return nil, err
	}
	all, err := s.Products.List(models.ProductFilter{}, 500, 0)
	if err != nil {
		return nil, err
	}

	var busy, dead []string
	for _, p := range all {
		n, err := s.Logs.CountByProduct(p.ID)
		if err != nil {
			return nil, err
		}
		switch {
		case n > 20:
			busy = append(busy, fmt.Sprintf("%s (%d movements)", p.Name, n))
		case n == 0:
			dead = append(dead, p.Name)
		}
	}

	var b strings.Builder
	b.WriteString("You are an inventory analyst for a small shop. Based on the data below, ")
	b.WriteString("give short, practical restocking advice.\n\nLow stock items:\n")
	if len(low) == 0 {
		b.WriteString("- none\n")
	}
	for _, p := range low {
		fmt.Fprintf(&b, "- %s: %d left (threshold %d)\n", p.Name, p.Quantity, p.LowStockThreshold)
	}
	b.WriteString("\nBest moving items:\n")
	for _, line := range busy {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\nDead stock (no movements recorded):\n")
	for _, name := range dead {
		b.WriteString("- " + name + "\n")
	}

	raw, err := s.Ollama.Generate(ctx, b.String())
	if err != nil {
		return nil, err
	}

	rep := &models.AIReport{ReportType: models.AIReportStock, Raw: raw}
	if data := ExtractJSON(raw); data != nil {
		rep.Data = data
	}
	if err := s.Reports.Create(rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// SalesReport asks the model for a structured JSON summary of the last N days
// of sales and stores whatever JSON it manages to return.
func (s *AIService) SalesReport(ctx context.Context, days int) (*models.AIReport, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	count, revenue, err := s.Sales.TotalsSince(since)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Summarize shop sales for the last %d days: %d sales, total revenue %.2f. "+
			"Respond with JSON only, in the form "+
			`{"summary": "...", "trend": "up|down|flat", "recommendations": ["..."]}.`,
		days, count, revenue,
	)
	raw, err := s.Ollama.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	rep := &models.AIReport{ReportType: models.AIReportSales, Raw: raw}
	if data := ExtractJSON(raw); data != nil {
		rep.Data = data
	} else {
		log.Printf("[ai][sales_report] model returned no parseable JSON")
	}
	if err := s.Reports.Create(rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *AIService) ListReports(reportType string, limit, offset int) ([]*models.AIReport, error) {
	return s.Reports.List(reportType, limit, offset)
}

func (s *AIService) ListAnomalies(limit int) ([]*models.AIAnomaly, error) {
	return s.Reports.ListAnomalies(limit)
}

// DetectAnomalies runs the rule-based checks: negative stock is always a
// critical problem, and selling far more than the low-stock threshold within
// a day looks like fraud or a data-entry mistake.
func (s *AIService) DetectAnomalies() ([]*models.AIAnomaly, error) {
	products, err := s.Products.List(models.ProductFilter{}, 1000, 0)
	if err != nil {
		return nil, err
	}
	dayAgo := time.Now().Add(-24 * time.Hour)

	var found []*models.AIAnomaly
	for _, p := range products {
		if p.Quantity < 0 {
			found = append(found, &models.AIAnomaly{
				Message: fmt.Sprintf("Product '%s' has negative stock (%d).", p.Name, p.Quantity),
				Level:   "critical",
			})
		}

		sold, err := s.Sales.SoldSince(p.ID, dayAgo)
		if err != nil {
			return nil, err
		}
		if p.LowStockThreshold > 0 && sold > 5*p.LowStockThreshold {
			found = append(found, &models.AIAnomaly{
				Message: fmt.Sprintf("Product '%s' sold %d units in 24h, over 5x its threshold of %d. Possible fraud or entry error.", p.Name, sold, p.LowStockThreshold),
				Level:   "warning",
			})
		}
	}

	for _, a := range found {
		if err := s.Reports.CreateAnomaly(a); err != nil {
			return nil, err
		}
		if s.Notifier != nil {
			s.Notifier.NotifyAnomaly(a.Message, a.Level)
		}
	}
	return found, nil
}

// ExtractJSON pulls the first JSON object out of a model reply, stripping
// markdown code fences the smaller models like to wrap answers in.
func ExtractJSON(raw string) json.RawMessage {
	cleaned := strings.TrimSpace(raw)
	if i := strings.Index(cleaned, "```"); i >= 0 {
		cleaned = cleaned[i+3:]
		cleaned = strings.TrimPrefix(cleaned, "json")
		if j := strings.Index(cleaned, "```"); j >= 0 {
			cleaned = cleaned[:j]
		}
	}
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil
	}
	candidate := cleaned[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil
	}
	return json.RawMessage(candidate)
}
