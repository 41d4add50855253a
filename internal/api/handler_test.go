package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/strady/imo-backend/internal/rates"
)

func setupTestApp(t *testing.T) (*fiber.App, *rates.Store) {
	t.Helper()

	store := rates.NewStore(filepath.Join(t.TempDir(), "loan_rates.csv"))
	h := &Handler{
		Store:    store,
		Receiver: &rates.Receiver{Store: store},
	}

	app := fiber.New()
	h.RegisterRoutes(app)
	return app, store
}

func multipartFile(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &body, w.FormDataContentType()
}

func TestWelcomeEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["message"] == "" {
		t.Error("expected a welcome message")
	}
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}
}

func TestLoanRatesEmptyBeforeUpload(t *testing.T) {
	app, store := setupTestApp(t)

	// No rate file exists yet; the table must be empty, not an error.
	if err := store.Reload(); err != nil {
		t.Fatalf("startup reload failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/loan-rates", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if got := strings.TrimSpace(string(body)); got != "[]" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestUploadRoundTrip(t *testing.T) {
	app, _ := setupTestApp(t)

	csv := "bank,rate,duration\nKBC,3.45,25\nBelfius,3.52,20\n"
	body, contentType := multipartFile(t, "file", "rates.csv", csv)

	req := httptest.NewRequest("POST", "/api/upload-rates", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}

	// The upload response is only acknowledged after the reload, so the new
	// rows must be visible immediately.
	req = httptest.NewRequest("GET", "/api/loan-rates", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("read request failed: %v", err)
	}

	raw, _ := io.ReadAll(resp.Body)
	var rows []map[string]string
	if err := json.Unmarshal(raw, &rows); err != nil {
		t.Fatalf("failed to decode rows: %v", err)
	}

	want := []map[string]string{
		{"bank": "KBC", "rate": "3.45", "duration": "25"},
		{"bank": "Belfius", "rate": "3.52", "duration": "20"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		for k, v := range want[i] {
			if rows[i][k] != v {
				t.Errorf("row %d field %q: got %q, want %q", i, k, rows[i][k], v)
			}
		}
	}
}

func TestUploadSecondFileReplacesFirst(t *testing.T) {
	app, _ := setupTestApp(t)

	for _, csv := range []string{
		"bank,rate\nKBC,3.45\nBelfius,3.52\n",
		"bank,rate\nArgenta,3.30\n",
	} {
		body, contentType := multipartFile(t, "file", "rates.csv", csv)
		req := httptest.NewRequest("POST", "/api/upload-rates", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	}

	req := httptest.NewRequest("GET", "/api/loan-rates", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var rows []map[string]string
	if err := json.Unmarshal(raw, &rows); err != nil {
		t.Fatalf("failed to decode rows: %v", err)
	}
	if len(rows) != 1 || rows[0]["bank"] != "Argenta" {
		t.Errorf("expected the second upload to replace the table, got %v", rows)
	}
}

func TestUploadRequiresFileField(t *testing.T) {
	app, store := setupTestApp(t)

	// Multipart body with no file field at all.
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/upload-rates", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for missing file field, got %d", resp.StatusCode)
	}
	if got := len(store.Records()); got != 0 {
		t.Errorf("cache must be unchanged by a rejected upload, got %d records", got)
	}
}

func TestGeneratePDF(t *testing.T) {
	app, _ := setupTestApp(t)

	payload := `{
		"property_price": 300000,
		"personal_contribution": 50000,
		"region": "other",
		"monthly_rent": 1000,
		"vacancy_rate": 10,
		"property_tax": 600,
		"insurance": 300,
		"maintenance": 200,
		"co_ownership_fees": 50
	}`

	req := httptest.NewRequest("POST", "/api/generate-pdf", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Strady-imo-Summary.pdf") {
		t.Errorf("expected suggested filename in Content-Disposition, got %q", cd)
	}

	body, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(body, []byte("%PDF-1.")) {
		t.Error("response body is not a PDF document")
	}
}

func TestGeneratePDFRejectsUnknownIntensity(t *testing.T) {
	app, _ := setupTestApp(t)

	payload := `{
		"property_price": 200000,
		"renovations": [{"surface": 10, "intensity": "extreme"}]
	}`

	req := httptest.NewRequest("POST", "/api/generate-pdf", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for unknown intensity, got %d", resp.StatusCode)
	}
}

func TestGeneratePDFRejectsMalformedBody(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/api/generate-pdf", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}
