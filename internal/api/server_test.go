package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"schemalens/app"
	"schemalens/internal/config"
)

func testServer() *Server {
	defaults := config.AnalysisConfig{
		SampleSize:          1000,
		ConfidenceThreshold: 0.7,
		DetectSpecialTypes:  true,
		IncludeStatistics:   true,
	}
	return NewServer(app.NewAnalyzer(nil), defaults, nil)
}

func postJSON(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestInferSchemaEndpoint(t *testing.T) {
	s := testServer()
	rec := postJSON(t, s, "/api/v1/schema/infer",
		`{"records": [{"id": 1, "email": "a@b.com"}, {"id": 2, "email": "c@d.com"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var sch struct {
		Fields []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sch); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sch.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(sch.Fields))
	}
}

func TestInferSchemaEndpointRejectsMissingRecords(t *testing.T) {
	s := testServer()
	rec := postJSON(t, s, "/api/v1/schema/infer", `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "INVALID_INPUT" {
		t.Errorf("code = %s, want INVALID_INPUT", body["code"])
	}
}

func TestInferSchemaEndpointRejectsBadJSON(t *testing.T) {
	s := testServer()
	rec := postJSON(t, s, "/api/v1/schema/infer", `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeQualityEndpoint(t *testing.T) {
	s := testServer()
	rec := postJSON(t, s, "/api/v1/quality/analyze",
		`{"records": [{"id": 1, "n": 5}, {"id": 2, "n": 6}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var report struct {
		ReportID string  `json:"report_id"`
		Grade    string  `json:"grade"`
		Overall  float64 `json:"overall_quality"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.ReportID == "" || report.Grade == "" {
		t.Errorf("report = %+v, want report id and grade", report)
	}
}

func TestExportEndpointUnsupportedFormat(t *testing.T) {
	s := testServer()
	rec := postJSON(t, s, "/api/v1/schema/export",
		`{"records": [{"id": 1}], "format": "avro"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}
}

func TestExportEndpoint(t *testing.T) {
	s := testServer()
	rec := postJSON(t, s, "/api/v1/schema/export",
		`{"records": [{"id": 1, "email": "a@b.com"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc["type"] != "object" {
		t.Errorf("type = %v, want object", doc["type"])
	}
}

func TestDescribeEndpointRendersHTMLWhenAccepted(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schema/describe",
		bytes.NewBufferString(`{"records": [{"id": 1}]}`))
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type = %s", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<h1")) {
		t.Errorf("expected rendered HTML, got %s", rec.Body.String())
	}
}

func TestDescribeEndpointDefaultsToMarkdown(t *testing.T) {
	s := testServer()
	rec := postJSON(t, s, "/api/v1/schema/describe", `{"records": [{"id": 1}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/markdown; charset=utf-8" {
		t.Errorf("content type = %s", ct)
	}
}
