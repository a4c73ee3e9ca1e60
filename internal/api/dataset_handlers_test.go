package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pmr-generator/internal/config"
	"pmr-generator/internal/report"
	"pmr-generator/internal/session"
	"pmr-generator/internal/source"
)

const sampleCSV = "COFOG,MDA REVISED,Programme / Project,Q1 Output Performance,Y2025 Approved Budget,Budget Released as at Q1,Cummulative TPR Score\n" +
	"General,Ministry X,Prog A,0.9,1000,500,85\n" +
	"General,Ministry Y,Prog B,0.3,0,0,55\n" +
	"Health,Ministry Z,Prog C,0.7,400,380,65\n"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Report.Department = "MEPB"
	cfg.Report.Government = "Lagos State"
	cfg.Report.CoverTitle = "Performance Management Report"
	cfg.Report.Orientation = "portrait"
	cfg.Report.ChartWidth = 600
	cfg.Report.ChartHeight = 300
	return cfg
}

func testRouter() (*gin.Engine, *session.Store, *report.Runner) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	store := session.NewStore(time.Hour)
	runner := report.NewRunner(cfg.Report.ChartWidth, cfg.Report.ChartHeight, time.Hour)
	fetcher := source.NewSheetFetcher(5 * time.Second)
	return SetupRouter(cfg, store, fetcher, runner), store, runner
}

func uploadCSV(t *testing.T, r *gin.Engine, csvBody string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "pmr.csv")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte(csvBody)); err != nil {
		t.Fatalf("write form: %v", err)
	}
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}
	var resp DatasetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	return resp.ID
}

func TestUploadDataset_CSV(t *testing.T) {
	r, _, _ := testRouter()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "pmr.csv")
	fw.Write([]byte(sampleCSV))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}
	var resp DatasetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Rows != 3 {
		t.Errorf("expected 3 rows, got %d", resp.Rows)
	}
	if resp.Period.Quarter != "Q1" || resp.Period.Year != 2025 {
		t.Errorf("expected default period Q1/2025, got %+v", resp.Period)
	}
}

func TestUploadDataset_SchemaMismatch(t *testing.T) {
	r, _, _ := testRouter()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "pmr.csv")
	fw.Write([]byte("A,B\n1,2\n"))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for schema mismatch, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Output Performance") {
		t.Errorf("error should name the missing pattern: %s", w.Body.String())
	}
}

func TestUploadDataset_UnsupportedExtension(t *testing.T) {
	r, _, _ := testRouter()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "pmr.txt")
	fw.Write([]byte("whatever"))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLinkDataset_InvalidURL(t *testing.T) {
	r, _, _ := testRouter()
	w := httptest.NewRecorder()
	body := bytes.NewReader([]byte(`{"url": "https://example.com/nope"}`))
	req := httptest.NewRequest("POST", "/datasets/link", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for invalid sheet link, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetDataset_NotFound(t *testing.T) {
	r, _, _ := testRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/datasets/unknown", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSummary_FilteredAndColored(t *testing.T) {
	r, _, _ := testRouter()
	id := uploadCSV(t, r, sampleCSV)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/datasets/"+id+"/summary?sector=General", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Selection struct {
			Sector string `json:"sector"`
		} `json:"selection"`
		Summary struct {
			Agencies int `json:"agencies"`
		} `json:"summary"`
		Rows []struct {
			Agency      string `json:"agency"`
			Status      string `json:"status"`
			OutputColor string `json:"outputColor"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Selection.Sector != "General" {
		t.Errorf("selection not echoed: %+v", resp.Selection)
	}
	if resp.Summary.Agencies != 2 {
		t.Errorf("expected 2 agencies in General, got %d", resp.Summary.Agencies)
	}
	if len(resp.Rows) != 2 {
		t.Fatalf("expected 2 grid rows, got %d", len(resp.Rows))
	}
	if resp.Rows[0].Status != "OnTrack" || resp.Rows[0].OutputColor != "green" {
		t.Errorf("row A should be OnTrack/green: %+v", resp.Rows[0])
	}
	if resp.Rows[1].Status != "OffTrack" || resp.Rows[1].OutputColor != "red" {
		t.Errorf("row B should be OffTrack/red: %+v", resp.Rows[1])
	}
}

func TestFilters_CascadingReset(t *testing.T) {
	r, _, _ := testRouter()
	id := uploadCSV(t, r, sampleCSV)

	// Ministry X is not valid under Health: selection must reset to All.
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/datasets/"+id+"/filters?sector=Health&agency=Ministry+X", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Choices struct {
			Agencies []string `json:"agencies"`
		} `json:"choices"`
		Selection struct {
			Agency string `json:"agency"`
		} `json:"selection"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Selection.Agency != "All" {
		t.Errorf("expected agency reset to All, got %q", resp.Selection.Agency)
	}
	if len(resp.Choices.Agencies) != 1 || resp.Choices.Agencies[0] != "Ministry Z" {
		t.Errorf("agency choices should be restricted to Health, got %v", resp.Choices.Agencies)
	}
}

func TestGrouped_ZeroGuard(t *testing.T) {
	r, _, _ := testRouter()
	id := uploadCSV(t, r, sampleCSV)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/datasets/"+id+"/grouped", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Groups []struct {
			Agency        string  `json:"agency"`
			AvgBudgetPerf float64 `json:"avgBudgetPerf"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(resp.Groups))
	}
	if resp.Groups[0].AvgBudgetPerf != 0.5 {
		t.Errorf("Ministry X utilization should be 0.5, got %v", resp.Groups[0].AvgBudgetPerf)
	}
	if resp.Groups[1].AvgBudgetPerf != 0 {
		t.Errorf("zero-budget Ministry Y should report 0, got %v", resp.Groups[1].AvgBudgetPerf)
	}
}

func TestDataExport_CSV(t *testing.T) {
	r, _, _ := testRouter()
	id := uploadCSV(t, r, sampleCSV)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/datasets/"+id+"/export?format=csv&sector=Health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "PMR_Data_Q1_Y2025.csv") {
		t.Errorf("unexpected filename: %q", w.Header().Get("Content-Disposition"))
	}
	body := w.Body.String()
	if !strings.Contains(body, "Ministry Z") || strings.Contains(body, "Ministry X") {
		t.Errorf("export should contain only the filtered view:\n%s", body)
	}
}

func TestDataExport_BadFormat(t *testing.T) {
	r, _, _ := testRouter()
	id := uploadCSV(t, r, sampleCSV)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/datasets/"+id+"/export?format=pdf", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported format, got %d", w.Code)
	}
}

func TestSummary_PeriodOverrideRejectedWhenAbsent(t *testing.T) {
	r, _, _ := testRouter()
	id := uploadCSV(t, r, sampleCSV)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/datasets/"+id+"/summary?quarter=Q3", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unresolved quarter, got %d: %s", w.Code, w.Body.String())
	}
}
