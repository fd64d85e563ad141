package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sartorproj/featurespace/analysis"
	"github.com/sartorproj/featurespace/config"
	"github.com/sartorproj/featurespace/features"
)

func testServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if cfg == nil {
		cfg = config.Default()
	}
	fc, err := cfg.FeatureTable()
	if err != nil {
		t.Fatal(err)
	}
	table, err := features.NewTable(fc, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return New(cfg, analysis.NewAnalyzer(table, cfg.Analyzer(), nil), nil)
}

// wideCSV returns six seasonal series of 72 points in wide format.
func wideCSV() string {
	var b strings.Builder
	b.WriteString("A,B,C,D,E,F\n")
	for i := 0; i < 72; i++ {
		x := float64(i)
		for s := 0; s < 6; s++ {
			if s > 0 {
				b.WriteByte(',')
			}
			v := float64(s)*0.2*x + float64(6-s)*math.Sin(2*math.Pi*x/12) + 0.5*math.Cos(1.3*x*float64(s+1))
			fmt.Fprintf(&b, "%.6f", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func uploadRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(FileField, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestHealthz(t *testing.T) {
	s := testServer(t, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	if got := serve(s, req).Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestNotFound(t *testing.T) {
	rec := serve(testServer(t, nil), httptest.NewRequest(http.MethodGet, "/v2/nothing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := decodeError(t, rec); got.Code != ErrCodeNotFound || got.RequestID == "" {
		t.Errorf("Unexpected error %+v", got)
	}
}

func TestFeatures(t *testing.T) {
	s := testServer(t, nil)
	rec := serve(s, uploadRequest(t, "/v1/features?period=12&fill=-1", "series.csv", wideCSV()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var m features.Matrix
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m.Rows() != 6 || len(m.Columns) != len(features.Extractors()) {
		t.Errorf("Unexpected matrix shape %dx%d", m.Rows(), len(m.Columns))
	}
	if m.Names[0] != "A" || m.Names[5] != "F" {
		t.Errorf("Unexpected row order %v", m.Names)
	}
}

func TestFeaturesErrors(t *testing.T) {
	s := testServer(t, nil)
	tests := []struct {
		name   string
		req    *http.Request
		status int
		code   string
	}{
		{"format", uploadRequest(t, "/v1/features", "series.txt", wideCSV()), http.StatusUnsupportedMediaType, ErrCodeUnsupportedFormat},
		{"non-numeric", uploadRequest(t, "/v1/features", "series.csv", "A,B\n1,2\n3,x\n"), http.StatusBadRequest, ErrCodeNonNumeric},
		{"period", uploadRequest(t, "/v1/features?period=0", "series.csv", wideCSV()), http.StatusBadRequest, ErrCodeBadRequest},
		{"period syntax", uploadRequest(t, "/v1/features?period=twelve", "series.csv", wideCSV()), http.StatusBadRequest, ErrCodeBadRequest},
		{"fill", uploadRequest(t, "/v1/features?fill=NaN", "series.csv", wideCSV()), http.StatusBadRequest, ErrCodeBadRequest},
		{"missing file", httptest.NewRequest(http.MethodPost, "/v1/features", nil), http.StatusBadRequest, ErrCodeBadRequest},
	}
	for _, tt := range tests {
		rec := serve(s, tt.req)
		if rec.Code != tt.status {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, rec.Code, tt.status, rec.Body.String())
			continue
		}
		if got := decodeError(t, rec); got.Code != tt.code {
			t.Errorf("%s: code = %s, want %s", tt.name, got.Code, tt.code)
		}
	}
}

func TestUploadTooLarge(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxUploadMB = 1
	s := testServer(t, cfg)
	big := strings.Repeat("1\n", 1<<20)
	rec := serve(s, uploadRequest(t, "/v1/features", "big.csv", "A\n"+big))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestProjection(t *testing.T) {
	s := testServer(t, nil)
	rec := serve(s, uploadRequest(t, "/v1/features?period=12", "series.csv", wideCSV()))
	if rec.Code != http.StatusOK {
		t.Fatalf("features: status = %d: %s", rec.Code, rec.Body.String())
	}
	var m features.Matrix
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}

	k := 3
	body, err := json.Marshal(ProjectionRequest{
		Names:     m.Names,
		Columns:   m.Columns,
		Values:    rawValues(t, m.Values),
		Algorithm: "pca",
		K:         &k,
		Selected:  []string{"B"},
	})
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/projections", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = serve(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var result analysis.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Projection.Algorithm != analysis.PCA || len(result.Projection.Rows) != 6 {
		t.Fatalf("Unexpected projection %+v", result.Projection)
	}
	if result.Projection.Rows[1].Style != analysis.Selected || result.Projection.Rows[0].Style != analysis.Base {
		t.Errorf("Unexpected styles %+v", result.Projection.Rows[:2])
	}
	if len(result.Ranking.Axes) != 3 || len(result.Ranking.Axes[0]) != 3 {
		t.Errorf("Unexpected ranking shape %+v", result.Ranking)
	}
}

func TestProjectionErrors(t *testing.T) {
	s := testServer(t, nil)
	tests := []struct {
		name string
		body string
		code string
	}{
		{"algorithm", `{"names":["a","b"],"columns":["x"],"values":[[1],[2]],"algorithm":"lda"}`, ErrCodeBadRequest},
		{"ragged", `{"names":["a","b"],"columns":["x"],"values":[[1],[2,3]],"algorithm":"pca"}`, ErrCodeBadRequest},
		{"missing", `{"names":["a"],"columns":["x"]}`, ErrCodeBadRequest},
		{"syntax", `{"names":`, ErrCodeBadRequest},
		{"string cell", `{"names":["a","b"],"columns":["x","y"],"values":[[1,"abc"],[2,3]],"algorithm":"pca"}`, ErrCodeNonNumeric},
		{"null cell", `{"names":["a","b"],"columns":["x"],"values":[[1],[null]],"algorithm":"pca"}`, ErrCodeNonNumeric},
		{"negative k", `{"names":["a","b"],"columns":["x"],"values":[[1],[2]],"algorithm":"pca","k":-2}`, ErrCodeBadRequest},
		{"zero k", `{"names":["a","b"],"columns":["x"],"values":[[1],[2]],"algorithm":"pca","k":0}`, ErrCodeBadRequest},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/v1/projections", strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(s, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400 (%s)", tt.name, rec.Code, rec.Body.String())
			continue
		}
		if got := decodeError(t, rec); got.Code != tt.code {
			t.Errorf("%s: code = %s, want %s", tt.name, got.Code, tt.code)
		}
	}
}

func TestProjectionDefaultK(t *testing.T) {
	s := testServer(t, nil)
	body := `{"names":["a","b","c","d","e","f"],"columns":["x","y","z","w","v","u"],` +
		`"values":[[1,2,3,4,5,6],[2,1,4,3,6,5],[3,5,1,6,2,4],[6,5,4,3,2,1],[4,6,2,5,1,3],[5,3,6,1,4,2]],"algorithm":"pca"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/projections", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var result analysis.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Ranking.K != 5 || len(result.Ranking.Axes[0]) != 5 {
		t.Errorf("Expected the configured k of 5, got %+v", result.Ranking)
	}
}

func rawValues(t *testing.T, values [][]float64) [][]json.RawMessage {
	t.Helper()
	out := make([][]json.RawMessage, len(values))
	for i, row := range values {
		out[i] = make([]json.RawMessage, len(row))
		for j, v := range row {
			b, err := json.Marshal(v)
			if err != nil {
				t.Fatal(err)
			}
			out[i][j] = b
		}
	}
	return out
}

func TestAnalyze(t *testing.T) {
	s := testServer(t, nil)
	rec := serve(s, uploadRequest(t, "/v1/analyze?period=12&algorithms=pca&k=2&selected=C", "series.csv", wideCSV()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var report analysis.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Features.Rows() != 6 || len(report.Results) != 1 {
		t.Fatalf("Unexpected report shape")
	}
	r := report.Results[0]
	if len(r.Ranking.Axes[0]) != 2 || len(r.Heatmap.Features) != 2 {
		t.Errorf("Expected 2 ranked features, got %d", len(r.Ranking.Axes[0]))
	}
	if r.Projection.Rows[2].Style != analysis.Selected {
		t.Errorf("Expected C to be selected, got %s", r.Projection.Rows[2].Style)
	}

	for _, k := range []string{"-3", "0"} {
		rec = serve(s, uploadRequest(t, "/v1/analyze?period=12&algorithms=pca&k="+k, "series.csv", wideCSV()))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("k=%s: status = %d, want 400", k, rec.Code)
			continue
		}
		if got := decodeError(t, rec); got.Code != ErrCodeBadRequest {
			t.Errorf("k=%s: code = %s, want %s", k, got.Code, ErrCodeBadRequest)
		}
	}

	rec = serve(s, uploadRequest(t, "/v1/analyze?algorithms=isomap", "series.csv", wideCSV()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDescribe(t *testing.T) {
	s := testServer(t, nil)
	rec := serve(s, uploadRequest(t, "/v1/series/describe?id=A&period=12", "series.csv", wideCSV()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var report analysis.SeriesReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.ID != "A" || report.Description.Count != 72 || report.Decomposition == nil {
		t.Errorf("Unexpected report %+v", report.Description)
	}

	for _, target := range []string{"/v1/series/describe", "/v1/series/describe?id=Z"} {
		rec = serve(s, uploadRequest(t, target, "series.csv", wideCSV()))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}

	rec = serve(s, uploadRequest(t, "/v1/series/describe", "one.csv", "only\n1\n2\n3\n5\n8\n"))
	if rec.Code != http.StatusOK {
		t.Errorf("single series: status = %d: %s", rec.Code, rec.Body.String())
	}
}
