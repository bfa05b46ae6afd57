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

	imagepkg "github.com/youruser/imagefetch/internal/image"
	"github.com/youruser/imagefetch/internal/pipeline"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	out := t.TempDir()
	runner := pipeline.New(imagepkg.NewFetcher(2*time.Second, "No picture available"), pipeline.Options{
		OutputDir:   out,
		WebPQuality: 75,
	})
	r := gin.New()
	RegisterRoutes(r, NewHandler(runner, out, "http://bilder.example"))
	return r
}

func upload(t *testing.T, r http.Handler, name, body string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(body))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/runs", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestCreateRunAndDownloadReport(t *testing.T) {
	r := newTestRouter(t)
	w := upload(t, r, "produkter.csv", "Artikelnummer,Bildlänk\nA-1,No picture available\nA-2,\n")
	if w.Code != http.StatusOK {
		t.Fatalf("create run: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Run       string `json:"run"`
		TotalRows int    `json:"total_rows"`
		Converted int    `json:"converted"`
		Report    string `json:"report"`
		ReportURL string `json:"report_url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalRows != 2 || resp.Converted != 0 {
		t.Errorf("unexpected counters %+v", resp)
	}
	if resp.ReportURL != "http://bilder.example/api/runs/"+resp.Run+"/report" {
		t.Errorf("report_url = %s", resp.ReportURL)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/"+resp.Run+"/report", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("download report: %d", w.Code)
	}
	if w.Body.String() != resp.Report+"\n" {
		t.Errorf("downloaded report differs:\n%s", w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "rapport.txt") {
		t.Errorf("missing attachment header: %v", w.Header())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/"+resp.Run+"/qr?size=128", nil))
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("qr: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestCreateRunRejectsBadUpload(t *testing.T) {
	r := newTestRouter(t)
	w := upload(t, r, "produkter.xlsx", "not a workbook")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing file: expected 400, got %d", w.Code)
	}
}

func TestReportLookup(t *testing.T) {
	r := newTestRouter(t)
	cases := map[string]int{
		"/api/runs/bilder_20240101_000000/report": http.StatusNotFound,
		"/api/runs/bilder_x/report":               http.StatusBadRequest,
		"/api/runs/other/qr":                      http.StatusBadRequest,
	}
	for path, want := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Errorf("GET %s = %d, want %d", path, w.Code, want)
		}
	}
}
