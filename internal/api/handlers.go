package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	imagepkg "github.com/youruser/imagefetch/internal/image"
	"github.com/youruser/imagefetch/internal/logging"
	"github.com/youruser/imagefetch/internal/pipeline"
	"github.com/youruser/imagefetch/internal/records"
	"github.com/youruser/imagefetch/internal/report"
)

var runName = regexp.MustCompile(`^` + pipeline.DirPrefix + `_\d{8}_\d{6}(-\d+)?$`)

// Handler exposes the pipeline over HTTP: upload a spreadsheet, run it and
// fetch the resulting report.
type Handler struct {
	runner    *pipeline.Runner
	outputDir string
	baseURL   string

	// runs are sequential, also across requests
	mu sync.Mutex
}

// NewHandler returns a Handler. baseURL is used for report links; when
// empty the request's host is used.
func NewHandler(runner *pipeline.Runner, outputDir, baseURL string) *Handler {
	return &Handler{
		runner:    runner,
		outputDir: outputDir,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createRun takes a multipart "file" upload and processes it synchronously.
func (h *Handler) createRun(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fp, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer fp.Close()

	recs, err := records.Load(fp, header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// a client hanging up should not abort the rows still to come
	ctx := context.WithoutCancel(c.Request.Context())
	res, err := h.runner.Run(ctx, recs)
	if err != nil {
		var we *report.WriteError
		if errors.As(err, &we) && res != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run": res.Name(), "report": res.Text})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	logging.Component("api").Info("run completed", "run", res.Name(), "upload", header.Filename)
	c.JSON(http.StatusOK, gin.H{
		"run":        res.Name(),
		"total_rows": res.Summary.TotalRows,
		"downloaded": res.Summary.Downloaded,
		"converted":  res.Summary.Converted,
		"failures":   res.Summary.Failures,
		"report":     res.Text,
		"report_url": h.reportURL(c, res.Name()),
	})
}

func (h *Handler) downloadReport(c *gin.Context) {
	path, ok := h.reportPath(c)
	if !ok {
		return
	}
	c.FileAttachment(path, report.FileName)
}

// reportQR returns a PNG QR code for the report download link.
func (h *Handler) reportQR(c *gin.Context) {
	if _, ok := h.reportPath(c); !ok {
		return
	}
	size := 256
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 && v <= 2048 {
		size = v
	}
	b, err := imagepkg.ReportQRCode(h.reportURL(c, c.Param("run")), size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

func (h *Handler) reportPath(c *gin.Context) (string, bool) {
	run := c.Param("run")
	if !runName.MatchString(run) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run name"})
		return "", false
	}
	path := filepath.Join(h.outputDir, run, report.FileName)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return "", false
	}
	return path, true
}

func (h *Handler) reportURL(c *gin.Context, run string) string {
	base := h.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/api/runs/" + run + "/report"
}
