package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/go-forecast-narrator/ingest"
	"github.com/aouyang1/go-forecast-narrator/report"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

const (
	formFile        = "file"
	formDateCol     = "dateCol"
	formValueCol    = "valueCol"
	formHorizonDays = "horizonDays"

	healthTimeout = time.Second

	placeholderHTML = `<html><body><h3>フロント未ビルドです</h3><p>開発時は Vite を実行、もしくは frontend を build してください。</p></body></html>`
)

var sampleName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var errMissingFile = errors.New("multipart field file is required")

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Services  map[string]string `json:"services"`
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	writer := "disabled"
	if s.opt.WriterEnabled {
		writer = "enabled"
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   s.opt.Version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Services: map[string]string{
			"cache":         s.cache.Status(ctx),
			"report_writer": writer,
		},
	})
}

// readUpload returns the bytes of the uploaded file field
func readUpload(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile(formFile)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, errMissingFile
	}
	if err != nil {
		return nil, fmt.Errorf("unable to parse upload, %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open upload, %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func uploadError(c *gin.Context, err error) {
	if errors.Is(err, errMissingFile) {
		abortWithError(c, http.StatusBadRequest, ErrorDetail{CodeMissingFile, err.Error()})
		return
	}
	status, detail := classify(err)
	if status == http.StatusInternalServerError {
		// anything else wrong with the upload is a malformed request body
		status, detail = http.StatusBadRequest, ErrorDetail{CodeInvalidCSV, err.Error()}
	}
	abortWithError(c, status, detail)
}

func (s *Server) preview(c *gin.Context) {
	b, err := readUpload(c)
	if err != nil {
		uploadError(c, err)
		return
	}
	res, err := ingest.Preview(bytes.NewReader(b), ingest.DefaultPreviewRows)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, ErrorDetail{CodeInvalidCSV, err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) forecast(c *gin.Context) {
	b, err := readUpload(c)
	if err != nil {
		uploadError(c, err)
		return
	}

	dateCol := c.PostForm(formDateCol)
	valueCol := c.PostForm(formValueCol)
	if dateCol == "" || valueCol == "" {
		abortWithError(c, http.StatusBadRequest, ErrorDetail{CodeBadColumns, msgBadColumns})
		return
	}

	horizon := s.opt.DefaultHorizon
	if raw := strings.TrimSpace(c.PostForm(formHorizonDays)); raw != "" {
		horizon, err = strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, ErrorDetail{
				CodeInvalidHorizon,
				fmt.Sprintf("%q, %v", raw, report.ErrInvalidHorizon),
			})
			return
		}
	}

	ctx := c.Request.Context()
	key := CacheKey(b, dateCol, valueCol, horizon, s.reporter.Fingerprint())
	if cached, hit := s.cache.Get(ctx, key); hit {
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	loggerFrom(c).Info("forecast start",
		"date_col", dateCol,
		"value_col", valueCol,
		"horizon", horizon,
		"bytes", len(b),
	)
	resp, err := s.reporter.Run(ctx, bytes.NewReader(b), dateCol, valueCol, horizon)
	if err != nil {
		status, detail := classify(err)
		abortWithError(c, status, detail)
		return
	}

	out, err := json.Marshal(resp)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, ErrorDetail{CodeForecastError, err.Error()})
		return
	}
	s.cache.Set(ctx, key, out)

	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

func (s *Server) sample(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("name"), ".csv")
	if !sampleName.MatchString(name) || s.opt.SampleDir == "" {
		abortWithError(c, http.StatusNotFound, ErrorDetail{CodeNotFound, "Sample not found"})
		return
	}
	p := filepath.Join(s.opt.SampleDir, name+".csv")
	if info, err := os.Stat(p); err != nil || info.IsDir() {
		abortWithError(c, http.StatusNotFound, ErrorDetail{CodeNotFound, "Sample not found"})
		return
	}
	c.Header("Content-Type", "text/csv")
	c.FileAttachment(p, name+".csv")
}

// frontend serves the built single page app, falling back to index.html for client side routes
func (s *Server) frontend() gin.HandlerFunc {
	root := http.Dir(s.opt.FrontendDir)
	files := http.FileServer(root)
	index := filepath.Join(s.opt.FrontendDir, "index.html")
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			notFound(c)
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			notFound(c)
			return
		}
		if f, err := root.Open(path.Clean(c.Request.URL.Path)); err == nil {
			info, statErr := f.Stat()
			f.Close()
			if statErr == nil && !info.IsDir() {
				files.ServeHTTP(c.Writer, c.Request)
				return
			}
		}
		c.File(index)
	}
}

func placeholder(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(placeholderHTML))
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Detail: ErrorDetail{CodeNotFound, "Not Found"}})
}
