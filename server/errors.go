package server

import (
	"errors"
	"net/http"

	"github.com/aouyang1/go-forecast-narrator/ingest"
	"github.com/aouyang1/go-forecast-narrator/report"
	"github.com/gin-gonic/gin"
)

const (
	CodeInvalidCSV       = "INVALID_CSV"
	CodeBadColumns       = "BAD_COLUMNS"
	CodeEmptySeries      = "EMPTY_SERIES"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeInvalidHorizon   = "INVALID_HORIZON"
	CodeForecastError    = "FORECAST_ERROR"
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeMissingFile      = "MISSING_FILE"
	CodeNotFound         = "NOT_FOUND"

	msgBadColumns = "指定された列が見つかりません"
)

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail ErrorDetail `json:"detail"`
}

// classify maps a pipeline error onto its status and code
func classify(err error) (int, ErrorDetail) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, ErrorDetail{CodeFileTooLarge, err.Error()}
	case errors.Is(err, ingest.ErrColumnNotFound), errors.Is(err, ingest.ErrNoColumn):
		return http.StatusBadRequest, ErrorDetail{CodeBadColumns, msgBadColumns}
	case errors.Is(err, ingest.ErrParse):
		return http.StatusBadRequest, ErrorDetail{CodeInvalidCSV, err.Error()}
	case errors.Is(err, ingest.ErrEmptySeries):
		return http.StatusBadRequest, ErrorDetail{CodeEmptySeries, err.Error()}
	case errors.Is(err, report.ErrInsufficientData):
		return http.StatusBadRequest, ErrorDetail{CodeInsufficientData, err.Error()}
	case errors.Is(err, report.ErrInvalidHorizon):
		return http.StatusBadRequest, ErrorDetail{CodeInvalidHorizon, err.Error()}
	default:
		return http.StatusInternalServerError, ErrorDetail{CodeForecastError, err.Error()}
	}
}

func abortWithError(c *gin.Context, status int, detail ErrorDetail) {
	if status >= http.StatusInternalServerError {
		loggerFrom(c).Error("request failed", "code", detail.Code, "error", detail.Message)
	} else {
		loggerFrom(c).Warn("request rejected", "code", detail.Code, "error", detail.Message)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail})
}
