package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/report"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/handler/http/response"
)

type ReportHandler interface {
	// GetStats handles GET /reports/stats
	GetStats(w http.ResponseWriter, r *http.Request)

	// ExportDistrict handles GET /reports/district
	ExportDistrict(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	now           func() time.Time
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		now:           time.Now,
	}
}

func districtFilter(r *http.Request) report.DistrictFilter {
	var filter report.DistrictFilter
	if district := r.URL.Query().Get("district"); district != "" {
		filter.District = &district
	}
	if block := r.URL.Query().Get("block"); block != "" {
		filter.Block = &block
	}
	return filter
}

func (h *reportHandlerImpl) GetStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GetStats(r.Context(), districtFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) ExportDistrict(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.reportService.ExportDistrictCSV(r.Context(), districtFilter(r), &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	writeCSV(w, fmt.Sprintf("district-report-%s.csv", h.now().Format("2006-01-02")), buf.Bytes())
}
