package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/report"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/clock"
)

var districtExportHeader = []string{
	"School", "Block", "District", "TotalTeachers", "PresentTeachers", "AttendancePercent",
}

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	clock      clock.Clock
	loc        *time.Location
}

func NewReportService(reportRepo report.ReportRepository, clk clock.Clock, loc *time.Location) report.ReportService {
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		clock:      clk,
		loc:        loc,
	}
}

func (s *ReportServiceImpl) today() time.Time {
	return clock.Day(s.clock.Now(), s.loc)
}

// GetStats implements report.ReportService.
func (s *ReportServiceImpl) GetStats(ctx context.Context, filter report.DistrictFilter) (report.StatsResponse, error) {
	if err := filter.Validate(); err != nil {
		return report.StatsResponse{}, err
	}

	day := s.today()
	rows, err := s.reportRepo.ListSchoolPresence(ctx, day, filter)
	if err != nil {
		return report.StatsResponse{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	return report.Summarize(day, rows), nil
}

// ExportDistrictCSV implements report.ReportService.
func (s *ReportServiceImpl) ExportDistrictCSV(ctx context.Context, filter report.DistrictFilter, w io.Writer) error {
	if err := filter.Validate(); err != nil {
		return err
	}

	rows, err := s.reportRepo.ListSchoolPresence(ctx, s.today(), filter)
	if err != nil {
		return fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(districtExportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Name,
			r.Block,
			r.District,
			strconv.Itoa(r.TotalTeachers),
			strconv.Itoa(r.PresentTeachers),
			strconv.Itoa(r.AttendancePercent()),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
