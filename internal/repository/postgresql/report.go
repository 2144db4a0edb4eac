package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/report"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// ListSchoolPresence implements report.ReportRepository.
func (r *reportRepositoryImpl) ListSchoolPresence(ctx context.Context, day time.Time, filter report.DistrictFilter) ([]report.SchoolPresence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH teachers AS (
			SELECT school_id, COUNT(*) AS total
			FROM users
			WHERE role = 'teacher' AND is_active
			GROUP BY school_id
		),
		present AS (
			SELECT a.school_id, COUNT(DISTINCT a.user_id) AS present
			FROM attendances a
			JOIN users u ON u.id = a.user_id
			WHERE u.role = 'teacher'
				AND a.attendance_date = $1
				AND a.status = 'approved'
			GROUP BY a.school_id
		)
		SELECT
			s.id,
			s.name,
			s.code,
			s.block,
			s.district,
			COALESCE(t.total, 0),
			COALESCE(p.present, 0)
		FROM schools s
		LEFT JOIN teachers t ON t.school_id = s.id
		LEFT JOIN present p ON p.school_id = s.id
		WHERE s.is_active
			AND ($2::text IS NULL OR s.district ILIKE $2)
			AND ($3::text IS NULL OR s.block ILIKE $3)
		ORDER BY s.district, s.block, s.name
	`

	rows, err := q.Query(ctx, query, day, filter.District, filter.Block)
	if err != nil {
		return nil, fmt.Errorf("failed to query school presence: %w", err)
	}
	defer rows.Close()

	var result []report.SchoolPresence
	for rows.Next() {
		var row report.SchoolPresence
		if err := rows.Scan(
			&row.SchoolID,
			&row.Name,
			&row.Code,
			&row.Block,
			&row.District,
			&row.TotalTeachers,
			&row.PresentTeachers,
		); err != nil {
			return nil, fmt.Errorf("failed to scan school presence: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school presence: %w", err)
	}

	return result, nil
}
