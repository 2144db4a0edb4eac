package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/attendance"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/database"
)

const attendanceColumns = `
	a.id, a.user_id, a.school_id, a.attendance_date,
	a.check_in_time, a.check_in_latitude, a.check_in_longitude, a.check_in_accuracy, a.check_in_address,
	a.check_in_distance_meters, a.check_in_within_boundary, a.photo_url, a.photo_id,
	a.check_out_time, a.check_out_latitude, a.check_out_longitude, a.check_out_accuracy, a.check_out_address,
	a.check_out_distance_meters, a.check_out_within_boundary, a.check_out_photo_url, a.check_out_photo_id,
	a.status, a.approved_by, a.approved_at, a.remarks, a.user_agent,
	a.created_at, a.updated_at,
	u.name, u.email, u.role, s.name`

const attendanceFrom = `
	FROM attendances a
	LEFT JOIN users u ON u.id = a.user_id
	LEFT JOIN schools s ON s.id = a.school_id`

type attendanceRepository struct {
	db *database.DB
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	var role *string
	err := row.Scan(
		&att.ID, &att.UserID, &att.SchoolID, &att.Date,
		&att.CheckInTime, &att.CheckInLatitude, &att.CheckInLongitude, &att.CheckInAccuracy, &att.CheckInAddress,
		&att.CheckInDistance, &att.CheckInWithinBoundary, &att.PhotoURL, &att.PhotoID,
		&att.CheckOutTime, &att.CheckOutLatitude, &att.CheckOutLongitude, &att.CheckOutAccuracy, &att.CheckOutAddress,
		&att.CheckOutDistance, &att.CheckOutWithinBoundary, &att.CheckOutPhotoURL, &att.CheckOutPhotoID,
		&att.Status, &att.ApprovedBy, &att.ApprovedAt, &att.Remarks, &att.UserAgent,
		&att.CreatedAt, &att.UpdatedAt,
		&att.UserName, &att.UserEmail, &role, &att.SchoolName,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if role != nil {
		r := user.Role(*role)
		att.UserRole = &r
	}
	return att, nil
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var list []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, att)
	}
	return list, rows.Err()
}

// getJoined reloads id with its joined columns after a write.
func (a *attendanceRepository) getJoined(ctx context.Context, q database.Querier, id string) (attendance.Attendance, error) {
	query := "SELECT " + attendanceColumns + attendanceFrom + " WHERE a.id = $1"
	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// CreateIfAbsent implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateIfAbsent(ctx context.Context, rec attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			user_id, school_id, attendance_date,
			check_in_time, check_in_latitude, check_in_longitude, check_in_accuracy, check_in_address,
			check_in_distance_meters, check_in_within_boundary, photo_url, photo_id,
			status, user_agent
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		ON CONFLICT (user_id, attendance_date) DO NOTHING
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		rec.UserID,
		rec.SchoolID,
		rec.Date,
		rec.CheckInTime,
		rec.CheckInLatitude,
		rec.CheckInLongitude,
		rec.CheckInAccuracy,
		rec.CheckInAddress,
		rec.CheckInDistance,
		rec.CheckInWithinBoundary,
		rec.PhotoURL,
		rec.PhotoID,
		rec.Status,
		rec.UserAgent,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return a.getJoined(ctx, q, id)
}

// ListByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + attendanceFrom + `
		WHERE a.user_id = $1 AND a.attendance_date = $2
		ORDER BY a.check_in_time ASC`

	rows, err := q.Query(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance by user and date: %w", err)
	}
	list, err := collectAttendances(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan attendance: %w", err)
	}
	return list, nil
}

// CloseOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) CloseOpen(ctx context.Context, id string, out attendance.CheckOut) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			check_out_time = $2,
			check_out_latitude = $3,
			check_out_longitude = $4,
			check_out_accuracy = $5,
			check_out_address = $6,
			check_out_distance_meters = $7,
			check_out_within_boundary = $8,
			check_out_photo_url = $9,
			check_out_photo_id = $10,
			updated_at = NOW()
		WHERE id = $1 AND check_out_time IS NULL
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		id,
		out.Time,
		out.Latitude,
		out.Longitude,
		out.Accuracy,
		out.Address,
		out.Distance,
		out.WithinBoundary,
		out.PhotoURL,
		out.PhotoID,
	).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.Attendance{}, fmt.Errorf("failed to record check-out: %w", err)
	}

	return a.getJoined(ctx, q, updatedID)
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	return a.getJoined(ctx, GetQuerier(ctx, a.db), id)
}

// UpdateDecision implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateDecision(ctx context.Context, id string, d attendance.Decision) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			status = $2,
			approved_by = $3,
			approved_at = $4,
			remarks = COALESCE($5, remarks),
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, d.Status, d.ApprovedBy, d.ApprovedAt, d.Remarks).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM attendances WHERE id = $1)`, id).Scan(&exists); err != nil {
				return attendance.Attendance{}, fmt.Errorf("failed to check attendance: %w", err)
			}
			if !exists {
				return attendance.Attendance{}, attendance.ErrAttendanceNotFound
			}
			return attendance.Attendance{}, attendance.ErrAttendanceAlreadyProcessed
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance status: %w", err)
	}

	return a.getJoined(ctx, q, updatedID)
}

// ListBySchool implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListBySchool(ctx context.Context, schoolID string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + attendanceFrom + `
		WHERE a.school_id = $1
		ORDER BY a.check_in_time DESC`

	rows, err := q.Query(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query school attendance: %w", err)
	}
	list, err := collectAttendances(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan attendance: %w", err)
	}
	return list, nil
}

// ListBySubjectRole implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListBySubjectRole(ctx context.Context, role user.Role) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + attendanceFrom + `
		WHERE u.role = $1
		ORDER BY a.check_in_time DESC`

	rows, err := q.Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance by role: %w", err)
	}
	list, err := collectAttendances(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan attendance: %w", err)
	}
	return list, nil
}

// ListByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, from, to *time.Time, limit, offset int) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	whereClauses := []string{"a.user_id = $1"}
	args := []interface{}{userID}
	argIndex := 2

	if from != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.attendance_date >= $%d", argIndex))
		args = append(args, *from)
		argIndex++
	}
	if to != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.attendance_date <= $%d", argIndex))
		args = append(args, *to)
		argIndex++
	}

	whereSQL := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM attendances a" + whereSQL
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	query := "SELECT " + attendanceColumns + attendanceFrom + whereSQL +
		fmt.Sprintf(" ORDER BY a.check_in_time DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance history: %w", err)
	}
	list, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
	}
	return list, total, nil
}

// MonthlyCounts implements attendance.AttendanceRepository.
func (a *attendanceRepository) MonthlyCounts(ctx context.Context, userID string, year int) ([]attendance.MonthlyCount, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			EXTRACT(MONTH FROM attendance_date)::int AS month,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending
		FROM attendances
		WHERE user_id = $1 AND EXTRACT(YEAR FROM attendance_date)::int = $2
		GROUP BY month
		ORDER BY month DESC
	`

	rows, err := q.Query(ctx, query, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly summary: %w", err)
	}
	defer rows.Close()

	var counts []attendance.MonthlyCount
	for rows.Next() {
		c := attendance.MonthlyCount{Year: year}
		if err := rows.Scan(&c.Month, &c.Total, &c.Approved, &c.Rejected, &c.Pending); err != nil {
			return nil, fmt.Errorf("failed to scan monthly summary: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// DailyCounts implements attendance.AttendanceRepository.
func (a *attendanceRepository) DailyCounts(ctx context.Context, from, to time.Time) ([]attendance.DailyCount, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			attendance_date,
			COUNT(*) AS check_ins,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected
		FROM attendances
		WHERE attendance_date BETWEEN $1 AND $2
		GROUP BY attendance_date
		ORDER BY attendance_date ASC
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily counts: %w", err)
	}
	defer rows.Close()

	var counts []attendance.DailyCount
	for rows.Next() {
		var c attendance.DailyCount
		if err := rows.Scan(&c.Date, &c.CheckIns, &c.Approved, &c.Pending, &c.Rejected); err != nil {
			return nil, fmt.Errorf("failed to scan daily counts: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
