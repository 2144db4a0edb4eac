package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/school"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/database"
)

const schoolColumns = `
	s.id, s.name, s.code, s.latitude, s.longitude,
	s.street, s.village, s.block, s.district, s.state, s.pincode,
	s.principal_id, s.is_active, s.boundary_radius, s.created_at, s.updated_at,
	p.name,
	(SELECT COUNT(*) FROM users t WHERE t.school_id = s.id AND t.role = 'teacher' AND t.is_active)`

const schoolFrom = `
	FROM schools s
	LEFT JOIN users p ON p.id = s.principal_id`

const schoolCodeConstraint = "schools_code_key"

type schoolRepositoryImpl struct {
	db *database.DB
}

func scanSchool(row pgx.Row, extra ...interface{}) (school.School, error) {
	var s school.School
	dest := []interface{}{
		&s.ID, &s.Name, &s.Code, &s.Latitude, &s.Longitude,
		&s.Address.Street, &s.Address.Village, &s.Address.Block, &s.Address.District, &s.Address.State, &s.Address.Pincode,
		&s.PrincipalID, &s.IsActive, &s.BoundaryRadius, &s.CreatedAt, &s.UpdatedAt,
		&s.PrincipalName,
		&s.TotalTeachers,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return school.School{}, err
	}
	return s, nil
}

func (r *schoolRepositoryImpl) get(ctx context.Context, q database.Querier, id string) (school.School, error) {
	query := "SELECT " + schoolColumns + schoolFrom + " WHERE s.id = $1"
	s, err := scanSchool(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return school.School{}, school.ErrSchoolNotFound
		}
		return school.School{}, fmt.Errorf("failed to get school: %w", err)
	}
	return s, nil
}

// Create implements school.SchoolRepository.
func (r *schoolRepositoryImpl) Create(ctx context.Context, newSchool school.School) (school.School, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO schools (
			name, code, latitude, longitude,
			street, village, block, district, state, pincode,
			principal_id, is_active, boundary_radius
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		newSchool.Name,
		newSchool.Code,
		newSchool.Latitude,
		newSchool.Longitude,
		newSchool.Address.Street,
		newSchool.Address.Village,
		newSchool.Address.Block,
		newSchool.Address.District,
		newSchool.Address.State,
		newSchool.Address.Pincode,
		newSchool.PrincipalID,
		newSchool.IsActive,
		newSchool.BoundaryRadius,
	).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err, schoolCodeConstraint) {
			return school.School{}, school.ErrSchoolCodeExists
		}
		return school.School{}, fmt.Errorf("failed to create school: %w", err)
	}

	return r.get(ctx, q, id)
}

// GetByID implements school.SchoolRepository.
func (r *schoolRepositoryImpl) GetByID(ctx context.Context, id string) (school.School, error) {
	return r.get(ctx, GetQuerier(ctx, r.db), id)
}

// Update implements school.SchoolRepository.
func (r *schoolRepositoryImpl) Update(ctx context.Context, s school.School) (school.School, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE schools SET
			name = $2,
			code = $3,
			latitude = $4,
			longitude = $5,
			street = $6,
			village = $7,
			block = $8,
			district = $9,
			state = $10,
			pincode = $11,
			is_active = $12,
			boundary_radius = $13,
			principal_id = $14,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		s.ID,
		s.Name,
		s.Code,
		s.Latitude,
		s.Longitude,
		s.Address.Street,
		s.Address.Village,
		s.Address.Block,
		s.Address.District,
		s.Address.State,
		s.Address.Pincode,
		s.IsActive,
		s.BoundaryRadius,
		s.PrincipalID,
	)
	if err != nil {
		if database.IsUniqueViolation(err, schoolCodeConstraint) {
			return school.School{}, school.ErrSchoolCodeExists
		}
		return school.School{}, fmt.Errorf("failed to update school: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return school.School{}, school.ErrSchoolNotFound
	}

	return r.get(ctx, q, s.ID)
}

// UpdateBoundaryRadius implements school.SchoolRepository.
func (r *schoolRepositoryImpl) UpdateBoundaryRadius(ctx context.Context, id string, radius int) (school.School, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE schools SET boundary_radius = $2, updated_at = NOW() WHERE id = $1`, id, radius)
	if err != nil {
		return school.School{}, fmt.Errorf("failed to update boundary radius: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return school.School{}, school.ErrSchoolNotFound
	}

	return r.get(ctx, q, id)
}

// Delete implements school.SchoolRepository.
func (r *schoolRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM schools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete school: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return school.ErrSchoolNotFound
	}
	return nil
}

// SetPrincipalIfEmpty implements school.SchoolRepository.
func (r *schoolRepositoryImpl) SetPrincipalIfEmpty(ctx context.Context, id string, principalID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE schools SET principal_id = $2, updated_at = NOW()
		WHERE id = $1 AND principal_id IS NULL
	`, id, principalID)
	if err != nil {
		return fmt.Errorf("failed to assign principal: %w", err)
	}
	return nil
}

// ListActive implements school.SchoolRepository.
func (r *schoolRepositoryImpl) ListActive(ctx context.Context, day time.Time) ([]school.School, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + schoolColumns + `,
		(SELECT COUNT(DISTINCT a.user_id)
		   FROM attendances a
		   JOIN users t ON t.id = a.user_id
		  WHERE a.school_id = s.id AND t.role = 'teacher'
		    AND a.attendance_date = $1 AND a.status = 'approved')` + schoolFrom + `
		WHERE s.is_active
		ORDER BY s.name ASC`

	rows, err := q.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query schools: %w", err)
	}
	defer rows.Close()

	var schools []school.School
	for rows.Next() {
		var present int
		s, err := scanSchool(rows, &present)
		if err != nil {
			return nil, fmt.Errorf("failed to scan school: %w", err)
		}
		s.PresentTeachers = present
		schools = append(schools, s)
	}
	return schools, rows.Err()
}

// CountActive implements school.SchoolRepository.
func (r *schoolRepositoryImpl) CountActive(ctx context.Context) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM schools WHERE is_active`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count schools: %w", err)
	}
	return count, nil
}

func NewSchoolRepository(db *database.DB) school.SchoolRepository {
	return &schoolRepositoryImpl{db: db}
}
