package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/attendance"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/report"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/school"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchoolRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewSchoolRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, school.School{
		Name:           "Govt. Middle School Danapur",
		Code:           "DNP01",
		Latitude:       25.63,
		Longitude:      85.04,
		Address:        school.Address{Block: "Danapur", District: "Patna", State: school.DefaultState},
		IsActive:       true,
		BoundaryRadius: 100,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, school.School{
		Name: "Other", Code: "DNP01", Address: school.Address{Block: "b", District: "d", State: "s"}, IsActive: true, BoundaryRadius: 100,
	})
	assert.ErrorIs(t, err, school.ErrSchoolCodeExists)

	updated, err := repo.UpdateBoundaryRadius(ctx, created.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, 250, updated.BoundaryRadius)

	created.Name = "GMS Danapur"
	renamed, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "GMS Danapur", renamed.Name)
	assert.Equal(t, 100, renamed.BoundaryRadius)

	principalID := insertUser(t, db, "p@dnp.in", "principal", &created.ID)
	require.NoError(t, repo.SetPrincipalIfEmpty(ctx, created.ID, principalID))
	other := insertUser(t, db, "p2@dnp.in", "principal", &created.ID)
	require.NoError(t, repo.SetPrincipalIfEmpty(ctx, created.ID, other))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PrincipalID)
	assert.Equal(t, principalID, *got.PrincipalID)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, school.ErrSchoolNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "00000000-0000-0000-0000-000000000000"), school.ErrSchoolNotFound)
}

func TestSchoolAndReport_PresentTeachers(t *testing.T) {
	db := newTestDB(t)
	schools := postgresql.NewSchoolRepository(db)
	attendances := postgresql.NewAttendanceRepository(db)
	reports := postgresql.NewReportRepository(db)
	ctx := context.Background()

	schoolID := insertSchool(t, db, "RPT001")
	t1 := insertUser(t, db, "t1@rpt.in", "teacher", &schoolID)
	insertUser(t, db, "t2@rpt.in", "teacher", &schoolID)
	principalID := insertUser(t, db, "p@rpt.in", "principal", &schoolID)
	adminID := insertUser(t, db, "admin@rpt.in", "admin", nil)
	day := time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)

	rec, err := attendances.CreateIfAbsent(ctx, newCheckIn(t1, schoolID, day))
	require.NoError(t, err)
	_, err = attendances.UpdateDecision(ctx, rec.ID, attendance.Decision{Status: attendance.StatusApproved, ApprovedBy: principalID, ApprovedAt: day})
	require.NoError(t, err)

	// approved principal attendance is not counted as a present teacher
	prec, err := attendances.CreateIfAbsent(ctx, newCheckIn(principalID, schoolID, day))
	require.NoError(t, err)
	_, err = attendances.UpdateDecision(ctx, prec.ID, attendance.Decision{Status: attendance.StatusApproved, ApprovedBy: adminID, ApprovedAt: day})
	require.NoError(t, err)

	list, err := schools.ListActive(ctx, day)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].TotalTeachers)
	assert.Equal(t, 1, list[0].PresentTeachers)

	district := "patna"
	rows, err := reports.ListSchoolPresence(ctx, day, report.DistrictFilter{District: &district})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].TotalTeachers)
	assert.Equal(t, 1, rows[0].PresentTeachers)

	other := "Gaya"
	rows, err = reports.ListSchoolPresence(ctx, day, report.DistrictFilter{District: &other})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTransactor_RollsBack(t *testing.T) {
	db := newTestDB(t)
	tx := postgresql.NewTransactor(db)
	repo := postgresql.NewSchoolRepository(db)
	ctx := context.Background()

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.Create(ctx, school.School{
			Name: "Tx", Code: "TX001", Address: school.Address{Block: "b", District: "d", State: "s"}, IsActive: true, BoundaryRadius: 100,
		})
		require.NoError(t, err)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	count, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
