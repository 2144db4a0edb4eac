package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/attendance"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/auth"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/school"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/clock"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/geo"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/jwt"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/service/file"
	"golang.org/x/sync/errgroup"
)

const (
	captureCheckIn  = "check_in"
	captureCheckOut = "check_out"
	weeklyStatsDays = 7
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	user.UserRepository
	school.SchoolRepository
	fileService file.FileService
	clock       clock.Clock
	loc         *time.Location
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	format := t.In(loc).Format(time.RFC3339)
	return &format
}

// currentUser loads the caller identified by the access token.
func (a *AttendanceServiceImpl) currentUser(ctx context.Context) (user.User, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	u, err := a.UserRepository.GetByID(ctx, claims.UserID)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to load current user: %w", err)
	}
	if !u.IsActive {
		return user.User{}, auth.ErrAccountDeactivated
	}
	return u, nil
}

// subjectSchool resolves the school a subject records attendance against.
func (a *AttendanceServiceImpl) subjectSchool(ctx context.Context, subject user.User) (school.School, error) {
	if subject.SchoolID == nil {
		return school.School{}, school.ErrSchoolNotFound
	}
	s, err := a.SchoolRepository.GetByID(ctx, *subject.SchoolID)
	if err != nil {
		return school.School{}, fmt.Errorf("failed to get school: %w", err)
	}
	return s, nil
}

func evaluate(req attendance.CaptureRequest, s school.School) (geo.Evaluation, error) {
	eval := geo.EvaluateBoundary(req.Point(), s.Center(), float64(s.Radius()), req.Location.Accuracy)
	if !eval.WithinBoundary {
		return eval, &attendance.BoundaryViolationError{Distance: eval.DistanceMeters, Radius: s.Radius()}
	}
	return eval, nil
}

func (a *AttendanceServiceImpl) uploadPhoto(ctx context.Context, userID string, day time.Time, photo string, captureType string) (file.StoredPhoto, error) {
	stored, err := a.fileService.UploadAttendancePhoto(ctx, userID, day, photo, captureType)
	if err != nil {
		if errors.Is(err, file.ErrInvalidImage) {
			return file.StoredPhoto{}, fmt.Errorf("%w: %v", attendance.ErrInvalidPhoto, err)
		}
		return file.StoredPhoto{}, fmt.Errorf("failed to upload attendance photo: %w", err)
	}
	return stored, nil
}

// discardPhoto removes a photo whose record was never written.
func (a *AttendanceServiceImpl) discardPhoto(ctx context.Context, key string) {
	if err := a.fileService.DeleteFile(ctx, key); err != nil {
		slog.Error("failed to delete orphaned attendance photo", "key", key, "error", err)
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	subject, err := a.currentUser(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := attendance.EnsureCanRecord(subject.Role); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s, err := a.subjectSchool(ctx, subject)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.clock.Now()
	day := clock.Day(now, a.loc)

	today, err := a.AttendanceRepository.ListByUserAndDate(ctx, subject.ID, day)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}
	if err := attendance.EnsureCanCheckIn(today); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	eval, err := evaluate(req.CaptureRequest, s)
	if err != nil {
		slog.Info("check-in outside school boundary",
			"user_id", subject.ID, "school_id", s.ID, "distance", eval.DistanceMeters, "radius", s.Radius())
		return attendance.AttendanceResponse{}, err
	}

	photo, err := a.uploadPhoto(ctx, subject.ID, day, req.Photo, captureCheckIn)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	created, err := a.AttendanceRepository.CreateIfAbsent(ctx, attendance.Attendance{
		UserID:                subject.ID,
		SchoolID:              s.ID,
		Date:                  day,
		CheckInTime:           now,
		CheckInLatitude:       req.Point().Latitude,
		CheckInLongitude:      req.Point().Longitude,
		CheckInAccuracy:       req.Location.Accuracy,
		CheckInAddress:        req.Location.Address,
		CheckInDistance:       eval.DistanceMeters,
		CheckInWithinBoundary: eval.WithinBoundary,
		PhotoURL:              photo.URL,
		PhotoID:               photo.Key,
		Status:                attendance.StatusPending,
		UserAgent:             optionalString(req.UserAgent),
	})
	if err != nil {
		a.discardPhoto(ctx, photo.Key)
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	slog.Info("check-in recorded",
		"attendance_id", created.ID, "user_id", subject.ID, "school_id", s.ID, "distance", eval.DistanceMeters)

	return a.toResponse(created), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	subject, err := a.currentUser(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := attendance.EnsureCanRecord(subject.Role); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s, err := a.subjectSchool(ctx, subject)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.clock.Now()
	day := clock.Day(now, a.loc)

	today, err := a.AttendanceRepository.ListByUserAndDate(ctx, subject.ID, day)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}
	open, err := attendance.EnsureCanCheckOut(today)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	eval, err := evaluate(req.CaptureRequest, s)
	if err != nil {
		slog.Info("check-out outside school boundary",
			"user_id", subject.ID, "school_id", s.ID, "distance", eval.DistanceMeters, "radius", s.Radius())
		return attendance.AttendanceResponse{}, err
	}

	photo, err := a.uploadPhoto(ctx, subject.ID, day, req.Photo, captureCheckOut)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	closed, err := a.AttendanceRepository.CloseOpen(ctx, open.ID, attendance.CheckOut{
		Time:           now,
		Latitude:       req.Point().Latitude,
		Longitude:      req.Point().Longitude,
		Accuracy:       req.Location.Accuracy,
		Address:        req.Location.Address,
		Distance:       eval.DistanceMeters,
		WithinBoundary: eval.WithinBoundary,
		PhotoURL:       photo.URL,
		PhotoID:        photo.Key,
	})
	if err != nil {
		a.discardPhoto(ctx, photo.Key)
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-out: %w", err)
	}

	slog.Info("check-out recorded",
		"attendance_id", closed.ID, "user_id", subject.ID, "school_id", s.ID, "distance", eval.DistanceMeters)

	return a.toResponse(closed), nil
}

// GetTodayStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetTodayStatus(ctx context.Context) (attendance.TodayStatusResponse, error) {
	subject, err := a.currentUser(ctx)
	if err != nil {
		return attendance.TodayStatusResponse{}, err
	}
	if err := attendance.EnsureCanRecord(subject.Role); err != nil {
		return attendance.TodayStatusResponse{}, err
	}

	day := clock.Day(a.clock.Now(), a.loc)
	today, err := a.AttendanceRepository.ListByUserAndDate(ctx, subject.ID, day)
	if err != nil {
		return attendance.TodayStatusResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}

	resp := attendance.TodayStatusResponse{
		LastCheckIn:  timePtrToString(subject.LastCheckIn, a.loc),
		LastCheckOut: timePtrToString(subject.LastCheckOut, a.loc),
	}
	if len(today) == 0 {
		return resp, nil
	}

	rec := today[0]
	for i := range today {
		if attendance.StateOf(&today[i]) == attendance.CheckedOut {
			rec = today[i]
			break
		}
	}

	status := string(rec.Status)
	view := a.toResponse(rec)
	resp.HasCheckedIn = true
	resp.HasCheckedOut = attendance.StateOf(&rec) == attendance.CheckedOut
	resp.CheckInTime = timePtrToString(&rec.CheckInTime, a.loc)
	resp.CheckOutTime = timePtrToString(rec.CheckOutTime, a.loc)
	resp.Status = &status
	resp.Attendance = &view
	return resp, nil
}

// GetHistory implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetHistory(ctx context.Context, filter attendance.HistoryFilter) (attendance.HistoryResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.HistoryResponse{}, err
	}

	subject, err := a.currentUser(ctx)
	if err != nil {
		return attendance.HistoryResponse{}, err
	}
	if err := attendance.EnsureCanRecord(subject.Role); err != nil {
		return attendance.HistoryResponse{}, err
	}

	var from, to *time.Time
	if filter.Month != nil && filter.Year != nil {
		start := time.Date(*filter.Year, time.Month(*filter.Month), 1, 0, 0, 0, 0, a.loc)
		end := start.AddDate(0, 1, -1)
		from, to = &start, &end
	}

	offset := (filter.Page - 1) * filter.Limit
	records, total, err := a.AttendanceRepository.ListByUser(ctx, subject.ID, from, to, filter.Limit, offset)
	if err != nil {
		return attendance.HistoryResponse{}, fmt.Errorf("failed to list attendance history: %w", err)
	}

	monthly, err := a.AttendanceRepository.MonthlyCounts(ctx, subject.ID, a.clock.Now().In(a.loc).Year())
	if err != nil {
		return attendance.HistoryResponse{}, fmt.Errorf("failed to get monthly summary: %w", err)
	}

	resp := attendance.HistoryResponse{
		Attendances:    make([]attendance.AttendanceResponse, 0, len(records)),
		Statistics:     statisticsOf(records),
		MonthlySummary: make([]attendance.MonthlySummary, 0, len(monthly)),
		TotalCount:     total,
		Page:           filter.Page,
		Limit:          filter.Limit,
		TotalPages:     int(math.Ceil(float64(total) / float64(filter.Limit))),
	}
	for _, rec := range records {
		resp.Attendances = append(resp.Attendances, a.toResponse(rec))
	}
	for _, m := range monthly {
		resp.MonthlySummary = append(resp.MonthlySummary, attendance.MonthlySummary{
			Year:        m.Year,
			Month:       m.Month,
			TotalDays:   m.Total,
			PresentDays: m.Approved,
			AbsentDays:  m.Rejected,
			PendingDays: m.Pending,
		})
	}
	return resp, nil
}

// statisticsOf summarizes the given page of records.
func statisticsOf(records []attendance.Attendance) attendance.Statistics {
	stats := attendance.Statistics{TotalDays: len(records)}
	for _, rec := range records {
		switch rec.Status {
		case attendance.StatusApproved:
			stats.PresentDays++
		case attendance.StatusRejected:
			stats.AbsentDays++
		case attendance.StatusPending:
			stats.PendingDays++
		}
	}
	if stats.TotalDays > 0 {
		rate := float64(stats.PresentDays) / float64(stats.TotalDays) * 100
		stats.AttendanceRate = math.Round(rate*10) / 10
	}
	return stats
}

// ListSchoolAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListSchoolAttendance(ctx context.Context) ([]attendance.AttendanceResponse, error) {
	principal, err := a.currentPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	records, err := a.AttendanceRepository.ListBySchool(ctx, *principal.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list school attendance: %w", err)
	}
	return a.toResponses(records), nil
}

func (a *AttendanceServiceImpl) currentPrincipal(ctx context.Context) (user.User, error) {
	principal, err := a.currentUser(ctx)
	if err != nil {
		return user.User{}, err
	}
	if principal.Role != user.RolePrincipal {
		return user.User{}, user.ErrPrincipalAccessRequired
	}
	if principal.SchoolID == nil {
		return user.User{}, school.ErrSchoolNotFound
	}
	return principal, nil
}

// Approve implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Approve(ctx context.Context, req attendance.DecisionRequest) (attendance.AttendanceResponse, error) {
	return a.decide(ctx, req, attendance.StatusApproved, false)
}

// Reject implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Reject(ctx context.Context, req attendance.DecisionRequest) (attendance.AttendanceResponse, error) {
	return a.decide(ctx, req, attendance.StatusRejected, false)
}

// ListPrincipalAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListPrincipalAttendance(ctx context.Context) ([]attendance.AttendanceResponse, error) {
	records, err := a.AttendanceRepository.ListBySubjectRole(ctx, user.RolePrincipal)
	if err != nil {
		return nil, fmt.Errorf("failed to list principal attendance: %w", err)
	}
	return a.toResponses(records), nil
}

// ApprovePrincipal implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ApprovePrincipal(ctx context.Context, req attendance.DecisionRequest) (attendance.AttendanceResponse, error) {
	return a.decide(ctx, req, attendance.StatusApproved, true)
}

// RejectPrincipal implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RejectPrincipal(ctx context.Context, req attendance.DecisionRequest) (attendance.AttendanceResponse, error) {
	return a.decide(ctx, req, attendance.StatusRejected, true)
}

// decide applies status to a pending record on behalf of the caller. With
// principalOnly the record must have been captured by a principal.
func (a *AttendanceServiceImpl) decide(ctx context.Context, req attendance.DecisionRequest, status attendance.Status, principalOnly bool) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	approver, err := a.currentUser(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	subjectRole, err := a.subjectRole(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if principalOnly && subjectRole != user.RolePrincipal {
		return attendance.AttendanceResponse{}, attendance.ErrNotPrincipalAttendance
	}
	if err := attendance.EnsureCanDecide(approver, subjectRole, rec); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	d, err := rec.Decide(status, approver.ID, a.clock.Now(), req.Remarks)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	updated, err := a.AttendanceRepository.UpdateDecision(ctx, rec.ID, d)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceAlreadyProcessed) || errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance status: %w", err)
	}

	slog.Info("attendance decided",
		"attendance_id", updated.ID, "status", string(status), "approver_id", approver.ID, "subject_role", string(subjectRole))

	return a.toResponse(updated), nil
}

// subjectRole returns the role of the user who captured rec.
func (a *AttendanceServiceImpl) subjectRole(ctx context.Context, rec attendance.Attendance) (user.Role, error) {
	if rec.UserRole != nil {
		return *rec.UserRole, nil
	}
	subject, err := a.UserRepository.GetByID(ctx, rec.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to load attendance subject: %w", err)
	}
	return subject.Role, nil
}

// GetStats implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetStats(ctx context.Context) (attendance.StatsResponse, error) {
	today := clock.Day(a.clock.Now(), a.loc)
	from := today.AddDate(0, 0, -(weeklyStatsDays - 1))

	var (
		counts   []attendance.DailyCount
		schools  int
		teachers int
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		counts, err = a.AttendanceRepository.DailyCounts(gCtx, from, today)
		if err != nil {
			return fmt.Errorf("failed to get daily counts: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		schools, err = a.SchoolRepository.CountActive(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count schools: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		teachers, err = a.UserRepository.CountActiveByRole(gCtx, user.RoleTeacher)
		if err != nil {
			return fmt.Errorf("failed to count teachers: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return attendance.StatsResponse{}, err
	}

	byDate := make(map[string]attendance.DailyCount, len(counts))
	for _, c := range counts {
		byDate[c.Date.Format("2006-01-02")] = c
	}

	resp := attendance.StatsResponse{
		Total:  attendance.TotalStats{Schools: schools, Teachers: teachers},
		Weekly: make([]attendance.DailyStats, 0, weeklyStatsDays),
	}
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		c := byDate[key]
		resp.Weekly = append(resp.Weekly, attendance.DailyStats{
			Date:     key,
			CheckIns: c.CheckIns,
			Approved: c.Approved,
		})
	}

	t := byDate[today.Format("2006-01-02")]
	resp.Today = attendance.TodayStats{
		TotalCheckIns:    t.CheckIns,
		ApprovedCheckIns: t.Approved,
		PendingCheckIns:  t.Pending,
		RejectedCheckIns: t.Rejected,
	}
	return resp, nil
}

func (a *AttendanceServiceImpl) toResponses(records []attendance.Attendance) []attendance.AttendanceResponse {
	out := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, a.toResponse(rec))
	}
	return out
}

func (a *AttendanceServiceImpl) toResponse(rec attendance.Attendance) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:                       rec.ID,
		UserID:                   rec.UserID,
		UserName:                 rec.UserName,
		UserEmail:                rec.UserEmail,
		SchoolID:                 rec.SchoolID,
		SchoolName:               rec.SchoolName,
		Date:                     rec.Date.Format("2006-01-02"),
		CheckInTime:              rec.CheckInTime.In(a.loc).Format(time.RFC3339),
		Latitude:                 rec.CheckInLatitude,
		Longitude:                rec.CheckInLongitude,
		Accuracy:                 rec.CheckInAccuracy,
		Address:                  rec.CheckInAddress,
		Distance:                 rec.CheckInDistance,
		IsWithinBoundary:         rec.CheckInWithinBoundary,
		PhotoURL:                 rec.PhotoURL,
		CheckOutTime:             timePtrToString(rec.CheckOutTime, a.loc),
		CheckOutLatitude:         rec.CheckOutLatitude,
		CheckOutLongitude:        rec.CheckOutLongitude,
		CheckOutAccuracy:         rec.CheckOutAccuracy,
		CheckOutAddress:          rec.CheckOutAddress,
		CheckOutDistance:         rec.CheckOutDistance,
		CheckOutIsWithinBoundary: rec.CheckOutWithinBoundary,
		CheckOutPhotoURL:         rec.CheckOutPhotoURL,
		Status:                   string(rec.Status),
		ApprovedBy:               rec.ApprovedBy,
		ApprovedAt:               timePtrToString(rec.ApprovedAt, a.loc),
		Remarks:                  rec.Remarks,
		CreatedAt:                rec.CreatedAt.In(a.loc).Format(time.RFC3339),
		UpdatedAt:                rec.UpdatedAt.In(a.loc).Format(time.RFC3339),
	}
	if rec.UserRole != nil {
		role := string(*rec.UserRole)
		resp.UserRole = &role
	}
	return resp
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	schoolRepo school.SchoolRepository,
	fileService file.FileService,
	clk clock.Clock,
	loc *time.Location,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		UserRepository:       userRepo,
		SchoolRepository:     schoolRepo,
		fileService:          fileService,
		clock:                clk,
		loc:                  loc,
	}
}
