package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/attendance"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
)

type attendanceRepository struct {
	store *Store
}

// joinAttendance fills the user and school columns. Caller holds the lock.
func (s *Store) joinAttendance(a attendance.Attendance) attendance.Attendance {
	a.UserName, a.UserEmail, a.UserRole, a.SchoolName = nil, nil, nil, nil
	if u, ok := s.users[a.UserID]; ok {
		name, email, role := u.Name, u.Email, u.Role
		a.UserName, a.UserEmail, a.UserRole = &name, &email, &role
	}
	if sch, ok := s.schools[a.SchoolID]; ok {
		name := sch.Name
		a.SchoolName = &name
	}
	return a
}

// selectAttendances returns joined records matching keep, newest check-in first.
func (s *Store) selectAttendances(keep func(attendance.Attendance) bool) []attendance.Attendance {
	var out []attendance.Attendance
	for _, a := range s.attendances {
		if keep(a) {
			out = append(out, s.joinAttendance(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.After(out[j].CheckInTime) })
	return out
}

func (r *attendanceRepository) CreateIfAbsent(ctx context.Context, rec attendance.Attendance) (attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, a := range r.store.attendances {
		if a.UserID == rec.UserID && sameDay(a.Date, rec.Date) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
	}

	rec.ID = newID()
	now := r.store.now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	r.store.attendances[rec.ID] = rec
	return r.store.joinAttendance(rec), nil
}

func (r *attendanceRepository) ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := r.store.selectAttendances(func(a attendance.Attendance) bool {
		return a.UserID == userID && sameDay(a.Date, date)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.Before(out[j].CheckInTime) })
	return out, nil
}

func (r *attendanceRepository) CloseOpen(ctx context.Context, id string, out attendance.CheckOut) (attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if a.CheckOutTime != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}

	a.CheckOutTime = &out.Time
	a.CheckOutLatitude = &out.Latitude
	a.CheckOutLongitude = &out.Longitude
	a.CheckOutAccuracy = out.Accuracy
	a.CheckOutAddress = out.Address
	a.CheckOutDistance = &out.Distance
	a.CheckOutWithinBoundary = &out.WithinBoundary
	a.CheckOutPhotoURL = &out.PhotoURL
	a.CheckOutPhotoID = &out.PhotoID
	a.UpdatedAt = r.store.now()
	r.store.attendances[id] = a
	return r.store.joinAttendance(a), nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.store.joinAttendance(a), nil
}

func (r *attendanceRepository) UpdateDecision(ctx context.Context, id string, d attendance.Decision) (attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if a.Status != attendance.StatusPending {
		return attendance.Attendance{}, attendance.ErrAttendanceAlreadyProcessed
	}

	approvedBy, approvedAt := d.ApprovedBy, d.ApprovedAt
	a.Status = d.Status
	a.ApprovedBy = &approvedBy
	a.ApprovedAt = &approvedAt
	if d.Remarks != nil {
		a.Remarks = d.Remarks
	}
	a.UpdatedAt = r.store.now()
	r.store.attendances[id] = a
	return r.store.joinAttendance(a), nil
}

func (r *attendanceRepository) ListBySchool(ctx context.Context, schoolID string) ([]attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.selectAttendances(func(a attendance.Attendance) bool {
		return a.SchoolID == schoolID
	}), nil
}

func (r *attendanceRepository) ListBySubjectRole(ctx context.Context, role user.Role) ([]attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.selectAttendances(func(a attendance.Attendance) bool {
		u, ok := r.store.users[a.UserID]
		return ok && u.Role == role
	}), nil
}

func (r *attendanceRepository) ListByUser(ctx context.Context, userID string, from, to *time.Time, limit, offset int) ([]attendance.Attendance, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	all := r.store.selectAttendances(func(a attendance.Attendance) bool {
		if a.UserID != userID {
			return false
		}
		day := a.Date.Format(dateLayout)
		if from != nil && day < from.Format(dateLayout) {
			return false
		}
		if to != nil && day > to.Format(dateLayout) {
			return false
		}
		return true
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []attendance.Attendance{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *attendanceRepository) MonthlyCounts(ctx context.Context, userID string, year int) ([]attendance.MonthlyCount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	byMonth := make(map[int]*attendance.MonthlyCount)
	for _, a := range r.store.attendances {
		if a.UserID != userID || a.Date.Year() != year {
			continue
		}
		month := int(a.Date.Month())
		c, ok := byMonth[month]
		if !ok {
			c = &attendance.MonthlyCount{Year: year, Month: month}
			byMonth[month] = c
		}
		c.Total++
		switch a.Status {
		case attendance.StatusApproved:
			c.Approved++
		case attendance.StatusRejected:
			c.Rejected++
		case attendance.StatusPending:
			c.Pending++
		}
	}

	out := make([]attendance.MonthlyCount, 0, len(byMonth))
	for _, c := range byMonth {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (r *attendanceRepository) DailyCounts(ctx context.Context, from, to time.Time) ([]attendance.DailyCount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lo, hi := from.Format(dateLayout), to.Format(dateLayout)
	byDay := make(map[string]*attendance.DailyCount)
	for _, a := range r.store.attendances {
		day := a.Date.Format(dateLayout)
		if day < lo || day > hi {
			continue
		}
		c, ok := byDay[day]
		if !ok {
			c = &attendance.DailyCount{Date: a.Date}
			byDay[day] = c
		}
		c.CheckIns++
		switch a.Status {
		case attendance.StatusApproved:
			c.Approved++
		case attendance.StatusPending:
			c.Pending++
		case attendance.StatusRejected:
			c.Rejected++
		}
	}

	out := make([]attendance.DailyCount, 0, len(byDay))
	for _, c := range byDay {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
