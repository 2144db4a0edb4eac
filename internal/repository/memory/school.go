package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/attendance"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/school"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
)

type schoolRepository struct {
	store *Store
}

// joinSchool fills the principal name and teacher headcount. Caller holds the lock.
func (s *Store) joinSchool(sch school.School) school.School {
	sch.PrincipalName = nil
	if sch.PrincipalID != nil {
		if p, ok := s.users[*sch.PrincipalID]; ok {
			name := p.Name
			sch.PrincipalName = &name
		}
	}
	sch.TotalTeachers = s.activeTeachers(sch.ID)
	return sch
}

func (s *Store) activeTeachers(schoolID string) int {
	count := 0
	for _, u := range s.users {
		if u.IsActive && u.Role == user.RoleTeacher && u.BelongsTo(schoolID) {
			count++
		}
	}
	return count
}

// presentTeachers counts teachers of schoolID approved on day.
func (s *Store) presentTeachers(schoolID string, day time.Time) int {
	present := make(map[string]struct{})
	for _, a := range s.attendances {
		if a.SchoolID != schoolID || a.Status != attendance.StatusApproved || !sameDay(a.Date, day) {
			continue
		}
		if u, ok := s.users[a.UserID]; ok && u.Role == user.RoleTeacher {
			present[a.UserID] = struct{}{}
		}
	}
	return len(present)
}

func (s *Store) codeTaken(code, exceptID string) bool {
	for _, sch := range s.schools {
		if sch.Code == code && sch.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *schoolRepository) Create(ctx context.Context, newSchool school.School) (school.School, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.codeTaken(newSchool.Code, "") {
		return school.School{}, school.ErrSchoolCodeExists
	}
	if newSchool.ID == "" {
		newSchool.ID = newID()
	}
	now := r.store.now()
	newSchool.CreatedAt, newSchool.UpdatedAt = now, now
	r.store.schools[newSchool.ID] = newSchool
	return r.store.joinSchool(newSchool), nil
}

func (r *schoolRepository) GetByID(ctx context.Context, id string) (school.School, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sch, ok := r.store.schools[id]
	if !ok {
		return school.School{}, school.ErrSchoolNotFound
	}
	return r.store.joinSchool(sch), nil
}

func (r *schoolRepository) Update(ctx context.Context, s school.School) (school.School, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.schools[s.ID]
	if !ok {
		return school.School{}, school.ErrSchoolNotFound
	}
	if r.store.codeTaken(s.Code, s.ID) {
		return school.School{}, school.ErrSchoolCodeExists
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = r.store.now()
	r.store.schools[s.ID] = s
	return r.store.joinSchool(s), nil
}

func (r *schoolRepository) UpdateBoundaryRadius(ctx context.Context, id string, radius int) (school.School, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sch, ok := r.store.schools[id]
	if !ok {
		return school.School{}, school.ErrSchoolNotFound
	}
	sch.BoundaryRadius = radius
	sch.UpdatedAt = r.store.now()
	r.store.schools[id] = sch
	return r.store.joinSchool(sch), nil
}

func (r *schoolRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.schools[id]; !ok {
		return school.ErrSchoolNotFound
	}
	delete(r.store.schools, id)
	return nil
}

func (r *schoolRepository) SetPrincipalIfEmpty(ctx context.Context, id string, principalID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sch, ok := r.store.schools[id]
	if !ok || sch.PrincipalID != nil {
		return nil
	}
	sch.PrincipalID = &principalID
	r.store.schools[id] = sch
	return nil
}

func (r *schoolRepository) ListActive(ctx context.Context, day time.Time) ([]school.School, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []school.School
	for _, sch := range r.store.schools {
		if !sch.IsActive {
			continue
		}
		joined := r.store.joinSchool(sch)
		joined.PresentTeachers = r.store.presentTeachers(sch.ID, day)
		out = append(out, joined)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *schoolRepository) CountActive(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := 0
	for _, sch := range r.store.schools {
		if sch.IsActive {
			count++
		}
	}
	return count, nil
}
