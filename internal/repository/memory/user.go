package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
)

type userRepository struct {
	store *Store
}

// project fills the computed columns. Caller holds the lock.
func (s *Store) project(u user.User) user.User {
	u.LastCheckIn, u.LastCheckOut = nil, nil
	for _, a := range s.attendances {
		if a.UserID != u.ID {
			continue
		}
		if u.LastCheckIn == nil || a.CheckInTime.After(*u.LastCheckIn) {
			t := a.CheckInTime
			u.LastCheckIn = &t
		}
		if a.CheckOutTime != nil && (u.LastCheckOut == nil || a.CheckOutTime.After(*u.LastCheckOut)) {
			t := *a.CheckOutTime
			u.LastCheckOut = &t
		}
	}
	u.SchoolName = nil
	if u.SchoolID != nil {
		if sch, ok := s.schools[*u.SchoolID]; ok {
			name := sch.Name
			u.SchoolName = &name
		}
	}
	return u
}

func hasRole(roles []user.Role, r user.Role) bool {
	for _, role := range roles {
		if role == r {
			return true
		}
	}
	return false
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			return r.store.project(u), nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return r.store.project(u), nil
}

func (r *userRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, newUser.Email) {
			return user.User{}, user.ErrUserEmailExists
		}
	}

	if newUser.ID == "" {
		newUser.ID = newID()
	}
	now := r.store.now()
	newUser.CreatedAt, newUser.UpdatedAt = now, now
	r.store.users[newUser.ID] = newUser
	return newUser, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == user.ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *userRepository) ListActiveBySchool(ctx context.Context, schoolID string, roles []user.Role) ([]user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []user.User
	for _, u := range r.store.users {
		if u.IsActive && u.BelongsTo(schoolID) && hasRole(roles, u.Role) {
			out = append(out, r.store.project(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *userRepository) CountBySchool(ctx context.Context, schoolID string, roles []user.Role) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := 0
	for _, u := range r.store.users {
		if u.BelongsTo(schoolID) && hasRole(roles, u.Role) {
			count++
		}
	}
	return count, nil
}

func (r *userRepository) CountActiveByRole(ctx context.Context, role user.Role) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := 0
	for _, u := range r.store.users {
		if u.IsActive && u.Role == role {
			count++
		}
	}
	return count, nil
}
