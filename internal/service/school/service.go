package school

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/school"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/clock"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/sms"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/validator"
)

const alertMessage = "Shikshak Watch Alert: Low attendance at %s. Please check in immediately."

var staffRoles = []user.Role{user.RoleTeacher, user.RolePrincipal}

type SchoolServiceImpl struct {
	school.SchoolRepository
	user.UserRepository
	sender sms.Sender
	clock  clock.Clock
	loc    *time.Location
}

func NewSchoolService(schoolRepo school.SchoolRepository, userRepo user.UserRepository, sender sms.Sender, clk clock.Clock, loc *time.Location) school.SchoolService {
	return &SchoolServiceImpl{
		SchoolRepository: schoolRepo,
		UserRepository:   userRepo,
		sender:           sender,
		clock:            clk,
		loc:              loc,
	}
}

// Create implements school.SchoolService.
func (s *SchoolServiceImpl) Create(ctx context.Context, req school.CreateSchoolRequest) (school.SchoolResponse, error) {
	if err := req.Validate(); err != nil {
		return school.SchoolResponse{}, err
	}

	created, err := s.SchoolRepository.Create(ctx, req.ToSchool())
	if err != nil {
		if errors.Is(err, school.ErrSchoolCodeExists) {
			return school.SchoolResponse{}, err
		}
		return school.SchoolResponse{}, fmt.Errorf("failed to create school: %w", err)
	}

	slog.Info("school created", "school_id", created.ID, "code", created.Code)
	return toSchoolResponse(created), nil
}

// getSchool treats malformed ids as missing.
func (s *SchoolServiceImpl) getSchool(ctx context.Context, id string) (school.School, error) {
	if !validator.IsValidUUID(id) {
		return school.School{}, school.ErrSchoolNotFound
	}
	return s.SchoolRepository.GetByID(ctx, id)
}

// GetByID implements school.SchoolService.
func (s *SchoolServiceImpl) GetByID(ctx context.Context, id string) (school.SchoolResponse, error) {
	found, err := s.getSchool(ctx, id)
	if err != nil {
		return school.SchoolResponse{}, err
	}
	return toSchoolResponse(found), nil
}

// List implements school.SchoolService.
func (s *SchoolServiceImpl) List(ctx context.Context) ([]school.SchoolResponse, error) {
	schools, err := s.SchoolRepository.ListActive(ctx, clock.Day(s.clock.Now(), s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}

	responses := make([]school.SchoolResponse, 0, len(schools))
	for _, sch := range schools {
		responses = append(responses, toSchoolResponse(sch))
	}
	return responses, nil
}

// Update implements school.SchoolService.
func (s *SchoolServiceImpl) Update(ctx context.Context, req school.UpdateSchoolRequest) (school.SchoolResponse, error) {
	if err := req.Validate(); err != nil {
		return school.SchoolResponse{}, err
	}

	existing, err := s.SchoolRepository.GetByID(ctx, req.ID)
	if err != nil {
		return school.SchoolResponse{}, err
	}

	if req.PrincipalID != nil {
		principal, err := s.UserRepository.GetByID(ctx, *req.PrincipalID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return school.SchoolResponse{}, school.ErrInvalidPrincipal
			}
			return school.SchoolResponse{}, fmt.Errorf("failed to get principal: %w", err)
		}
		if principal.Role != user.RolePrincipal || !principal.IsActive || !principal.BelongsTo(existing.ID) {
			return school.SchoolResponse{}, school.ErrInvalidPrincipal
		}
	}

	req.Apply(&existing)

	updated, err := s.SchoolRepository.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, school.ErrSchoolCodeExists) || errors.Is(err, school.ErrSchoolNotFound) {
			return school.SchoolResponse{}, err
		}
		return school.SchoolResponse{}, fmt.Errorf("failed to update school: %w", err)
	}

	return toSchoolResponse(updated), nil
}

// Delete implements school.SchoolService.
func (s *SchoolServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.getSchool(ctx, id); err != nil {
		return err
	}

	members, err := s.UserRepository.CountBySchool(ctx, id, staffRoles)
	if err != nil {
		return fmt.Errorf("failed to count school members: %w", err)
	}
	if members > 0 {
		return school.ErrSchoolHasMembers
	}

	if err := s.SchoolRepository.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("school deleted", "school_id", id)
	return nil
}

// UpdateBoundary implements school.SchoolService.
func (s *SchoolServiceImpl) UpdateBoundary(ctx context.Context, req school.UpdateBoundaryRequest) (school.SchoolResponse, error) {
	if err := req.Validate(); err != nil {
		return school.SchoolResponse{}, err
	}

	updated, err := s.SchoolRepository.UpdateBoundaryRadius(ctx, req.ID, req.BoundaryRadius)
	if err != nil {
		return school.SchoolResponse{}, err
	}

	slog.Info("school boundary updated", "school_id", updated.ID, "boundary_radius", updated.BoundaryRadius)
	return toSchoolResponse(updated), nil
}

// SendAlert implements school.SchoolService. A failed message is counted and
// logged; the remaining recipients are still texted.
func (s *SchoolServiceImpl) SendAlert(ctx context.Context, id string) (school.AlertResponse, error) {
	sch, err := s.getSchool(ctx, id)
	if err != nil {
		return school.AlertResponse{}, err
	}

	staff, err := s.UserRepository.ListActiveBySchool(ctx, id, staffRoles)
	if err != nil {
		return school.AlertResponse{}, fmt.Errorf("failed to list school staff: %w", err)
	}

	var phones []string
	for _, u := range staff {
		if u.Phone != nil && *u.Phone != "" {
			phones = append(phones, *u.Phone)
		}
	}
	if len(phones) == 0 {
		return school.AlertResponse{}, school.ErrNoRecipients
	}

	body := fmt.Sprintf(alertMessage, sch.Name)
	resp := school.AlertResponse{SchoolID: sch.ID, Recipients: len(phones)}
	for _, phone := range phones {
		if _, err := s.sender.Send(ctx, phone, body); err != nil {
			slog.Error("failed to send attendance alert", "school_id", sch.ID, "error", err)
			resp.Failed++
			continue
		}
		resp.Sent++
	}

	slog.Info("attendance alert sent", "school_id", sch.ID, "sent", resp.Sent, "failed", resp.Failed)
	return resp, nil
}

// Dropdown implements school.SchoolService.
func (s *SchoolServiceImpl) Dropdown(ctx context.Context) ([]school.DropdownItem, error) {
	schools, err := s.SchoolRepository.ListActive(ctx, clock.Day(s.clock.Now(), s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}

	items := make([]school.DropdownItem, 0, len(schools))
	for _, sch := range schools {
		items = append(items, school.DropdownItem{
			ID:      sch.ID,
			Name:    sch.Name,
			Code:    sch.Code,
			Address: school.NewAddressResponse(sch.Address),
		})
	}
	return items, nil
}

func toSchoolResponse(s school.School) school.SchoolResponse {
	return school.SchoolResponse{
		ID:              s.ID,
		Name:            s.Name,
		Code:            s.Code,
		Latitude:        s.Latitude,
		Longitude:       s.Longitude,
		Address:         school.NewAddressResponse(s.Address),
		PrincipalID:     s.PrincipalID,
		PrincipalName:   s.PrincipalName,
		IsActive:        s.IsActive,
		BoundaryRadius:  s.Radius(),
		TotalTeachers:   s.TotalTeachers,
		PresentTeachers: s.PresentTeachers,
		CreatedAt:       s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
