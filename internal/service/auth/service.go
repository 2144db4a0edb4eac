package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/auth"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/school"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/jwt"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx postgresql.Transactor
	user.UserRepository
	school.SchoolRepository
	jwt.Service
	cost int
}

func NewAuthService(tx postgresql.Transactor, userRepository user.UserRepository, schoolRepository school.SchoolRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		tx:               tx,
		UserRepository:   userRepository,
		SchoolRepository: schoolRepository,
		Service:          jwtService,
		cost:             bcrypt.DefaultCost,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	role := user.Role(req.Role)
	if role == user.RoleAdmin {
		return auth.TokenResponse{}, auth.ErrAdminRegistration
	}

	if role.RequiresSchool() {
		s, err := a.SchoolRepository.GetByID(ctx, *req.SchoolID)
		if err != nil {
			return auth.TokenResponse{}, err
		}
		if !s.IsActive {
			return auth.TokenResponse{}, school.ErrSchoolInactive
		}
	}

	exists, err := a.UserRepository.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return auth.TokenResponse{}, user.ErrUserEmailExists
	}

	hashed, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var created user.User
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err = a.UserRepository.Create(txCtx, user.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hashed,
			Role:         role,
			Phone:        req.Phone,
			SchoolID:     req.SchoolID,
			IsActive:     true,
		})
		if err != nil {
			return err
		}

		if role == user.RolePrincipal {
			if err := a.SchoolRepository.SetPrincipalIfEmpty(txCtx, *req.SchoolID, created.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, user.ErrUserEmailExists) {
			return auth.TokenResponse{}, err
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to register user: %w", err)
	}

	slog.Info("user registered", "user_id", created.ID, "role", string(role))

	return a.issueToken(ctx, created.ID)
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountDeactivated
	}

	return a.tokenFor(userData)
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.UserResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return auth.UserResponse{}, auth.ErrInvalidToken
	}

	u, err := a.UserRepository.GetByID(ctx, claims.UserID)
	if err != nil {
		return auth.UserResponse{}, err
	}
	return toUserResponse(u), nil
}

// EnsureAdmin implements auth.AuthService.
func (a *AuthServiceImpl) EnsureAdmin(ctx context.Context, req auth.BootstrapAdminRequest) error {
	if req.Email == "" {
		return nil
	}

	exists, err := a.UserRepository.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to check admin email: %w", err)
	}
	if exists {
		return nil
	}

	hashed, err := a.hashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin, err := a.UserRepository.Create(ctx, user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         user.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	slog.Info("bootstrap admin created", "user_id", admin.ID, "email", admin.Email)
	return nil
}

func (a *AuthServiceImpl) issueToken(ctx context.Context, userID string) (auth.TokenResponse, error) {
	u, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to load user: %w", err)
	}
	return a.tokenFor(u)
}

func (a *AuthServiceImpl) tokenFor(u user.User) (auth.TokenResponse, error) {
	accessToken, expiresAt, err := a.Service.GenerateAccessToken(u.ID, u.Email, u.SchoolID, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: expiresAt,
		User:                 toUserResponse(u),
	}, nil
}

func toUserResponse(u user.User) auth.UserResponse {
	return auth.UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		Phone:        u.Phone,
		SchoolID:     u.SchoolID,
		SchoolName:   u.SchoolName,
		IsActive:     u.IsActive,
		LastCheckIn:  formatTime(u.LastCheckIn),
		LastCheckOut: formatTime(u.LastCheckOut),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
