package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/database"
)

const userColumns = `
	u.id, u.name, u.email, u.password_hash, u.role, u.phone, u.school_id,
	u.is_active, u.created_at, u.updated_at,
	(SELECT MAX(a.check_in_time) FROM attendances a WHERE a.user_id = u.id),
	(SELECT MAX(a.check_out_time) FROM attendances a WHERE a.user_id = u.id),
	s.name`

const userFrom = `
	FROM users u
	LEFT JOIN schools s ON s.id = u.school_id`

const userEmailConstraint = "users_email_key"

type userRepositoryImpl struct {
	db *database.DB
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Phone,
		&u.SchoolID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastCheckIn,
		&u.LastCheckOut,
		&u.SchoolName,
	)
	return u, err
}

func (r *userRepositoryImpl) getBy(ctx context.Context, column string, value string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + userColumns + userFrom + " WHERE u." + column + " = $1"
	u, err := scanUser(q.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getBy(ctx, "id", id)
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (name, email, password_hash, role, phone, school_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newUser.Name,
		newUser.Email,
		newUser.PasswordHash,
		newUser.Role,
		newUser.Phone,
		newUser.SchoolID,
		newUser.IsActive,
	).Scan(&newUser.ID, &newUser.CreatedAt, &newUser.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, userEmailConstraint) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// ExistsByEmail implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// ListActiveBySchool implements user.UserRepository.
func (r *userRepositoryImpl) ListActiveBySchool(ctx context.Context, schoolID string, roles []user.Role) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + userColumns + userFrom + `
		WHERE u.school_id = $1 AND u.is_active AND u.role = ANY($2)
		ORDER BY u.name ASC`

	rows, err := q.Query(ctx, query, schoolID, roleStrings(roles))
	if err != nil {
		return nil, fmt.Errorf("failed to query school users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountBySchool implements user.UserRepository.
func (r *userRepositoryImpl) CountBySchool(ctx context.Context, schoolID string, roles []user.Role) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE school_id = $1 AND role = ANY($2)`,
		schoolID, roleStrings(roles)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count school users: %w", err)
	}
	return count, nil
}

// CountActiveByRole implements user.UserRepository.
func (r *userRepositoryImpl) CountActiveByRole(ctx context.Context, role user.Role) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1 AND is_active`, string(role)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func roleStrings(roles []user.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}
