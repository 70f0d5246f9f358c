package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"letsassist/internal/domain"
)

type signupRepository struct {
	DB *sql.DB
}

func NewSignupRepository(db *sql.DB) domain.SignupRepository {
	return &signupRepository{
		DB: db,
	}
}

func (r *signupRepository) Create(ctx context.Context, s *domain.Signup) error {
	query := `
		INSERT INTO project_signups (project_id, user_id, slot_key, check_in_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		s.ProjectID, s.UserID, s.SlotKey, s.CheckInCode, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return domain.ErrAlreadySignedUp
	}
	return err
}

func (r *signupRepository) GetByID(ctx context.Context, id string) (*domain.Signup, error) {
	query := `
		SELECT id, project_id, user_id, slot_key, check_in_code, reminded_at, created_at, updated_at
		FROM project_signups
		WHERE id = $1
	`
	s := &domain.Signup{}
	var remindedNull sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.ProjectID, &s.UserID, &s.SlotKey, &s.CheckInCode,
		&remindedNull, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if remindedNull.Valid {
		s.RemindedAt = &remindedNull.Time
	}
	return s, nil
}

func (r *signupRepository) Exists(ctx context.Context, projectID, userID, slotKey string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM project_signups
			WHERE project_id = $1 AND user_id = $2 AND slot_key = $3
		)
	`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, projectID, userID, slotKey).Scan(&exists)
	return exists, err
}

func (r *signupRepository) CountBySlot(ctx context.Context, projectID, slotKey string) (int, error) {
	query := `
		SELECT COUNT(*) FROM project_signups
		WHERE project_id = $1 AND slot_key = $2
	`
	var count int
	err := r.DB.QueryRowContext(ctx, query, projectID, slotKey).Scan(&count)
	return count, err
}

const signupWithUserQuery = `
	SELECT s.id, s.project_id, s.user_id, s.slot_key, s.check_in_code, s.reminded_at, s.created_at, s.updated_at,
	       u.name, u.last_name, u.email
	FROM project_signups s
	JOIN users u ON u.id = s.user_id
`

func scanSignupWithUser(scan func(dest ...any) error) (*domain.SignupWithUser, error) {
	s := &domain.Signup{}
	su := &domain.SignupWithUser{Signup: s}
	var remindedNull sql.NullTime
	err := scan(
		&s.ID, &s.ProjectID, &s.UserID, &s.SlotKey, &s.CheckInCode,
		&remindedNull, &s.CreatedAt, &s.UpdatedAt,
		&su.Name, &su.LastName, &su.Email,
	)
	if err != nil {
		return nil, err
	}
	if remindedNull.Valid {
		s.RemindedAt = &remindedNull.Time
	}
	return su, nil
}

func (r *signupRepository) ListByProjectID(ctx context.Context, projectID string) ([]*domain.SignupWithUser, error) {
	query := signupWithUserQuery + `
	WHERE s.project_id = $1
	ORDER BY s.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	signups := make([]*domain.SignupWithUser, 0)
	for rows.Next() {
		su, err := scanSignupWithUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		signups = append(signups, su)
	}
	return signups, rows.Err()
}

func (r *signupRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Signup, error) {
	query := `
		SELECT id, project_id, user_id, slot_key, check_in_code, reminded_at, created_at, updated_at
		FROM project_signups
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	signups := make([]*domain.Signup, 0)
	for rows.Next() {
		s := &domain.Signup{}
		var remindedNull sql.NullTime
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.UserID, &s.SlotKey, &s.CheckInCode, &remindedNull, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if remindedNull.Valid {
			s.RemindedAt = &remindedNull.Time
		}
		signups = append(signups, s)
	}
	return signups, rows.Err()
}

func (r *signupRepository) ListUnremindedByProjectID(ctx context.Context, projectID string) ([]*domain.SignupWithUser, error) {
	query := signupWithUserQuery + `
	WHERE s.project_id = $1 AND s.reminded_at IS NULL
	ORDER BY s.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	signups := make([]*domain.SignupWithUser, 0)
	for rows.Next() {
		su, err := scanSignupWithUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		signups = append(signups, su)
	}
	return signups, rows.Err()
}

func (r *signupRepository) MarkReminded(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE project_signups SET reminded_at = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *signupRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM project_signups WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
