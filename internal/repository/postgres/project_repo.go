package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"letsassist/internal/domain"
)

type projectRepository struct {
	DB *sql.DB
}

func NewProjectRepository(db *sql.DB) domain.ProjectRepository {
	return &projectRepository{
		DB: db,
	}
}

const projectColumns = `id, title, description, location, event_type, schedule, status, is_private, organization_id, creator_id, cancelled_at, cancellation_reason, created_at, updated_at`

// scanProject reads one project row. The schedule column is a JSONB payload
// holding exactly one populated variant.
func scanProject(scan func(dest ...any) error) (*domain.Project, error) {
	p := &domain.Project{}
	var scheduleRaw []byte
	var orgNull, reasonNull sql.NullString
	var cancelledNull sql.NullTime
	err := scan(
		&p.ID, &p.Title, &p.Description, &p.Location, &p.EventType, &scheduleRaw,
		&p.Status, &p.IsPrivate, &orgNull, &p.CreatorID,
		&cancelledNull, &reasonNull, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(scheduleRaw, &p.Schedule); err != nil {
		return nil, fmt.Errorf("decode schedule for project %s: %w", p.ID, err)
	}
	if orgNull.Valid {
		p.OrganizationID = &orgNull.String
	}
	if cancelledNull.Valid {
		p.CancelledAt = &cancelledNull.Time
	}
	if reasonNull.Valid {
		p.CancellationReason = &reasonNull.String
	}
	return p, nil
}

func (r *projectRepository) Create(ctx context.Context, p *domain.Project) error {
	scheduleRaw, err := json.Marshal(p.Schedule)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	var orgNull sql.NullString
	if p.OrganizationID != nil {
		orgNull = sql.NullString{String: *p.OrganizationID, Valid: true}
	}
	query := `
		INSERT INTO projects (title, description, location, event_type, schedule, status, is_private, organization_id, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		p.Title, p.Description, p.Location, p.EventType, scheduleRaw,
		p.Status, p.IsPrivate, orgNull, p.CreatorID, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1
	`
	row := r.DB.QueryRowContext(ctx, query, id)
	p, err := scanProject(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *projectRepository) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	whereClauses := []string{}
	args := []interface{}{}
	n := 1
	if filter.OrganizationID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("organization_id = $%d", n))
		args = append(args, *filter.OrganizationID)
		n++
	}
	if filter.CreatorID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("creator_id = $%d", n))
		args = append(args, *filter.CreatorID)
		n++
	}
	where := ""
	if len(whereClauses) > 0 {
		where = "WHERE " + strings.Join(whereClauses, " AND ")
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM projects
		%s
		ORDER BY created_at DESC
	`, projectColumns, where)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	projects := make([]*domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectRepository) UpdateDetails(ctx context.Context, id string, title, description, location *string) (*domain.Project, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *title)
		n++
	}
	if description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *description)
		n++
	}
	if location != nil {
		setClauses = append(setClauses, fmt.Sprintf("location = $%d", n))
		args = append(args, *location)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE projects SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, projectColumns)
	row := r.DB.QueryRowContext(ctx, query, args...)
	p, err := scanProject(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *projectRepository) MarkCancelled(ctx context.Context, id string, at time.Time, reason string) (*domain.Project, error) {
	query := `
		UPDATE projects
		SET status = $1, cancelled_at = $2, cancellation_reason = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + projectColumns + `
	`
	row := r.DB.QueryRowContext(ctx, query, domain.StatusCancelled, at, reason, id)
	p, err := scanProject(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`
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
