package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"letsassist/internal/domain"
)

type organizationRepository struct {
	DB *sql.DB
}

func NewOrganizationRepository(db *sql.DB) domain.OrganizationRepository {
	return &organizationRepository{
		DB: db,
	}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, org.Name, org.Description, org.CreatedAt, org.UpdatedAt).Scan(&org.ID)
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	org := &domain.Organization{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Description, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return org, nil
}

func (r *organizationRepository) AddMember(ctx context.Context, orgID, userID string, role domain.MembershipRole) error {
	query := `
		INSERT INTO organization_members (organization_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.DB.ExecContext(ctx, query, orgID, userID, role)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return domain.ErrAlreadyMember
	}
	return err
}

func (r *organizationRepository) UpdateMemberRole(ctx context.Context, orgID, userID string, role domain.MembershipRole) error {
	query := `
		UPDATE organization_members SET role = $1, updated_at = NOW()
		WHERE organization_id = $2 AND user_id = $3
	`
	result, err := r.DB.ExecContext(ctx, query, role, orgID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *organizationRepository) RemoveMember(ctx context.Context, orgID, userID string) error {
	query := `DELETE FROM organization_members WHERE organization_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, orgID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *organizationRepository) ListMembers(ctx context.Context, orgID string) ([]*domain.OrganizationMember, error) {
	query := `
		SELECT m.organization_id, m.user_id, m.role, u.name, u.last_name, u.email
		FROM organization_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]*domain.OrganizationMember, 0)
	for rows.Next() {
		m := &domain.OrganizationMember{}
		if err := rows.Scan(&m.OrganizationID, &m.UserID, &m.Role, &m.Name, &m.LastName, &m.Email); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *organizationRepository) ListMembershipsByUserID(ctx context.Context, userID string) ([]domain.OrganizationMembership, error) {
	query := `
		SELECT organization_id, role
		FROM organization_members
		WHERE user_id = $1
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	memberships := make([]domain.OrganizationMembership, 0)
	for rows.Next() {
		var m domain.OrganizationMembership
		if err := rows.Scan(&m.OrganizationID, &m.Role); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}
