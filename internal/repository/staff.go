package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/arjun-kudva/microbank/internal/domain"
)

const staffColumns = `id, email, name, password_hash, role, status, created_at`

type StaffRepository struct {
	db *sql.DB
}

func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) Create(ctx context.Context, s *domain.Staff) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO staff (id, email, name, password_hash, role, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Email, s.Name, s.PasswordHash, s.Role, s.Status, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Staff, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE id = $1`, id,
	)
	s, err := scanStaff(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return s, nil
}

func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE email = $1`, email,
	)
	s, err := scanStaff(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return s, nil
}

func scanStaff(s scanner) (*domain.Staff, error) {
	var st domain.Staff
	err := s.Scan(
		&st.ID, &st.Email, &st.Name, &st.PasswordHash,
		&st.Role, &st.Status, &st.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
