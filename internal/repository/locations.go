package repository

import (
	"context"
	"time"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

func (r *Repository) CreateLocation(location *domain.Location) error {
	query := `
		INSERT INTO locations (name, address, region)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{location.Name, location.Address, location.Region}
	dst := []any{&location.ID, &location.IsActive, &location.CreatedAt, &location.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllLocations() ([]*domain.Location, error) {
	query := `
		SELECT id, name, address, region, is_active, created_at, version FROM locations
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0)
	for rows.Next() {
		location := &domain.Location{}
		dst := []any{&location.ID, &location.Name, &location.Address, &location.Region, &location.IsActive, &location.CreatedAt, &location.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

func (r *Repository) GetLocationByID(id int64) (*domain.Location, error) {
	query := `
		SELECT name, address, region, is_active, created_at, version FROM locations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	location := &domain.Location{
		ID: id,
	}

	dst := []any{&location.Name, &location.Address, &location.Region, &location.IsActive, &location.CreatedAt, &location.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return location, nil
}

func (r *Repository) UpdateLocation(location *domain.Location) error {
	query := `
		UPDATE locations
		SET
			name = $1,
			address = $2,
			region = $3,
			is_active = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{location.Name, location.Address, location.Region, location.IsActive, location.ID, location.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&location.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteLocation(id int64) error {
	query := `
		DELETE FROM locations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
