package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"projectdrop/internal/model"
	"projectdrop/internal/repository"
)

// ConfigPostgres is a PostgreSQL implementation of repository.ConfigRepository.
type ConfigPostgres struct {
	db *sql.DB
}

// NewConfigPostgres creates a new ConfigPostgres repository.
func NewConfigPostgres(db *sql.DB) *ConfigPostgres {
	return &ConfigPostgres{db: db}
}

var _ repository.ConfigRepository = (*ConfigPostgres)(nil)

// Get fetches the singleton configuration row. A missing row is an error:
// the application cannot run without a current year and semester.
func (r *ConfigPostgres) Get(ctx context.Context) (*model.SystemConfig, error) {
	const q = `
		SELECT current_year, current_semester
		FROM system_config
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, q)
	var c model.SystemConfig
	if err := row.Scan(&c.CurrentYear, &c.CurrentSemester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("system configuration row not found: %w", err)
		}
		return nil, err
	}
	return &c, nil
}
