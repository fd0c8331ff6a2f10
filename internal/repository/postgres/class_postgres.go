package postgres

import (
	"context"
	"database/sql"

	"projectdrop/internal/model"
	"projectdrop/internal/repository"
)

// ClassPostgres is a PostgreSQL implementation of repository.ClassRepository.
type ClassPostgres struct {
	db *sql.DB
}

// NewClassPostgres creates a new ClassPostgres repository.
func NewClassPostgres(db *sql.DB) *ClassPostgres {
	return &ClassPostgres{db: db}
}

var _ repository.ClassRepository = (*ClassPostgres)(nil)

// List returns all class offerings ordered by grade level.
func (r *ClassPostgres) List(ctx context.Context) ([]model.Class, error) {
	const q = `
		SELECT grade_level, section_name
		FROM classes
		ORDER BY grade_level
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Class, 0)
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.GradeLevel, &c.SectionName); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
