package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"projectdrop/internal/model"
	"projectdrop/internal/repository"
)

// SubmissionPostgres is a PostgreSQL implementation of repository.SubmissionRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type SubmissionPostgres struct {
	db *sql.DB
}

// NewSubmissionPostgres creates a new SubmissionPostgres repository.
func NewSubmissionPostgres(db *sql.DB) *SubmissionPostgres {
	return &SubmissionPostgres{db: db}
}

var _ repository.SubmissionRepository = (*SubmissionPostgres)(nil)

// Create inserts a new submission row and returns the stored record.
// Failure is wrapped with a descriptive message; there is no retry.
func (r *SubmissionPostgres) Create(ctx context.Context, sub *model.Submission) (*model.Submission, error) {
	const q = `
		INSERT INTO submissions (id, student_name, project_title, file_url, grade_level, section, year, semester, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, student_name, project_title, file_url, grade_level, section, year, semester, submitted_at
	`
	row := r.db.QueryRowContext(ctx, q,
		sub.ID,
		sub.StudentName,
		sub.ProjectTitle,
		sub.FileURL,
		sub.GradeLevel,
		sub.Section,
		sub.Year,
		sub.Semester,
		sub.SubmittedAt,
	)
	var out model.Submission
	if err := row.Scan(
		&out.ID,
		&out.StudentName,
		&out.ProjectTitle,
		&out.FileURL,
		&out.GradeLevel,
		&out.Section,
		&out.Year,
		&out.Semester,
		&out.SubmittedAt,
	); err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return &out, nil
}

// List returns submissions using LIMIT/OFFSET pagination and a total count,
// newest first.
func (r *SubmissionPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Submission], error) {
	const qCount = `SELECT COUNT(*) FROM submissions`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, student_name, project_title, file_url, grade_level, section, year, semester, submitted_at
		FROM submissions
		ORDER BY submitted_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Submission, 0)
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(
			&s.ID,
			&s.StudentName,
			&s.ProjectTitle,
			&s.FileURL,
			&s.GradeLevel,
			&s.Section,
			&s.Year,
			&s.Semester,
			&s.SubmittedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Submission]{
		Items: items,
		Total: total,
	}, nil
}
