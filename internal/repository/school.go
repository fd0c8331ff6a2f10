package repository

import (
	"context"

	"projectdrop/internal/model"
)

// Data access interfaces for the three logical tables. SQL queries only,
// no business logic — implementations live in subpackages (e.g., postgres).

// ConfigRepository reads the singleton system configuration row.
type ConfigRepository interface {
	// Get returns the configuration row, or an error when the row is absent.
	Get(ctx context.Context) (*model.SystemConfig, error)
}

// ClassRepository reads the class catalog.
type ClassRepository interface {
	// List returns all class offerings ordered by grade level.
	List(ctx context.Context) ([]model.Class, error)
}

// SubmissionRepository persists and lists submission records.
type SubmissionRepository interface {
	// Create inserts a new submission row.
	// The caller provides ID and SubmittedAt; the stored record is returned
	// (may include values set by the DB).
	Create(ctx context.Context, sub *model.Submission) (*model.Submission, error)

	// List returns a paginated list of submissions, newest first, and the
	// total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Submission], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
