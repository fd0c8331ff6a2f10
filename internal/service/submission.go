package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"projectdrop/internal/model"
	"projectdrop/internal/repository"
	"projectdrop/internal/storage"
)

const (
	// MaxFileSize is the upload limit; a file exactly at the limit is accepted.
	MaxFileSize = 10 * 1024 * 1024

	minNameRunes  = 6
	minTitleRunes = 5
	// The project title is truncated to this many runes in the generated
	// file name.
	maxTitleRunes = 30

	pdfContentType = "application/pdf"
)

// ValidationErrors collects every violated form rule for one submission so
// the user sees all problems at once instead of only the first.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// Term is the current academic year and semester. It is read from the
// system configuration once at startup and reused for every submission.
type Term struct {
	Year     string `json:"year"`
	Semester string `json:"semester"`
}

// SubmissionInput carries one submission attempt as collected by the form.
type SubmissionInput struct {
	StudentName  string
	ProjectTitle string
	GradeLevel   string
	Section      string
	File         io.Reader
	FileSize     int64
}

// ClassCatalog groups class offerings by grade for the dependent dropdown.
// Grades are sorted; sections keep their listing order within a grade.
type ClassCatalog struct {
	Grades   []string            `json:"grades"`
	Sections map[string][]string `json:"sections"`
}

// SubmissionListResult is the service-level DTO for paginated submissions.
type SubmissionListResult struct {
	Items []model.Submission `json:"data"`
	Total int                `json:"total"`
}

// SubmissionService defines the use cases behind the submission form.
type SubmissionService interface {
	// Term returns the academic term the service was started with.
	Term() Term

	// Classes returns the class catalog for the form dropdowns.
	Classes(ctx context.Context) (*ClassCatalog, error)

	// Submit runs one submission through validation, folder resolution,
	// upload, link sharing, and persistence. Any failure after validation
	// aborts the remaining steps; side effects already applied (folders,
	// uploaded file) are not rolled back.
	Submit(ctx context.Context, in SubmissionInput) (*model.Submission, error)

	// ListRecent returns submissions newest first using limit/offset and a
	// total count.
	ListRecent(ctx context.Context, limit, offset int) (*SubmissionListResult, error)
}

// submissionService is a concrete implementation of SubmissionService.
type submissionService struct {
	store   storage.Storage
	subs    repository.SubmissionRepository
	classes repository.ClassRepository
	term    Term
	tracer  trace.Tracer
}

// NewSubmissionService constructs a new SubmissionService for the given term.
func NewSubmissionService(store storage.Storage, subs repository.SubmissionRepository, classes repository.ClassRepository, term Term) SubmissionService {
	return &submissionService{
		store:   store,
		subs:    subs,
		classes: classes,
		term:    term,
		tracer:  otel.Tracer("projectdrop/internal/service"),
	}
}

func (s *submissionService) Term() Term {
	return s.term
}

// Validate checks all form rules and returns every violation.
// Lengths are counted in runes after trimming surrounding whitespace, so
// Arabic names are measured by character, not byte.
func Validate(in SubmissionInput) ValidationErrors {
	var errs ValidationErrors

	if utf8.RuneCountInString(strings.TrimSpace(in.StudentName)) < minNameRunes {
		errs = append(errs, fmt.Sprintf("student name must be at least %d characters", minNameRunes))
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.ProjectTitle)) < minTitleRunes {
		errs = append(errs, fmt.Sprintf("project title must be at least %d characters", minTitleRunes))
	}
	if in.File == nil {
		errs = append(errs, "a PDF file must be selected")
	}
	if in.FileSize > MaxFileSize {
		errs = append(errs, "file size exceeds the 10 MB limit")
	}

	return errs
}

// BuildFileName generates the stored file name: student name with spaces
// replaced by underscores, an underscore, the first 30 runes of the project
// title, and the fixed .pdf extension. Title spaces are kept as-is.
func BuildFileName(studentName, projectTitle string) string {
	safeName := strings.ReplaceAll(studentName, " ", "_")
	title := projectTitle
	if r := []rune(title); len(r) > maxTitleRunes {
		title = string(r[:maxTitleRunes])
	}
	return safeName + "_" + title + ".pdf"
}

// findOrCreateFolder looks a folder up by exact name within the parent and
// creates it when absent. Search-then-create is not atomic: concurrent
// callers resolving the same path may each create a duplicate folder. The
// provider offers no conditional create, so this is an accepted limitation.
func (s *submissionService) findOrCreateFolder(ctx context.Context, name, parentID string) (string, error) {
	id, found, err := s.store.FindFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	if found {
		return id, nil
	}
	return s.store.CreateFolder(ctx, name, parentID)
}

// ensurePath resolves the Year → Semester → Grade → Section folder chain,
// threading each folder as the parent of the next, and returns the deepest
// folder's id. It fails fast on the first error; folders already created
// stay in place.
func (s *submissionService) ensurePath(ctx context.Context, year, semester, grade, section string) (string, error) {
	parentID := ""
	for _, name := range []string{year, semester, grade, section} {
		id, err := s.findOrCreateFolder(ctx, name, parentID)
		if err != nil {
			return "", fmt.Errorf("resolve folder path: %w", err)
		}
		parentID = id
	}
	return parentID, nil
}

func (s *submissionService) Submit(ctx context.Context, in SubmissionInput) (*model.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit")
	defer span.End()

	// All rules are checked before any external call is made.
	if errs := Validate(in); len(errs) > 0 {
		return nil, errs
	}

	folderID, err := s.ensurePath(ctx, s.term.Year, s.term.Semester, in.GradeLevel, in.Section)
	if err != nil {
		return nil, err
	}

	fileName := BuildFileName(in.StudentName, in.ProjectTitle)
	info, err := s.store.UploadFile(ctx, fileName, folderID, in.File, in.FileSize, pdfContentType)
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}

	fileURL, err := s.store.ShareWithLink(ctx, info.ID)
	if err != nil {
		return nil, fmt.Errorf("share file: %w", err)
	}

	sub := &model.Submission{
		ID:           uuid.New().String(),
		StudentName:  strings.TrimSpace(in.StudentName),
		ProjectTitle: strings.TrimSpace(in.ProjectTitle),
		FileURL:      fileURL,
		GradeLevel:   in.GradeLevel,
		Section:      in.Section,
		Year:         s.term.Year,
		Semester:     s.term.Semester,
		SubmittedAt:  time.Now().UTC(),
	}

	// The uploaded file and any created folders stay in place when the
	// insert fails; storage is not rolled back.
	stored, err := s.subs.Create(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}
	return stored, nil
}

// Classes groups offerings by grade. Grades are sorted and de-duplicated;
// sections keep the repository's listing order.
func (s *submissionService) Classes(ctx context.Context) (*ClassCatalog, error) {
	items, err := s.classes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	cat := &ClassCatalog{Sections: make(map[string][]string)}
	for _, c := range items {
		if _, ok := cat.Sections[c.GradeLevel]; !ok {
			cat.Grades = append(cat.Grades, c.GradeLevel)
		}
		cat.Sections[c.GradeLevel] = append(cat.Sections[c.GradeLevel], c.SectionName)
	}
	sort.Strings(cat.Grades)
	return cat, nil
}

// ListRecent returns paginated submissions without exposing repository types.
func (s *submissionService) ListRecent(ctx context.Context, limit, offset int) (*SubmissionListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.subs.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &SubmissionListResult{Items: res.Items, Total: res.Total}, nil
}
