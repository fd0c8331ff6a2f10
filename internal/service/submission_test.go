package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"projectdrop/internal/model"
	"projectdrop/internal/repository"
	repoMocks "projectdrop/internal/repository/mocks"
	"projectdrop/internal/storage"
	storeMocks "projectdrop/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	validFile := strings.NewReader("%PDF-1.4")

	tests := []struct {
		name      string
		input     SubmissionInput
		wantCount int
	}{
		{
			name: "valid input",
			input: SubmissionInput{
				StudentName:  "Ahmed Ali Omar",
				ProjectTitle: "Solar",
				File:         validFile,
				FileSize:     1024,
			},
			wantCount: 0,
		},
		{
			name: "name with five characters is rejected",
			input: SubmissionInput{
				StudentName:  "Ahmed",
				ProjectTitle: "Solar",
				File:         validFile,
				FileSize:     1024,
			},
			wantCount: 1,
		},
		{
			name: "name with six characters is accepted",
			input: SubmissionInput{
				StudentName:  "Ahmedx",
				ProjectTitle: "Solar",
				File:         validFile,
				FileSize:     1024,
			},
			wantCount: 0,
		},
		{
			name: "surrounding whitespace does not count",
			input: SubmissionInput{
				StudentName:  "  Ahmed   ",
				ProjectTitle: "Solar",
				File:         validFile,
				FileSize:     1024,
			},
			wantCount: 1,
		},
		{
			name: "title with four characters is rejected",
			input: SubmissionInput{
				StudentName:  "Ahmed Ali",
				ProjectTitle: "Sola",
				File:         validFile,
				FileSize:     1024,
			},
			wantCount: 1,
		},
		{
			name: "title with five characters is accepted",
			input: SubmissionInput{
				StudentName:  "Ahmed Ali",
				ProjectTitle: "Solar",
				File:         validFile,
				FileSize:     1024,
			},
			wantCount: 0,
		},
		{
			name: "arabic name measured in runes",
			input: SubmissionInput{
				StudentName:  "أحمد محمد",
				ProjectTitle: "الطاقة المتجددة",
				File:         validFile,
				FileSize:     1024,
			},
			wantCount: 0,
		},
		{
			name: "missing file rejected regardless of other fields",
			input: SubmissionInput{
				StudentName:  "Ahmed Ali Omar",
				ProjectTitle: "Renewable Energy",
				File:         nil,
			},
			wantCount: 1,
		},
		{
			name: "file exactly at the limit is accepted",
			input: SubmissionInput{
				StudentName:  "Ahmed Ali Omar",
				ProjectTitle: "Renewable Energy",
				File:         validFile,
				FileSize:     MaxFileSize,
			},
			wantCount: 0,
		},
		{
			name: "file one byte over the limit is rejected",
			input: SubmissionInput{
				StudentName:  "Ahmed Ali Omar",
				ProjectTitle: "Renewable Energy",
				File:         validFile,
				FileSize:     MaxFileSize + 1,
			},
			wantCount: 1,
		},
		{
			name:      "missing file and default size",
			input:     SubmissionInput{StudentName: "Ahmed Ali Omar", ProjectTitle: "Renewable Energy", File: nil},
			wantCount: 1,
		},
		{
			name: "all four rules violated at once",
			input: SubmissionInput{
				StudentName:  "Ali",
				ProjectTitle: "X",
				File:         nil,
				FileSize:     MaxFileSize + 1,
			},
			wantCount: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.input)
			assert.Len(t, errs, tt.wantCount)
		})
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	// All four rules at once, each with its own message.
	errs := Validate(SubmissionInput{
		StudentName:  "Ali",
		ProjectTitle: "X",
		File:         nil,
		FileSize:     MaxFileSize + 1,
	})

	require.Len(t, errs, 4)
	assert.Contains(t, errs[0], "student name")
	assert.Contains(t, errs[1], "project title")
	assert.Contains(t, errs[2], "PDF file")
	assert.Contains(t, errs[3], "file size")

	seen := map[string]bool{}
	for _, e := range errs {
		assert.False(t, seen[e], "duplicate message: %s", e)
		seen[e] = true
	}
}

func TestBuildFileName(t *testing.T) {
	tests := []struct {
		name         string
		studentName  string
		projectTitle string
		want         string
	}{
		{
			name:         "spaces in student name become underscores, title truncated to 30",
			studentName:  "Ahmed Ali Omar",
			projectTitle: "Renewable Energy and Its Future Impact",
			want:         "Ahmed_Ali_Omar_Renewable Energy and Its Futur.pdf",
		},
		{
			name:         "short title kept whole",
			studentName:  "Sara Omar Hasan",
			projectTitle: "Solar Cells",
			want:         "Sara_Omar_Hasan_Solar Cells.pdf",
		},
		{
			name:         "arabic title truncated by rune, not byte",
			studentName:  "أحمد محمد علي",
			projectTitle: strings.Repeat("م", 40),
			want:         "أحمد_محمد_علي_" + strings.Repeat("م", 30) + ".pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFileName(tt.studentName, tt.projectTitle))
		})
	}
}

func newTestService(store storage.Storage, subs repository.SubmissionRepository, classes repository.ClassRepository) *submissionService {
	return NewSubmissionService(store, subs, classes, Term{
		Year:     "2025-2026",
		Semester: "Semester 1",
	}).(*submissionService)
}

func TestSubmissionService_Submit(t *testing.T) {
	ctx := context.Background()

	validInput := func(r *strings.Reader) SubmissionInput {
		return SubmissionInput{
			StudentName:  "Ahmed Ali Omar",
			ProjectTitle: "Renewable Energy",
			GradeLevel:   "Grade 10",
			Section:      "A",
			File:         r,
			FileSize:     8,
		}
	}

	t.Run("happy path creates the full folder chain", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mSubs := new(repoMocks.MockSubmissionRepository)
		svc := newTestService(mStore, mSubs, nil)

		r := strings.NewReader("%PDF-1.4")

		// None of the folders exist yet; each is created under the previous.
		mStore.On("FindFolder", mock.Anything, "2025-2026", "").Return("", false, nil).Once()
		mStore.On("CreateFolder", mock.Anything, "2025-2026", "").Return("f-year", nil).Once()
		mStore.On("FindFolder", mock.Anything, "Semester 1", "f-year").Return("", false, nil).Once()
		mStore.On("CreateFolder", mock.Anything, "Semester 1", "f-year").Return("f-sem", nil).Once()
		mStore.On("FindFolder", mock.Anything, "Grade 10", "f-sem").Return("", false, nil).Once()
		mStore.On("CreateFolder", mock.Anything, "Grade 10", "f-sem").Return("f-grade", nil).Once()
		mStore.On("FindFolder", mock.Anything, "A", "f-grade").Return("", false, nil).Once()
		mStore.On("CreateFolder", mock.Anything, "A", "f-grade").Return("f-section", nil).Once()

		mStore.On("UploadFile", mock.Anything, "Ahmed_Ali_Omar_Renewable Energy.pdf", "f-section", r, int64(8), "application/pdf").
			Return(storage.FileInfo{ID: "file-1", Name: "Ahmed_Ali_Omar_Renewable Energy.pdf", Size: 8}, nil).Once()
		mStore.On("ShareWithLink", mock.Anything, "file-1").
			Return("https://drive.google.com/file/d/file-1/view", nil).Once()

		mSubs.On("Create", mock.Anything, mock.MatchedBy(func(sub *model.Submission) bool {
			return sub.ID != "" &&
				sub.FileURL == "https://drive.google.com/file/d/file-1/view" &&
				sub.Year == "2025-2026" &&
				sub.Semester == "Semester 1" &&
				!sub.SubmittedAt.IsZero()
		})).Return(&model.Submission{ID: "stored-id"}, nil).Once()

		stored, err := svc.Submit(ctx, validInput(r))

		assert.NoError(t, err)
		assert.Equal(t, "stored-id", stored.ID)
		mStore.AssertExpectations(t)
		mSubs.AssertExpectations(t)
	})

	t.Run("validation failure makes no external calls", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mSubs := new(repoMocks.MockSubmissionRepository)
		svc := newTestService(mStore, mSubs, nil)

		_, err := svc.Submit(ctx, SubmissionInput{StudentName: "Ali", ProjectTitle: "X", File: nil})

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 3)
		mStore.AssertNotCalled(t, "FindFolder", mock.Anything, mock.Anything, mock.Anything)
		mSubs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("folder resolution failure aborts before upload", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mSubs := new(repoMocks.MockSubmissionRepository)
		svc := newTestService(mStore, mSubs, nil)

		r := strings.NewReader("%PDF-1.4")
		mStore.On("FindFolder", mock.Anything, "2025-2026", "").
			Return("", false, errors.New("quota exceeded")).Once()

		_, err := svc.Submit(ctx, validInput(r))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "resolve folder path")
		assert.Contains(t, err.Error(), "quota exceeded")
		mStore.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("share failure is reported as upload failure, file not cleaned up", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mSubs := new(repoMocks.MockSubmissionRepository)
		svc := newTestService(mStore, mSubs, nil)

		r := strings.NewReader("%PDF-1.4")
		mStore.On("FindFolder", mock.Anything, mock.Anything, mock.Anything).Return("f-any", true, nil).Times(4)
		mStore.On("UploadFile", mock.Anything, mock.Anything, "f-any", r, int64(8), "application/pdf").
			Return(storage.FileInfo{ID: "file-1"}, nil).Once()
		mStore.On("ShareWithLink", mock.Anything, "file-1").
			Return("", errors.New("permission API unavailable")).Once()

		_, err := svc.Submit(ctx, validInput(r))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "share file")
		mSubs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		mStore.AssertExpectations(t)
	})

	t.Run("database failure after upload leaves storage intact", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mSubs := new(repoMocks.MockSubmissionRepository)
		svc := newTestService(mStore, mSubs, nil)

		r := strings.NewReader("%PDF-1.4")
		mStore.On("FindFolder", mock.Anything, mock.Anything, mock.Anything).Return("f-any", true, nil).Times(4)
		mStore.On("UploadFile", mock.Anything, mock.Anything, "f-any", r, int64(8), "application/pdf").
			Return(storage.FileInfo{ID: "file-1"}, nil).Once()
		mStore.On("ShareWithLink", mock.Anything, "file-1").
			Return("https://example.com/file-1", nil).Once()
		mSubs.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("insert submission: connection refused")).Once()

		stored, err := svc.Submit(ctx, validInput(r))

		assert.Nil(t, stored)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "save submission")
		// No rollback of the uploaded file or created folders: the storage
		// mock saw exactly the calls set up above and nothing else.
		mStore.AssertExpectations(t)
	})
}

func TestSubmissionService_EnsurePath(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent against pre-populated storage", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		svc := newTestService(mStore, nil, nil)

		// First resolution creates the whole chain.
		mStore.On("FindFolder", ctx, "2025-2026", "").Return("", false, nil).Once()
		mStore.On("CreateFolder", ctx, "2025-2026", "").Return("f-year", nil).Once()
		mStore.On("FindFolder", ctx, "Semester 1", "f-year").Return("", false, nil).Once()
		mStore.On("CreateFolder", ctx, "Semester 1", "f-year").Return("f-sem", nil).Once()
		mStore.On("FindFolder", ctx, "Grade 10", "f-sem").Return("", false, nil).Once()
		mStore.On("CreateFolder", ctx, "Grade 10", "f-sem").Return("f-grade", nil).Once()
		mStore.On("FindFolder", ctx, "A", "f-grade").Return("", false, nil).Once()
		mStore.On("CreateFolder", ctx, "A", "f-grade").Return("f-section", nil).Once()

		// Second resolution finds every folder and creates nothing.
		mStore.On("FindFolder", ctx, "2025-2026", "").Return("f-year", true, nil).Once()
		mStore.On("FindFolder", ctx, "Semester 1", "f-year").Return("f-sem", true, nil).Once()
		mStore.On("FindFolder", ctx, "Grade 10", "f-sem").Return("f-grade", true, nil).Once()
		mStore.On("FindFolder", ctx, "A", "f-grade").Return("f-section", true, nil).Once()

		first, err := svc.ensurePath(ctx, "2025-2026", "Semester 1", "Grade 10", "A")
		require.NoError(t, err)

		second, err := svc.ensurePath(ctx, "2025-2026", "Semester 1", "Grade 10", "A")
		require.NoError(t, err)

		assert.Equal(t, "f-section", first)
		assert.Equal(t, first, second)
		mStore.AssertExpectations(t)
	})

	t.Run("fails fast on the first broken level", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		svc := newTestService(mStore, nil, nil)

		mStore.On("FindFolder", ctx, "2025-2026", "").Return("f-year", true, nil).Once()
		mStore.On("FindFolder", ctx, "Semester 1", "f-year").Return("", false, nil).Once()
		mStore.On("CreateFolder", ctx, "Semester 1", "f-year").Return("", errors.New("rate limited")).Once()

		_, err := svc.ensurePath(ctx, "2025-2026", "Semester 1", "Grade 10", "A")

		assert.Error(t, err)
		mStore.AssertNotCalled(t, "FindFolder", ctx, "Grade 10", mock.Anything)
	})
}

func TestSubmissionService_Classes(t *testing.T) {
	ctx := context.Background()

	t.Run("groups sections by grade, grades sorted", func(t *testing.T) {
		mClasses := new(repoMocks.MockClassRepository)
		svc := newTestService(nil, nil, mClasses)

		mClasses.On("List", mock.Anything).Return([]model.Class{
			{GradeLevel: "Grade 11", SectionName: "A"},
			{GradeLevel: "Grade 10", SectionName: "A"},
			{GradeLevel: "Grade 10", SectionName: "B"},
		}, nil)

		cat, err := svc.Classes(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"Grade 10", "Grade 11"}, cat.Grades)
		assert.Equal(t, []string{"A", "B"}, cat.Sections["Grade 10"])
		assert.Equal(t, []string{"A"}, cat.Sections["Grade 11"])
	})

	t.Run("repository error", func(t *testing.T) {
		mClasses := new(repoMocks.MockClassRepository)
		svc := newTestService(nil, nil, mClasses)

		mClasses.On("List", mock.Anything).Return(nil, errors.New("db fail"))

		cat, err := svc.Classes(ctx)

		assert.Error(t, err)
		assert.Nil(t, cat)
	})
}

func TestSubmissionService_ListRecent(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mSubs := new(repoMocks.MockSubmissionRepository)
		svc := newTestService(nil, mSubs, nil)

		mSubs.On("List", mock.Anything, repository.PageQuery{Limit: 5, Offset: 10}).
			Return(&repository.PageResult[model.Submission]{
				Items: []model.Submission{{ID: "1"}, {ID: "2"}},
				Total: 42,
			}, nil)

		res, err := svc.ListRecent(ctx, 5, 10)

		require.NoError(t, err)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, 42, res.Total)
	})

	t.Run("pagination boundary - zero limit uses default", func(t *testing.T) {
		mSubs := new(repoMocks.MockSubmissionRepository)
		svc := newTestService(nil, mSubs, nil)

		mSubs.On("List", mock.Anything, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.Submission]{Items: []model.Submission{}, Total: 0}, nil)

		_, err := svc.ListRecent(ctx, 0, -3)

		assert.NoError(t, err)
		mSubs.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		mSubs := new(repoMocks.MockSubmissionRepository)
		svc := newTestService(nil, mSubs, nil)

		mSubs.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))

		res, err := svc.ListRecent(ctx, 10, 0)

		assert.Error(t, err)
		assert.Nil(t, res)
	})
}
