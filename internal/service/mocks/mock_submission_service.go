package mocks

import (
	"context"

	"projectdrop/internal/model"
	"projectdrop/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Term() service.Term {
	args := m.Called()
	return args.Get(0).(service.Term)
}

func (m *MockSubmissionService) Classes(ctx context.Context) (*service.ClassCatalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ClassCatalog), args.Error(1)
}

func (m *MockSubmissionService) Submit(ctx context.Context, in service.SubmissionInput) (*model.Submission, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

func (m *MockSubmissionService) ListRecent(ctx context.Context, limit, offset int) (*service.SubmissionListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmissionListResult), args.Error(1)
}
