package mocks

import (
	"context"
	"io"

	"projectdrop/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) FindFolder(ctx context.Context, name, parentID string) (string, bool, error) {
	args := m.Called(ctx, name, parentID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStorage) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	args := m.Called(ctx, name, parentID)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) UploadFile(ctx context.Context, name, folderID string, r io.Reader, size int64, contentType string) (storage.FileInfo, error) {
	args := m.Called(ctx, name, folderID, r, size, contentType)
	return args.Get(0).(storage.FileInfo), args.Error(1)
}

func (m *MockStorage) ShareWithLink(ctx context.Context, fileID string) (string, error) {
	args := m.Called(ctx, fileID)
	return args.String(0), args.Error(1)
}
