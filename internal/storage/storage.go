package storage

import (
	"context"
	"io"
)

// Package storage abstracts the cloud storage provider that holds uploaded
// project files. Folders are looked up by exact name within a parent scope
// and created lazily; files are shared via anyone-with-link read access.
// Implementations must rely on streaming I/O only, no local disk.

// FileInfo contains basic information about an uploaded file.
type FileInfo struct {
	ID   string
	Name string
	Size int64
}

// Storage is a reusable client interface for the storage provider.
// Implementations are safe for concurrent use; the handle is created once
// at startup and reused for the life of the process.
type Storage interface {
	// FindFolder searches for a folder with the exact name under parentID
	// (provider root when empty). found is false when no folder matches.
	FindFolder(ctx context.Context, name, parentID string) (id string, found bool, err error)

	// CreateFolder creates a new folder under parentID (provider root when
	// empty) and returns its id.
	CreateFolder(ctx context.Context, name, parentID string) (string, error)

	// UploadFile stores content under folderID with the given name.
	// Size should be the exact number of bytes; ContentType is the declared
	// MIME type of the content.
	UploadFile(ctx context.Context, name, folderID string, r io.Reader, size int64, contentType string) (FileInfo, error)

	// ShareWithLink grants read access to anyone holding the link and
	// returns the shareable view URL for the file.
	ShareWithLink(ctx context.Context, fileID string) (string, error)
}
