package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"projectdrop/internal/config"
)

const folderMimeType = "application/vnd.google-apps.folder"

// driveStorage implements the Storage interface on Google Drive using a
// service account with the file-scoped OAuth scope.
type driveStorage struct {
	svc  *drive.Service
	root string
}

// NewDrive creates the Google Drive storage client. Credentials come from
// DRIVE_CREDENTIALS_JSON or DRIVE_CREDENTIALS_FILE; the optional root folder
// id scopes every top-level folder lookup.
func NewDrive(ctx context.Context, cfg config.DriveConfig) (Storage, error) {
	data := []byte(cfg.CredentialsJSON)
	if len(data) == 0 {
		if cfg.CredentialsFile == "" {
			return nil, fmt.Errorf("drive credentials are required")
		}
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read drive credentials: %w", err)
		}
		data = b
	}

	creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}

	// Trace outgoing Drive calls; the oauth2 transport picks up the base
	// client from the context.
	base := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, creds.TokenSource)

	svc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &driveStorage{svc: svc, root: cfg.RootFolderID}, nil
}

// escapeQueryTerm escapes a value for embedding in a Drive search query.
func escapeQueryTerm(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func (d *driveStorage) parentOrRoot(parentID string) string {
	if parentID == "" {
		return d.root
	}
	return parentID
}

// FindFolder searches for a folder by exact name within the parent scope.
func (d *driveStorage) FindFolder(ctx context.Context, name, parentID string) (string, bool, error) {
	q := fmt.Sprintf("name='%s' and mimeType='%s'", escapeQueryTerm(name), folderMimeType)
	if p := d.parentOrRoot(parentID); p != "" {
		q += fmt.Sprintf(" and '%s' in parents", p)
	}

	list, err := d.svc.Files.List().
		Context(ctx).
		Q(q).
		Spaces("drive").
		Fields("files(id, name)").
		PageSize(1).
		Do()
	if err != nil {
		return "", false, fmt.Errorf("search folder %q: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", false, nil
	}
	return list.Files[0].Id, true, nil
}

// CreateFolder creates a new folder under the given parent.
func (d *driveStorage) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}
	if p := d.parentOrRoot(parentID); p != "" {
		meta.Parents = []string{p}
	}

	folder, err := d.svc.Files.Create(meta).Context(ctx).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return folder.Id, nil
}

// UploadFile streams the content into a new file under folderID.
func (d *driveStorage) UploadFile(ctx context.Context, name, folderID string, r io.Reader, size int64, contentType string) (FileInfo, error) {
	meta := &drive.File{
		Name:    name,
		Parents: []string{folderID},
	}

	f, err := d.svc.Files.Create(meta).
		Context(ctx).
		Media(r, googleapi.ContentType(contentType)).
		Fields("id, webViewLink").
		Do()
	if err != nil {
		return FileInfo{}, fmt.Errorf("upload file %q: %w", name, err)
	}
	return FileInfo{ID: f.Id, Name: name, Size: size}, nil
}

// ShareWithLink grants anyone-with-link read access and returns the
// web view link.
func (d *driveStorage) ShareWithLink(ctx context.Context, fileID string) (string, error) {
	perm := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}
	if _, err := d.svc.Permissions.Create(fileID, perm).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("grant read permission: %w", err)
	}

	f, err := d.svc.Files.Get(fileID).Context(ctx).Fields("webViewLink").Do()
	if err != nil {
		return "", fmt.Errorf("fetch view link: %w", err)
	}
	return f.WebViewLink, nil
}
