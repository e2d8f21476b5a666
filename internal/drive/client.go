package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// workspacePrefix marks Google Docs, Sheets, Slides and friends.
	workspacePrefix = "application/vnd.google-apps."

	// DefaultInlineDownloadLimit is the largest file Download returns inline.
	DefaultInlineDownloadLimit int64 = 5 * 1024 * 1024

	// DefaultUploadLimit is the largest source UploadFromURL accepts.
	DefaultUploadLimit int64 = 25 * 1024 * 1024

	fileFields = "id, name, mimeType, size, modifiedTime, webViewLink, parents, driveId, owners, shared"
)

// Options configures a Client.
type Options struct {
	// Account is the name this client is associated with.
	Account string

	// HTTPClient carries the OAuth credentials for the Drive API.
	HTTPClient *http.Client

	// Endpoint overrides the Drive API base URL (tests).
	Endpoint string

	// SourceClient fetches upload sources. Defaults to a client with a 60s timeout.
	SourceClient *http.Client

	InlineDownloadLimit int64
	UploadLimit         int64
}

// Client wraps the Google Drive API service
type Client struct {
	service      *drive.Service
	account      string
	sourceClient *http.Client
	inlineLimit  int64
	uploadLimit  int64
}

// NewClient creates a Drive client from an authenticated HTTP client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("an authenticated HTTP client is required")
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(opts.HTTPClient)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	driveService, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	c := &Client{
		service:      driveService,
		account:      opts.Account,
		sourceClient: opts.SourceClient,
		inlineLimit:  opts.InlineDownloadLimit,
		uploadLimit:  opts.UploadLimit,
	}
	if c.account == "" {
		c.account = "default"
	}
	if c.sourceClient == nil {
		c.sourceClient = &http.Client{Timeout: 60 * time.Second}
	}
	if c.inlineLimit <= 0 {
		c.inlineLimit = DefaultInlineDownloadLimit
	}
	if c.uploadLimit <= 0 {
		c.uploadLimit = DefaultUploadLimit
	}
	return c, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// InlineDownloadLimit returns the largest file size Download returns inline.
func (c *Client) InlineDownloadLimit() int64 {
	return c.inlineLimit
}

// Resolve turns a file reference into file metadata. A reference is either a
// file ID or a slash-separated path. Paths start at the root of My Drive, or
// at the shared drive when sharedDriveID is set.
func (c *Client) Resolve(ctx context.Context, ref, sharedDriveID string) (*FileInfo, error) {
	f, err := c.resolve(ctx, ref, sharedDriveID)
	if err != nil {
		return nil, err
	}
	return convertToFileInfo(f), nil
}

func (c *Client) resolve(ctx context.Context, ref, sharedDriveID string) (*drive.File, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("file path or ID is required")
	}

	if !strings.Contains(ref, "/") {
		f, err := c.getFile(ctx, ref)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		// not an ID the user can see; try it as a name below the root
	}

	return c.resolvePath(ctx, ref, sharedDriveID)
}

func (c *Client) getFile(ctx context.Context, fileID string) (*drive.File, error) {
	f, err := c.service.Files.Get(fileID).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, classify(fmt.Sprintf("get file %s", fileID), err)
	}
	return f, nil
}

// resolvePath walks the path one segment at a time from the root.
func (c *Client) resolvePath(ctx context.Context, path, sharedDriveID string) (*drive.File, error) {
	parentID := "root"
	if sharedDriveID != "" {
		parentID = sharedDriveID
	}

	segments := splitPath(path)
	if len(segments) == 0 {
		return c.getFile(ctx, parentID)
	}

	var current *drive.File
	for _, name := range segments {
		call := c.service.Files.List().
			Context(ctx).
			Q(fmt.Sprintf("name = %s and %s in parents and trashed = false", quote(name), quote(parentID))).
			Fields("files(" + fileFields + ")").
			PageSize(2).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true)
		if sharedDriveID != "" {
			call = call.Corpora("drive").DriveId(sharedDriveID)
		}

		list, err := call.Do()
		if err != nil {
			return nil, classify(fmt.Sprintf("resolve %q", path), err)
		}
		if len(list.Files) == 0 {
			return nil, fmt.Errorf("resolve %q: no item named %q: %w", path, name, ErrNotFound)
		}
		current = list.Files[0]
		parentID = current.Id
	}
	return current, nil
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// quote renders s as a Drive query string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// resolveFolder resolves ref to a folder ID. An empty ref is the root of My
// Drive or of the shared drive.
func (c *Client) resolveFolder(ctx context.Context, ref, sharedDriveID string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		if sharedDriveID != "" {
			return sharedDriveID, nil
		}
		return "root", nil
	}
	f, err := c.resolve(ctx, ref, sharedDriveID)
	if err != nil {
		return "", err
	}
	if f.MimeType != FolderMimeType {
		return "", fmt.Errorf("%q is not a folder", ref)
	}
	return f.Id, nil
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	fileInfo := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		WebViewLink: f.WebViewLink,
		Parents:     f.Parents,
		DriveID:     f.DriveId,
		Shared:      f.Shared,
	}

	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			fileInfo.ModifiedTime = t
		}
	}

	for _, owner := range f.Owners {
		fileInfo.Owners = append(fileInfo.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
			PhotoLink:    owner.PhotoLink,
		})
	}

	return fileInfo
}
