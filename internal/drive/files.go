package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// CreateFolder creates a folder below parentRef (a path or ID; empty for the root).
func (c *Client) CreateFolder(ctx context.Context, name, parentRef, sharedDriveID string) (*FileInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("folder name is required")
	}

	parentID, err := c.resolveFolder(ctx, parentRef, sharedDriveID)
	if err != nil {
		return nil, err
	}

	folder := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
		Parents:  []string{parentID},
	}

	created, err := c.service.Files.Create(folder).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, classify("create folder", err)
	}

	return convertToFileInfo(created), nil
}

// UploadFromURL downloads a public URL and stores it in Drive. Sources larger
// than the upload limit and Google Workspace documents are refused.
func (c *Client) UploadFromURL(ctx context.Context, opts UploadOptions) (*FileInfo, error) {
	u, err := url.Parse(opts.SourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("source URL must be an absolute http(s) URL, got %q", opts.SourceURL)
	}

	parentID, err := c.resolveFolder(ctx, opts.DestinationRef, opts.SharedDriveID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build source request: %w", err)
	}
	resp, err := c.sourceClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", u.Redacted(), resp.Status)
	}
	if resp.ContentLength > c.uploadLimit {
		return nil, fmt.Errorf("source is %d bytes, limit is %d: %w", resp.ContentLength, c.uploadLimit, ErrFileTooLarge)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, c.uploadLimit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u.Redacted(), err)
	}
	if int64(len(content)) > c.uploadLimit {
		return nil, fmt.Errorf("source exceeds %d bytes: %w", c.uploadLimit, ErrFileTooLarge)
	}

	mimeType := opts.MimeType
	if mimeType == "" {
		if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
			mimeType = mt
		}
	}
	if strings.HasPrefix(mimeType, workspacePrefix) {
		return nil, fmt.Errorf("cannot upload %s: %w", mimeType, ErrUnsupportedFile)
	}

	name := opts.FileName
	if name == "" {
		name = path.Base(u.Path)
	}
	if name == "" || name == "/" || name == "." {
		return nil, fmt.Errorf("file name is required")
	}

	file := &drive.File{
		Name:     name,
		MimeType: mimeType,
		Parents:  []string{parentID},
	}

	var mediaOpts []googleapi.MediaOption
	if mimeType != "" {
		mediaOpts = append(mediaOpts, googleapi.ContentType(mimeType))
	}

	created, err := c.service.Files.Create(file).
		Context(ctx).
		SupportsAllDrives(true).
		Media(bytes.NewReader(content), mediaOpts...).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, classify("upload file", err)
	}

	return convertToFileInfo(created), nil
}

// Move moves a file into another folder, renaming it when NewName is set.
func (c *Client) Move(ctx context.Context, opts MoveOptions) (*FileInfo, error) {
	src, err := c.resolve(ctx, opts.SourceRef, opts.SharedDriveID)
	if err != nil {
		return nil, err
	}
	destID, err := c.resolveFolder(ctx, opts.DestinationRef, opts.SharedDriveID)
	if err != nil {
		return nil, err
	}

	update := &drive.File{}
	if opts.NewName != "" {
		update.Name = opts.NewName
	}

	call := c.service.Files.Update(src.Id, update).
		Context(ctx).
		SupportsAllDrives(true).
		AddParents(destID).
		Fields(fileFields)
	if len(src.Parents) > 0 {
		call = call.RemoveParents(strings.Join(src.Parents, ","))
	}

	moved, err := call.Do()
	if err != nil {
		return nil, classify("move file", err)
	}
	return convertToFileInfo(moved), nil
}

// Rename changes the name of a file.
func (c *Client) Rename(ctx context.Context, ref, newName, sharedDriveID string) (*FileInfo, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, fmt.Errorf("new file name is required")
	}

	f, err := c.resolve(ctx, ref, sharedDriveID)
	if err != nil {
		return nil, err
	}

	renamed, err := c.service.Files.Update(f.Id, &drive.File{Name: newName}).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, classify("rename file", err)
	}
	return convertToFileInfo(renamed), nil
}
