package drive

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/teemow/driveagent/internal/transfer"
)

// Download returns a file inline when it fits the inline limit. Larger files
// come back with RequiresChunkedDownload set and no content.
func (c *Client) Download(ctx context.Context, ref, sharedDriveID string) (*DownloadResult, error) {
	f, err := c.resolve(ctx, ref, sharedDriveID)
	if err != nil {
		return nil, err
	}
	if f.MimeType == FolderMimeType || strings.HasPrefix(f.MimeType, workspacePrefix) {
		return nil, fmt.Errorf("cannot download %s (%s): %w", f.Name, f.MimeType, ErrUnsupportedFile)
	}

	result := &DownloadResult{
		FileID:   f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		Size:     f.Size,
	}
	if f.Size > c.inlineLimit {
		result.RequiresChunkedDownload = true
		return result, nil
	}

	resp, err := c.service.Files.Get(f.Id).
		Context(ctx).
		SupportsAllDrives(true).
		Download()
	if err != nil {
		return nil, classify(fmt.Sprintf("download file %s", f.Id), err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(io.LimitReader(resp.Body, c.inlineLimit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", f.Id, err)
	}
	if int64(len(content)) > c.inlineLimit {
		// metadata understated the size and the real one is unknown until the
		// final chunk arrives
		result.Size = 0
		result.RequiresChunkedDownload = true
		return result, nil
	}

	result.Size = int64(len(content))
	result.Base64 = base64.StdEncoding.EncodeToString(content)
	return result, nil
}

// DownloadChunk reads one byte range of a file. It satisfies transfer.ChunkSource.
func (c *Client) DownloadChunk(ctx context.Context, fileRef string, startByte, chunkSize int64) (transfer.Chunk, error) {
	return c.DownloadChunkIn(ctx, fileRef, "", startByte, chunkSize)
}

// DownloadChunkIn is DownloadChunk for references inside a shared drive.
//
// The server decides where the chunk ends; the chunk is final once its end
// byte reaches the file size reported by Content-Range.
func (c *Client) DownloadChunkIn(ctx context.Context, fileRef, sharedDriveID string, startByte, chunkSize int64) (transfer.Chunk, error) {
	if err := transfer.ValidateChunkSize(chunkSize); err != nil {
		return transfer.Chunk{}, err
	}
	if startByte < 0 {
		return transfer.Chunk{}, fmt.Errorf("start byte %d must not be negative: %w", startByte, transfer.ErrInvalidChunk)
	}

	f, err := c.resolve(ctx, fileRef, sharedDriveID)
	if err != nil {
		return transfer.Chunk{}, err
	}
	fileID := f.Id

	call := c.service.Files.Get(fileID).Context(ctx).SupportsAllDrives(true)
	call.Header().Set("Range", fmt.Sprintf("bytes=%d-%d", startByte, startByte+chunkSize-1))

	resp, err := call.Download()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusRequestedRangeNotSatisfiable {
			return transfer.Chunk{}, fmt.Errorf("start byte %d is past the end of %s: %w", startByte, fileID, transfer.ErrInvalidChunk)
		}
		return transfer.Chunk{}, classify(fmt.Sprintf("download chunk of %s", fileID), err)
	}
	defer resp.Body.Close()

	var total int64 = -1
	switch resp.StatusCode {
	case http.StatusPartialContent:
		rangeStart, _, size, err := parseContentRange(resp.Header.Get("Content-Range"))
		if err != nil {
			return transfer.Chunk{}, err
		}
		if rangeStart != startByte {
			return transfer.Chunk{}, fmt.Errorf("server returned range starting at %d, asked for %d: %w", rangeStart, startByte, transfer.ErrOutOfOrderChunk)
		}
		total = size
	default:
		// server ignored the Range header and sent the whole file
		if _, err := io.CopyN(io.Discard, resp.Body, startByte); err != nil {
			return transfer.Chunk{}, fmt.Errorf("start byte %d is past the end of %s: %w", startByte, fileID, transfer.ErrInvalidChunk)
		}
		if resp.ContentLength >= 0 {
			total = resp.ContentLength
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, chunkSize))
	if err != nil {
		return transfer.Chunk{}, fmt.Errorf("failed to read chunk of %s: %w", fileID, err)
	}
	if len(data) == 0 {
		return transfer.Chunk{}, fmt.Errorf("empty chunk at byte %d of %s: %w", startByte, fileID, transfer.ErrInvalidChunk)
	}

	end := startByte + int64(len(data)) - 1
	final := end+1 == total
	if total < 0 {
		final = int64(len(data)) < chunkSize
	}

	return transfer.Chunk{
		StartByte:    startByte,
		EndByte:      end,
		Payload:      base64.StdEncoding.EncodeToString(data),
		IsFinalChunk: final,
	}, nil
}

// parseContentRange parses "bytes start-end/size". An unknown size ("*") is returned as -1.
func parseContentRange(h string) (start, end, size int64, err error) {
	value, ok := strings.CutPrefix(strings.TrimSpace(h), "bytes ")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", h)
	}
	rng, sizeStr, ok := strings.Cut(value, "/")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", h)
	}
	startStr, endStr, ok := strings.Cut(rng, "-")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", h)
	}
	if start, err = strconv.ParseInt(startStr, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q: %w", h, err)
	}
	if end, err = strconv.ParseInt(endStr, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q: %w", h, err)
	}
	size = -1
	if sizeStr != "*" {
		if size, err = strconv.ParseInt(sizeStr, 10, 64); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid Content-Range %q: %w", h, err)
		}
	}
	return start, end, size, nil
}

// ChunkSource returns a transfer.ChunkSource that resolves paths inside the
// given shared drive. An empty sharedDriveID behaves like the Client itself.
func (c *Client) ChunkSource(sharedDriveID string) transfer.ChunkSource {
	if sharedDriveID == "" {
		return c
	}
	return sharedDriveSource{client: c, driveID: sharedDriveID}
}

type sharedDriveSource struct {
	client  *Client
	driveID string
}

func (s sharedDriveSource) DownloadChunk(ctx context.Context, fileRef string, startByte, chunkSize int64) (transfer.Chunk, error) {
	return s.client.DownloadChunkIn(ctx, fileRef, s.driveID, startByte, chunkSize)
}
