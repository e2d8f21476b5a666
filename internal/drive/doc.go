// Package drive adapts the Google Drive v3 API to the operations the agent's
// Drive tools expose.
//
// Files are addressed by reference: a file ID, or a slash-separated path that
// resolves from the root of My Drive (or of a shared drive when a shared drive
// ID is given). A reference without a slash is tried as an ID first and as a
// top-level name second.
//
// Downloads come in two shapes. Download returns small files inline as
// base64; files above the inline limit only report their size and are then
// read with DownloadChunk, one HTTP Range request per chunk. The Client
// satisfies transfer.ChunkSource, so a full chunked download is
//
//	data, err := transfer.Fetch(ctx, client, fileID, transfer.FetchOptions{})
//
// API errors are classified: 404 wraps ErrNotFound and 401/403 wrap
// ErrPermissionDenied. Both mean the user has to pick or authorize the file
// again; nothing in this package retries.
package drive
