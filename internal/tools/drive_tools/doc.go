// Package drive_tools exposes Google Drive to MCP clients as the GoogleDrive_*
// tools.
//
// Available tools:
//   - GoogleDrive_WhoAmI: profile, storage usage and shared drives
//   - GoogleDrive_SearchFiles: keyword search with type and folder filters
//   - GoogleDrive_GetFileTreeStructure: folder tree of My Drive and shared drives
//   - GoogleDrive_DownloadFile: inline download of small files
//   - GoogleDrive_DownloadFileChunk: byte range download of large files
//   - GoogleDrive_CreateFolder: create a folder
//   - GoogleDrive_UploadFile: upload from a public URL
//   - GoogleDrive_MoveFile: move and optionally rename
//   - GoogleDrive_RenameFile: rename
//   - GoogleDrive_ShareFile: share with several recipients at once
//
// Files are addressed by path ('Reports/2024/q3.pdf') or by ID. Every tool
// takes an optional 'account' parameter and runs behind the confirmation gate
// of the server context; a denied call returns an error result without
// touching Drive.
//
// Example tool usage:
//
//	GoogleDrive_DownloadFileChunk({
//	  file_path_or_id: "Videos/all-hands.mp4",
//	  start_byte: 5242880,
//	  chunk_size: 5242880
//	})
package drive_tools
