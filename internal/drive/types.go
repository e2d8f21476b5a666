package drive

import "time"

// FileInfo represents metadata about a file or folder in Google Drive
type FileInfo struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Name is the name of the file
	Name string `json:"name"`

	// MimeType is the MIME type of the file
	MimeType string `json:"mimeType"`

	// Size is the size of the file in bytes (not populated for folders)
	Size int64 `json:"size,omitempty"`

	// ModifiedTime is when the file was last modified
	ModifiedTime time.Time `json:"modifiedTime"`

	// WebViewLink is a link for opening the file in a relevant Google editor or viewer
	WebViewLink string `json:"webViewLink,omitempty"`

	// Parents are the IDs of the parent folders
	Parents []string `json:"parents,omitempty"`

	// DriveID is the shared drive the file lives in, empty for My Drive
	DriveID string `json:"driveId,omitempty"`

	// Owners are the owners of the file
	Owners []User `json:"owners,omitempty"`

	// Shared indicates whether the file is shared
	Shared bool `json:"shared"`
}

// IsFolder reports whether the file is a folder.
func (f *FileInfo) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// User represents a Google Drive user (owner, permission holder, etc.)
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	PhotoLink    string `json:"photoLink,omitempty"`
}

// SharedDrive is a shared drive the user can access.
type SharedDrive struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Profile is the result of WhoAmI.
type Profile struct {
	User         User          `json:"user"`
	StorageLimit int64         `json:"storageLimit,omitempty"`
	StorageUsage int64         `json:"storageUsage"`
	UsageInDrive int64         `json:"usageInDrive"`
	SharedDrives []SharedDrive `json:"sharedDrives"`
}

// SearchOptions narrows a search.
type SearchOptions struct {
	// Query holds the user's search words; the Drive query is built from them.
	Query string

	// Limit caps the number of results (default 50, max 1000).
	Limit int

	// FileTypes restricts results to categories such as "document", "pdf" or "image".
	FileTypes []string

	// FolderRef restricts results to direct children of a folder path or ID.
	FolderRef string

	// IncludeSharedDrives searches all drives instead of My Drive only.
	IncludeSharedDrives bool

	// SharedDriveID restricts the search to one shared drive.
	SharedDriveID string
}

// TreeNode is a file with its children in a FileTree.
type TreeNode struct {
	*FileInfo
	Children []*TreeNode `json:"children,omitempty"`
}

// TreeOptions controls FileTree.
type TreeOptions struct {
	// IncludeSharedDrives adds one root per shared drive.
	IncludeSharedDrives bool

	// Limit caps the number of files listed (0 = no cap).
	Limit int
}

// UploadOptions describes an upload from a public URL.
type UploadOptions struct {
	FileName       string
	SourceURL      string
	DestinationRef string
	SharedDriveID  string
	MimeType       string
}

// MoveOptions describes a move, optionally renaming on the way.
type MoveOptions struct {
	SourceRef      string
	DestinationRef string
	NewName        string
	SharedDriveID  string
}

// ShareOptions describes a share with one or more users.
type ShareOptions struct {
	// Emails are the recipients; each gets its own permission.
	Emails []string

	// Role is one of reader, commenter, writer, fileOrganizer, organizer, owner.
	Role string

	SendNotification bool
	Message          string
	SharedDriveID    string
}

// ShareResult reports the outcome for one recipient.
type ShareResult struct {
	Email        string `json:"email"`
	PermissionID string `json:"permissionId,omitempty"`
	Role         string `json:"role"`
	Updated      bool   `json:"updated"`
	Error        string `json:"error,omitempty"`
}

// DownloadResult is the answer of Download. Small files come back inline;
// larger ones only report their size and must be fetched chunk by chunk.
type DownloadResult struct {
	FileID                  string `json:"file_id"`
	Name                    string `json:"name"`
	MimeType                string `json:"mime_type"`
	// Size is 0 when unknown; chunked downloads then run until is_final_chunk.
	Size                    int64  `json:"size"`
	RequiresChunkedDownload bool   `json:"requires_chunked_download"`
	Base64                  string `json:"base64,omitempty"`
}
