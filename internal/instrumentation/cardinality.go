package instrumentation

import "strings"

// ExtractUserDomain reduces an email-shaped user ID to its domain so it can
// label logs without exposing the address.
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("agent-7")           // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}

// Drive operation labels for google_api_operations_total.
const (
	OperationWhoAmI        = "whoami"
	OperationSearch        = "search"
	OperationFileTree      = "file_tree"
	OperationCreateFolder  = "create_folder"
	OperationUpload        = "upload"
	OperationMove          = "move"
	OperationRename        = "rename"
	OperationShare         = "share"
	OperationDownload      = "download"
	OperationDownloadChunk = "download_chunk"
)
