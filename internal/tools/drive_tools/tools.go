package drive_tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/driveagent/internal/drive"
	"github.com/teemow/driveagent/internal/server"
	"github.com/teemow/driveagent/internal/tools/common"
)

// Tool names. They match config.DriveTools.
const (
	ToolWhoAmI               = "GoogleDrive_WhoAmI"
	ToolSearchFiles          = "GoogleDrive_SearchFiles"
	ToolGetFileTreeStructure = "GoogleDrive_GetFileTreeStructure"
	ToolDownloadFile         = "GoogleDrive_DownloadFile"
	ToolDownloadFileChunk    = "GoogleDrive_DownloadFileChunk"
	ToolCreateFolder         = "GoogleDrive_CreateFolder"
	ToolUploadFile           = "GoogleDrive_UploadFile"
	ToolMoveFile             = "GoogleDrive_MoveFile"
	ToolRenameFile           = "GoogleDrive_RenameFile"
	ToolShareFile            = "GoogleDrive_ShareFile"
)

const recoveryHint = "The file could not be accessed. Ask the user to open or select it in Google Drive " +
	"(or grant this agent access to it), then retry the same call with the same arguments."

// accountOption is the optional account parameter shared by every tool.
func accountOption() mcp.ToolOption {
	return mcp.WithString("account",
		mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
	)
}

func sharedDriveOption() mcp.ToolOption {
	return mcp.WithString("shared_drive_id",
		mcp.Description("ID of the shared drive that holds the file, when it is not in My Drive"),
	)
}

// getDriveClient returns the Drive client of the account named in args.
func getDriveClient(sc *server.ServerContext, args map[string]any) (*drive.Client, error) {
	return sc.DriveClientForAccount(common.GetAccountFromArgs(args))
}

// errorResult turns a Drive error into a tool error. Not-found and permission
// errors carry a hint that lets the model ask the user to fix access.
func errorResult(action string, err error) *mcp.CallToolResult {
	msg := fmt.Sprintf("Failed to %s: %v", action, err)
	if drive.IsRecoverable(err) {
		msg += "\n" + recoveryHint
	}
	return mcp.NewToolResultError(msg)
}

// jsonResult renders v as indented JSON after a short headline.
func jsonResult(headline string, v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	if headline == "" {
		return mcp.NewToolResultText(string(data)), nil
	}
	return mcp.NewToolResultText(headline + "\n" + string(data)), nil
}

// RegisterDriveTools registers all Google Drive tools with the MCP server.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil || sc == nil {
		return errors.New("server and server context are required")
	}

	registerSearchTools(s, sc)
	registerFileTools(s, sc)
	registerFolderTools(s, sc)
	registerShareTools(s, sc)

	return nil
}
