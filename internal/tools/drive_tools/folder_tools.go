package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/driveagent/internal/instrumentation"
	"github.com/teemow/driveagent/internal/server"
	"github.com/teemow/driveagent/internal/tools/common"
)

func registerFolderTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createFolderTool := mcp.NewTool(ToolCreateFolder,
		mcp.WithDescription("Create a folder in Google Drive"),
		accountOption(),
		mcp.WithString("folder_name",
			mcp.Required(),
			mcp.Description("Name of the new folder"),
		),
		mcp.WithString("parent_folder_path_or_id",
			mcp.Description("Path or ID of the parent folder (default: My Drive root)"),
		),
		sharedDriveOption(),
	)
	s.AddTool(createFolderTool, common.DriveTool(ToolCreateFolder, instrumentation.OperationCreateFolder, sc, handleCreateFolder(sc)))
}

func handleCreateFolder(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		name, err := common.RequiredStringArg(args, "folder_name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		folder, err := client.CreateFolder(ctx, name,
			common.StringArg(args, "parent_folder_path_or_id"),
			common.StringArg(args, "shared_drive_id"))
		if err != nil {
			return errorResult("create folder", err), nil
		}
		return jsonResult("Folder created successfully:", folder)
	}
}
