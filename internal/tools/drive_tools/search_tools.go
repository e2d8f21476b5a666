package drive_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/driveagent/internal/drive"
	"github.com/teemow/driveagent/internal/instrumentation"
	"github.com/teemow/driveagent/internal/server"
	"github.com/teemow/driveagent/internal/tools/batch"
	"github.com/teemow/driveagent/internal/tools/common"
)

func registerSearchTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	whoAmITool := mcp.NewTool(ToolWhoAmI,
		mcp.WithDescription("Get the Google Drive user's profile, storage usage and the shared drives they can access"),
		mcp.WithReadOnlyHintAnnotation(true),
		accountOption(),
	)
	s.AddTool(whoAmITool, common.DriveTool(ToolWhoAmI, instrumentation.OperationWhoAmI, sc, handleWhoAmI(sc)))

	searchTool := mcp.NewTool(ToolSearchFiles,
		mcp.WithDescription("Search Google Drive for files by keywords in their name or content"),
		mcp.WithReadOnlyHintAnnotation(true),
		accountOption(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Words to search for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of files to return (default: 50, max: 1000)"),
		),
		mcp.WithArray("file_types",
			mcp.Description("Restrict results to these file types: "+strings.Join(drive.FileTypes(), ", ")),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("folder_path_or_id",
			mcp.Description("Only return files directly inside this folder (path like 'Reports/2024' or folder ID)"),
		),
		mcp.WithBoolean("include_shared_drives",
			mcp.Description("Also search shared drives (default: false)"),
		),
		sharedDriveOption(),
	)
	s.AddTool(searchTool, common.DriveTool(ToolSearchFiles, instrumentation.OperationSearch, sc, handleSearchFiles(sc)))

	treeTool := mcp.NewTool(ToolGetFileTreeStructure,
		mcp.WithDescription("Get the folder and file tree of the user's Google Drive"),
		mcp.WithReadOnlyHintAnnotation(true),
		accountOption(),
		mcp.WithBoolean("include_shared_drives",
			mcp.Description("Add one tree per shared drive (default: false)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of files to list (default: no limit)"),
		),
	)
	s.AddTool(treeTool, common.DriveTool(ToolGetFileTreeStructure, instrumentation.OperationFileTree, sc, handleFileTree(sc)))
}

func handleWhoAmI(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := getDriveClient(sc, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		profile, err := client.WhoAmI(ctx)
		if err != nil {
			return errorResult("get profile", err), nil
		}
		return jsonResult("", profile)
	}
}

func handleSearchFiles(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		query, err := common.RequiredStringArg(args, "query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit, err := common.Int64Arg(args, "limit", 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var fileTypes []string
		if raw, ok := args["file_types"]; ok && raw != nil && raw != "" {
			fileTypes, err = batch.ParseStringOrArray(raw, "file_types")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}

		client, err := getDriveClient(sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		files, err := client.Search(ctx, drive.SearchOptions{
			Query:               query,
			Limit:               int(limit),
			FileTypes:           fileTypes,
			FolderRef:           common.StringArg(args, "folder_path_or_id"),
			IncludeSharedDrives: common.BoolArg(args, "include_shared_drives", false),
			SharedDriveID:       common.StringArg(args, "shared_drive_id"),
		})
		if err != nil {
			return errorResult("search files", err), nil
		}
		if len(files) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No files found matching %q.", query)), nil
		}
		return jsonResult(fmt.Sprintf("Found %d file(s):", len(files)), files)
	}
}

func handleFileTree(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		limit, err := common.Int64Arg(args, "limit", 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		roots, err := client.FileTree(ctx, drive.TreeOptions{
			IncludeSharedDrives: common.BoolArg(args, "include_shared_drives", false),
			Limit:               int(limit),
		})
		if err != nil {
			return errorResult("build file tree", err), nil
		}
		return jsonResult("", roots)
	}
}
