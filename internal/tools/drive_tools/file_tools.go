package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/driveagent/internal/drive"
	"github.com/teemow/driveagent/internal/instrumentation"
	"github.com/teemow/driveagent/internal/server"
	"github.com/teemow/driveagent/internal/tools/common"
	"github.com/teemow/driveagent/internal/transfer"
)

// registerFileTools registers the download, upload, move and rename tools.
func registerFileTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	downloadTool := mcp.NewTool(ToolDownloadFile,
		mcp.WithDescription(fmt.Sprintf(
			"Download a file from Google Drive. Files up to %d bytes come back base64-encoded; "+
				"larger files report requires_chunked_download and must be fetched with %s.",
			sc.Config().InlineDownloadLimit, ToolDownloadFileChunk)),
		mcp.WithReadOnlyHintAnnotation(true),
		accountOption(),
		mcp.WithString("file_path_or_id",
			mcp.Required(),
			mcp.Description("Path (like 'Reports/q3.pdf') or ID of the file"),
		),
		sharedDriveOption(),
	)
	s.AddTool(downloadTool, common.DriveTool(ToolDownloadFile, instrumentation.OperationDownload, sc, handleDownloadFile(sc)))

	chunkTool := mcp.NewTool(ToolDownloadFileChunk,
		mcp.WithDescription("Download one byte range of a Google Drive file, base64-encoded. "+
			"Start at byte 0 and continue from end_byte + 1 until is_final_chunk is true."),
		mcp.WithReadOnlyHintAnnotation(true),
		accountOption(),
		mcp.WithString("file_path_or_id",
			mcp.Required(),
			mcp.Description("Path or ID of the file"),
		),
		mcp.WithNumber("start_byte",
			mcp.Required(),
			mcp.Description("Offset of the first byte to read"),
		),
		mcp.WithNumber("chunk_size",
			mcp.Description(fmt.Sprintf("Number of bytes to read (default and max: %d)", transfer.MaxChunkSize)),
		),
		sharedDriveOption(),
	)
	s.AddTool(chunkTool, common.DriveTool(ToolDownloadFileChunk, instrumentation.OperationDownloadChunk, sc, handleDownloadFileChunk(sc)))

	uploadTool := mcp.NewTool(ToolUploadFile,
		mcp.WithDescription(fmt.Sprintf(
			"Upload a file to Google Drive from a public URL (max %d bytes)", sc.Config().UploadLimit)),
		accountOption(),
		mcp.WithString("file_name",
			mcp.Required(),
			mcp.Description("Name of the new file"),
		),
		mcp.WithString("source_url",
			mcp.Required(),
			mcp.Description("http(s) URL to fetch the content from"),
		),
		mcp.WithString("destination_folder_path_or_id",
			mcp.Description("Folder to upload into (default: My Drive root)"),
		),
		mcp.WithString("mime_type",
			mcp.Description("MIME type of the file (default: taken from the source)"),
		),
		sharedDriveOption(),
	)
	s.AddTool(uploadTool, common.DriveTool(ToolUploadFile, instrumentation.OperationUpload, sc, handleUploadFile(sc)))

	moveTool := mcp.NewTool(ToolMoveFile,
		mcp.WithDescription("Move a file to another folder, optionally renaming it"),
		mcp.WithDestructiveHintAnnotation(false),
		accountOption(),
		mcp.WithString("source_file_path_or_id",
			mcp.Required(),
			mcp.Description("Path or ID of the file to move"),
		),
		mcp.WithString("destination_folder_path_or_id",
			mcp.Required(),
			mcp.Description("Path or ID of the destination folder"),
		),
		mcp.WithString("new_filename",
			mcp.Description("New name for the file"),
		),
		sharedDriveOption(),
	)
	s.AddTool(moveTool, common.DriveTool(ToolMoveFile, instrumentation.OperationMove, sc, handleMoveFile(sc)))

	renameTool := mcp.NewTool(ToolRenameFile,
		mcp.WithDescription("Rename a file or folder in Google Drive"),
		mcp.WithDestructiveHintAnnotation(false),
		accountOption(),
		mcp.WithString("file_path_or_id",
			mcp.Required(),
			mcp.Description("Path or ID of the file"),
		),
		mcp.WithString("new_filename",
			mcp.Required(),
			mcp.Description("New name for the file"),
		),
		sharedDriveOption(),
	)
	s.AddTool(renameTool, common.DriveTool(ToolRenameFile, instrumentation.OperationRename, sc, handleRenameFile(sc)))
}

func handleDownloadFile(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		ref, err := common.RequiredStringArg(args, "file_path_or_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := client.Download(ctx, ref, common.StringArg(args, "shared_drive_id"))
		if err != nil {
			return errorResult("download file", err), nil
		}
		if result.RequiresChunkedDownload {
			size := "of unknown size"
			if result.Size > 0 {
				size = fmt.Sprintf("%d bytes", result.Size)
			}
			return jsonResult(fmt.Sprintf(
				"%s is %s, too large to return at once. Fetch it with %s starting at start_byte 0 until is_final_chunk is true.",
				result.Name, size, ToolDownloadFileChunk), result)
		}
		return jsonResult("", result)
	}
}

func handleDownloadFileChunk(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		ref, err := common.RequiredStringArg(args, "file_path_or_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if _, ok := args["start_byte"]; !ok {
			return mcp.NewToolResultError("start_byte is required"), nil
		}
		startByte, err := common.Int64Arg(args, "start_byte", 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		chunkSize, err := common.Int64Arg(args, "chunk_size", transfer.MaxChunkSize)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := transfer.ValidateChunkSize(chunkSize); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		chunk, err := client.DownloadChunkIn(ctx, ref, common.StringArg(args, "shared_drive_id"), startByte, chunkSize)
		if err != nil {
			return errorResult("download chunk", err), nil
		}
		sc.Metrics().RecordTransferChunk(ctx, chunk.Len())

		return jsonResult("", chunk)
	}
}

func handleUploadFile(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		name, err := common.RequiredStringArg(args, "file_name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sourceURL, err := common.RequiredStringArg(args, "source_url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		file, err := client.UploadFromURL(ctx, drive.UploadOptions{
			FileName:       name,
			SourceURL:      sourceURL,
			DestinationRef: common.StringArg(args, "destination_folder_path_or_id"),
			SharedDriveID:  common.StringArg(args, "shared_drive_id"),
			MimeType:       common.StringArg(args, "mime_type"),
		})
		if err != nil {
			return errorResult("upload file", err), nil
		}
		return jsonResult("File uploaded successfully:", file)
	}
}

func handleMoveFile(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		source, err := common.RequiredStringArg(args, "source_file_path_or_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		destination, err := common.RequiredStringArg(args, "destination_folder_path_or_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		file, err := client.Move(ctx, drive.MoveOptions{
			SourceRef:      source,
			DestinationRef: destination,
			NewName:        common.StringArg(args, "new_filename"),
			SharedDriveID:  common.StringArg(args, "shared_drive_id"),
		})
		if err != nil {
			return errorResult("move file", err), nil
		}
		return jsonResult("File moved successfully:", file)
	}
}

func handleRenameFile(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		ref, err := common.RequiredStringArg(args, "file_path_or_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		newName, err := common.RequiredStringArg(args, "new_filename")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := getDriveClient(sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		file, err := client.Rename(ctx, ref, newName, common.StringArg(args, "shared_drive_id"))
		if err != nil {
			return errorResult("rename file", err), nil
		}
		return jsonResult("File renamed successfully:", file)
	}
}
