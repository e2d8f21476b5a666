package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/driveagent/internal/drive"
	"github.com/teemow/driveagent/internal/instrumentation"
	"github.com/teemow/driveagent/internal/server"
	"github.com/teemow/driveagent/internal/tools/batch"
	"github.com/teemow/driveagent/internal/tools/common"
)

func registerShareTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	shareTool := mcp.NewTool(ToolShareFile,
		mcp.WithDescription("Share a Google Drive file with one or more people. "+
			"Existing permissions of a recipient are updated to the new role."),
		accountOption(),
		mcp.WithString("file_path_or_id",
			mcp.Required(),
			mcp.Description("Path or ID of the file to share"),
		),
		mcp.WithArray("email_addresses",
			mcp.Required(),
			mcp.Description("Email addresses to share with (array, or a comma-separated string)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("role",
			mcp.Description("Role to grant: reader, commenter, writer, fileOrganizer, organizer or owner (default: reader)"),
		),
		mcp.WithBoolean("send_notification_email",
			mcp.Description("Send the recipients a notification email (default: true)"),
		),
		mcp.WithString("message",
			mcp.Description("Message to include in the notification email"),
		),
		sharedDriveOption(),
	)
	s.AddTool(shareTool, common.DriveTool(ToolShareFile, instrumentation.OperationShare, sc, handleShareFile(sc)))
}

func handleShareFile(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		ref, err := common.RequiredStringArg(args, "file_path_or_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		emails, err := batch.ParseStringOrArray(args["email_addresses"], "email_addresses")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		role := common.StringArg(args, "role")
		if role == "" {
			role = "reader"
		}

		client, err := getDriveClient(sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		shared, err := client.Share(ctx, ref, drive.ShareOptions{
			Emails:           emails,
			Role:             role,
			SendNotification: common.BoolArg(args, "send_notification_email", true),
			Message:          common.StringArg(args, "message"),
			SharedDriveID:    common.StringArg(args, "shared_drive_id"),
		})
		if err != nil {
			return errorResult("share file", err), nil
		}

		results := make([]batch.Result, 0, len(shared))
		for _, r := range shared {
			switch {
			case r.Error != "":
				results = append(results, batch.NewErrorResult(r.Email, r.Error))
			case r.Updated:
				results = append(results, batch.NewSuccessResult(r.Email, fmt.Sprintf("permission updated to %s", r.Role)))
			default:
				results = append(results, batch.NewSuccessResult(r.Email, fmt.Sprintf("shared as %s", r.Role)))
			}
		}

		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}
}
