package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/driveagent/internal/confirm"
	"github.com/teemow/driveagent/internal/server"
)

// ToolHandler is the mcp-go tool handler signature.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// GatedToolHandler asks the confirmation gate before running handler. A
// denied or failed confirmation returns a tool error result and handler is
// never called.
func GatedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		gate := sc.Gate()
		err := gate.Authorize(ctx, confirm.NewRequest(toolName, request.GetArguments()))

		var denied *confirm.DeniedError
		switch {
		case err == nil:
			if gate.RequiresConfirmation(toolName) {
				setDecision(ctx, confirm.DecisionApproved)
			} else {
				setDecision(ctx, confirm.DecisionNotRequired)
			}
			return handler(ctx, request)
		case errors.As(err, &denied):
			setDecision(ctx, confirm.DecisionDenied)
			return mcp.NewToolResultError(fmt.Sprintf("%s was not executed: %v. Do not retry unless the user asks for it.", toolName, err)), nil
		default:
			setDecision(ctx, confirm.DecisionError)
			return mcp.NewToolResultError(fmt.Sprintf("%s was not executed: %v", toolName, err)), nil
		}
	}
}

// DriveTool wraps handler with a Drive span, the confirmation gate and
// instrumentation, in that order from the inside out. Denied calls never
// start a Drive span.
func DriveTool(toolName, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return InstrumentedToolHandler(toolName, operation, sc,
		GatedToolHandler(toolName, sc, driveSpanHandler(operation, handler)))
}
