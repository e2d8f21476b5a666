package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/driveagent/internal/confirm"
	"github.com/teemow/driveagent/internal/instrumentation"
	"github.com/teemow/driveagent/internal/server"
)

type invocationKey struct{}

// setDecision attaches the confirmation outcome to the invocation record
// carried by ctx, if any.
func setDecision(ctx context.Context, decision string) {
	if ti, ok := ctx.Value(invocationKey{}).(*instrumentation.ToolInvocation); ok {
		ti.WithDecision(decision)
	}
}

// InstrumentedToolHandler wraps a tool handler with a span, tool and Drive
// operation metrics, and an audit log line.
//
//	s.AddTool(tool, common.InstrumentedToolHandler(name, instrumentation.OperationSearch, sc, handler))
func InstrumentedToolHandler(toolName, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		args := request.GetArguments()
		account := GetAccountFromArgs(args)

		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithUser(sc.Config().UserID).
			WithAccount(account).
			WithOperation(operation)
		ctx = context.WithValue(ctx, invocationKey{}, invocation)

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		failed := err != nil || (result != nil && result.IsError)
		invocation.Complete(!failed, err)
		instrumentation.EndSpan(span, err)

		status := instrumentation.StatusSuccess
		switch {
		case invocation.Decision == confirm.DecisionDenied:
			status = instrumentation.StatusDenied
		case failed:
			status = instrumentation.StatusError
		}

		metrics.RecordToolInvocation(ctx, toolName, status, account, duration)
		// Denied calls never reached Drive.
		if status != instrumentation.StatusDenied && invocation.Decision != confirm.DecisionError {
			metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceDrive, operation, status, duration)
		}
		auditLogger.LogToolInvocation(ctx, invocation)

		return result, err
	}
}

// driveSpanHandler runs handler inside a google.drive.<operation> client span.
// Error results mark the span as failed.
func driveSpanHandler(operation string, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartDriveSpan(ctx, operation)
		result, err := handler(ctx, request)

		spanErr := err
		if spanErr == nil && result != nil && result.IsError {
			spanErr = errors.New(errorText(result))
		}
		instrumentation.EndSpan(span, spanErr)
		return result, err
	}
}

func errorText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			return tc.Text
		}
	}
	return "tool returned an error"
}
