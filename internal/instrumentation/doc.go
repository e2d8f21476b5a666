// Package instrumentation wires OpenTelemetry metrics and tracing into
// driveagent and writes the tool audit log.
//
// # Metrics
//
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: by tool and status
//   - google_api_operations_total, google_api_operation_duration_seconds: by
//     service, operation and status
//   - confirmation_decisions_total: by tool and decision
//   - transfer_chunks_total, transfer_bytes_total: chunked downloads
//   - http_requests_total, http_request_duration_seconds: streamable-http transport
//
// Metrics satisfies confirm.DecisionRecorder and transfer.ChunkRecorder, so
// the gate and the chunk loop report through it directly.
//
// # Configuration
//
// DefaultConfig reads INSTRUMENTATION_ENABLED, METRICS_EXPORTER (prometheus,
// otlp, stdout), TRACING_EXPORTER (otlp, stdout, none),
// OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_TRACES_SAMPLER_ARG and OTEL_SERVICE_NAME.
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordConfirmation(ctx, "GoogleDrive_ShareFile", "approved")
package instrumentation
