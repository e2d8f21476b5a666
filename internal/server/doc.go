// Package server holds the state shared by the MCP tool handlers and the
// HTTP servers around them.
//
// ServerContext carries the configuration, the confirmation gate, Drive
// clients per Google account (created lazily from saved tokens) and the
// metrics and audit sinks.
//
// HTTPServer serves the MCP server over streamable HTTP with /healthz,
// /readyz and /healthz/detailed next to it. It has no authentication and
// refuses non-loopback addresses unless explicitly allowed.
//
// MetricsServer exposes Prometheus metrics on a separate port.
package server
