// Package cmd implements the command-line interface for driveagent.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing the GoogleDrive_* tools (default)
//   - download: Download a Drive file, in chunks when it is large
//   - prompt: Print the agent's system prompt
//   - config: Print the effective configuration
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
package cmd
