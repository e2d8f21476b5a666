// Package common holds the wrappers and argument helpers shared by the MCP
// tool packages.
//
// DriveTool composes GatedToolHandler (human confirmation before dispatch)
// with InstrumentedToolHandler (span, metrics, audit log). The confirmation
// outcome recorded by the gate wrapper ends up in the audit record.
package common
