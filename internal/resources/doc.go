// Package resources provides read-only MCP resources describing the agent:
// the Drive profile of the default account, the confirmation policy and the
// system prompt.
package resources
