// Package batch parses list parameters and reports per-item outcomes for tools
// that act on several items in one call, such as sharing a file with several
// recipients.
package batch
