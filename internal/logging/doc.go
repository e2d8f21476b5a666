// Package logging provides structured logging utilities for driveagent.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "transfer.fetch")
//	logger.Info("chunk accepted",
//	    logging.File(ref),
//	    logging.Cursor(offset))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("share requested",
//	    "recipients", logging.AnonymizeRecipients(emails))
//
// # Security Considerations
//
// Email addresses (account owners, share recipients) are hashed before they
// reach a log line. File contents are never logged.
package logging
