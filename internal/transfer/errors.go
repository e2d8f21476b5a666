package transfer

import "errors"

var (
	// ErrOutOfOrderChunk is returned when a chunk does not start at the current cursor.
	ErrOutOfOrderChunk = errors.New("chunk does not start at the current cursor")

	// ErrChunkTooLarge is returned when a chunk spans more than MaxChunkSize bytes.
	ErrChunkTooLarge = errors.New("chunk exceeds the maximum chunk size")

	// ErrIncompleteTransfer is returned by Result before the transfer completed.
	ErrIncompleteTransfer = errors.New("transfer is not complete")

	// ErrInvalidChunk is returned for malformed chunks (inverted range, bad payload).
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidState is returned when an operation is not allowed in the current state.
	ErrInvalidState = errors.New("operation not allowed in current transfer state")
)
