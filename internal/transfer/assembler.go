package transfer

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// MaxChunkSize is the largest byte range a single chunk may span (5 MiB).
const MaxChunkSize int64 = 5242880

// State is the lifecycle state of an Assembler.
type State int

const (
	// NotStarted is the initial state before Start is called.
	NotStarted State = iota
	// InProgress accepts chunks.
	InProgress
	// Complete means the final chunk was accepted and Result is available.
	Complete
	// Failed means the transfer was aborted; buffered bytes are gone.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Chunk is one byte-range response from a chunked download.
type Chunk struct {
	// StartByte is the zero-based offset of the first byte in the chunk.
	StartByte int64 `json:"start_byte"`

	// EndByte is the inclusive offset of the last byte in the chunk.
	EndByte int64 `json:"end_byte"`

	// Payload is the base64-encoded chunk content.
	Payload string `json:"base64"`

	// IsFinalChunk is set by the source on the last chunk of the file.
	IsFinalChunk bool `json:"is_final_chunk"`
}

// Len returns the number of bytes the chunk claims to cover.
func (c Chunk) Len() int64 {
	return c.EndByte - c.StartByte + 1
}

// Assembler rebuilds a single file from its chunks.
// An Assembler is not safe for concurrent use; every transfer owns its own instance.
type Assembler struct {
	fileRef      string
	state        State
	cursor       int64
	expectedSize int64
	buf          bytes.Buffer
	abortReason  string
}

// NewAssembler returns an assembler in the NotStarted state.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Start begins a transfer of fileRef. The buffer is empty and the cursor is at byte 0.
func (a *Assembler) Start(fileRef string) error {
	if a.state != NotStarted {
		return fmt.Errorf("start %q in state %s: %w", fileRef, a.state, ErrInvalidState)
	}
	a.fileRef = fileRef
	a.cursor = 0
	a.buf.Reset()
	a.state = InProgress
	return nil
}

// ExpectSize enables the size-known short-circuit: once the cursor reaches
// total the transfer completes even without a final-chunk flag. A total of
// zero or less disables it.
func (a *Assembler) ExpectSize(total int64) error {
	if a.state != NotStarted && a.state != InProgress {
		return fmt.Errorf("expect size in state %s: %w", a.state, ErrInvalidState)
	}
	if total > 0 && total < a.cursor {
		return fmt.Errorf("expected size %d is behind cursor %d: %w", total, a.cursor, ErrInvalidChunk)
	}
	a.expectedSize = total
	return nil
}

// Accept appends the next chunk. A rejected chunk leaves the assembler unchanged.
func (a *Assembler) Accept(c Chunk) error {
	if a.state != InProgress {
		return fmt.Errorf("accept chunk in state %s: %w", a.state, ErrInvalidState)
	}
	if c.StartByte != a.cursor {
		return fmt.Errorf("chunk starts at byte %d, cursor is at %d: %w", c.StartByte, a.cursor, ErrOutOfOrderChunk)
	}
	if c.EndByte < c.StartByte {
		return fmt.Errorf("chunk range %d-%d is inverted: %w", c.StartByte, c.EndByte, ErrInvalidChunk)
	}
	if c.Len() > MaxChunkSize {
		return fmt.Errorf("chunk of %d bytes exceeds %d: %w", c.Len(), MaxChunkSize, ErrChunkTooLarge)
	}
	if a.expectedSize > 0 && c.EndByte >= a.expectedSize {
		return fmt.Errorf("chunk ends at byte %d beyond expected size %d: %w", c.EndByte, a.expectedSize, ErrInvalidChunk)
	}

	data, err := base64.StdEncoding.DecodeString(c.Payload)
	if err != nil {
		return fmt.Errorf("decode chunk payload at byte %d: %v: %w", c.StartByte, err, ErrInvalidChunk)
	}
	if int64(len(data)) != c.Len() {
		return fmt.Errorf("chunk payload has %d bytes, range %d-%d needs %d: %w",
			len(data), c.StartByte, c.EndByte, c.Len(), ErrInvalidChunk)
	}

	a.buf.Write(data)
	a.cursor = c.EndByte + 1

	if c.IsFinalChunk || (a.expectedSize > 0 && a.cursor == a.expectedSize) {
		a.state = Complete
	}
	return nil
}

// Result returns the reassembled file. It fails with ErrIncompleteTransfer
// unless the transfer is Complete; partial data is never returned.
func (a *Assembler) Result() ([]byte, error) {
	if a.state != Complete {
		return nil, fmt.Errorf("result of %q in state %s: %w", a.fileRef, a.state, ErrIncompleteTransfer)
	}
	out := make([]byte, a.buf.Len())
	copy(out, a.buf.Bytes())
	return out, nil
}

// Abort fails an in-progress transfer and discards everything buffered so far.
func (a *Assembler) Abort(reason string) error {
	if a.state != InProgress {
		return fmt.Errorf("abort in state %s: %w", a.state, ErrInvalidState)
	}
	a.buf = bytes.Buffer{}
	a.abortReason = reason
	a.state = Failed
	return nil
}

// State returns the current state.
func (a *Assembler) State() State {
	return a.state
}

// Cursor returns the offset of the next expected byte.
func (a *Assembler) Cursor() int64 {
	return a.cursor
}

// FileRef returns the file reference passed to Start.
func (a *Assembler) FileRef() string {
	return a.fileRef
}

// AbortReason returns the reason given to Abort, or "" if the transfer was not aborted.
func (a *Assembler) AbortReason() string {
	return a.abortReason
}

// ValidateChunkSize checks a requested chunk size before it is sent to a source.
func ValidateChunkSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("chunk size %d must be positive: %w", size, ErrInvalidChunk)
	}
	if size > MaxChunkSize {
		return fmt.Errorf("chunk size %d exceeds %d: %w", size, MaxChunkSize, ErrChunkTooLarge)
	}
	return nil
}
