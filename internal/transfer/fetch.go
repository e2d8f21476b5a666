package transfer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teemow/driveagent/internal/logging"
)

// ChunkSource serves byte ranges of a remote file.
// The returned chunk may be shorter than chunkSize; the source decides the boundary.
type ChunkSource interface {
	DownloadChunk(ctx context.Context, fileRef string, startByte, chunkSize int64) (Chunk, error)
}

// ChunkRecorder receives a callback for every accepted chunk.
type ChunkRecorder interface {
	RecordTransferChunk(ctx context.Context, bytes int64)
}

// FetchOptions tunes a Fetch call. The zero value is valid.
type FetchOptions struct {
	// ChunkSize is the size requested per chunk (default: MaxChunkSize).
	ChunkSize int64

	// ExpectedSize, when positive, enables the size-known short-circuit.
	ExpectedSize int64

	// OnProgress is called after each accepted chunk. total is ExpectedSize (0 if unknown).
	OnProgress func(received, total int64)

	// Recorder receives per-chunk metrics.
	Recorder ChunkRecorder

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Fetch downloads fileRef chunk by chunk and returns the reassembled content.
//
// Requests are strictly sequential. Errors from the source are returned
// wrapped but are never retried here; the caller decides how to recover.
// Cancelling ctx stops the loop before the next request and discards
// everything received so far.
func Fetch(ctx context.Context, src ChunkSource, fileRef string, opts FetchOptions) ([]byte, error) {
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = MaxChunkSize
	}
	if err := ValidateChunkSize(chunkSize); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithOperation(logger, "transfer.fetch").With(logging.File(fileRef))

	a := NewAssembler()
	if err := a.Start(fileRef); err != nil {
		return nil, err
	}
	if err := a.ExpectSize(opts.ExpectedSize); err != nil {
		return nil, err
	}

	for a.State() == InProgress {
		if err := ctx.Err(); err != nil {
			_ = a.Abort("cancelled: " + err.Error())
			logger.Info("chunked download cancelled", logging.Cursor(a.Cursor()))
			return nil, fmt.Errorf("download of %q cancelled at byte %d: %w", fileRef, a.Cursor(), err)
		}

		start := a.Cursor()
		chunk, err := src.DownloadChunk(ctx, fileRef, start, chunkSize)
		if err != nil {
			_ = a.Abort(err.Error())
			logger.Warn("chunk request failed", logging.Cursor(start), logging.Err(err))
			return nil, fmt.Errorf("download chunk of %q at byte %d: %w", fileRef, start, err)
		}

		if err := a.Accept(chunk); err != nil {
			_ = a.Abort(err.Error())
			logger.Warn("chunk rejected", logging.Cursor(start), logging.Err(err))
			return nil, fmt.Errorf("accept chunk of %q: %w", fileRef, err)
		}

		logger.Debug("chunk accepted",
			slog.Int64("start_byte", chunk.StartByte),
			slog.Int64("end_byte", chunk.EndByte),
			slog.Bool("final", chunk.IsFinalChunk))

		if opts.Recorder != nil {
			opts.Recorder.RecordTransferChunk(ctx, chunk.Len())
		}
		if opts.OnProgress != nil {
			opts.OnProgress(a.Cursor(), opts.ExpectedSize)
		}
	}

	return a.Result()
}
