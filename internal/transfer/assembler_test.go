package transfer

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkOf builds a chunk covering data placed at offset start.
func chunkOf(start int64, data []byte, final bool) Chunk {
	return Chunk{
		StartByte:    start,
		EndByte:      start + int64(len(data)) - 1,
		Payload:      base64.StdEncoding.EncodeToString(data),
		IsFinalChunk: final,
	}
}

// splitChunks cuts data into chunks of at most size bytes, flagging the last one as final.
func splitChunks(data []byte, size int) []Chunk {
	var chunks []Chunk
	for off := 0; off < len(data); off += size {
		end := off + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, chunkOf(int64(off), data[off:end], end == len(data)))
	}
	return chunks
}

func TestAssembler_ReplayEqualsConcatenation(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		chunkSize int
	}{
		{name: "single byte", size: 1, chunkSize: 1},
		{name: "single chunk", size: 100, chunkSize: 100},
		{name: "even split", size: 1000, chunkSize: 250},
		{name: "uneven split", size: 1001, chunkSize: 250},
		{name: "one byte chunks", size: 17, chunkSize: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, tt.size)
			for i := range data {
				data[i] = byte(i * 7)
			}

			a := NewAssembler()
			require.NoError(t, a.Start("file-1"))
			for _, c := range splitChunks(data, tt.chunkSize) {
				require.NoError(t, a.Accept(c))
			}

			assert.Equal(t, Complete, a.State())
			got, err := a.Result()
			require.NoError(t, err)
			assert.True(t, bytes.Equal(data, got))
		})
	}
}

func TestAssembler_TenMegabyteScenario(t *testing.T) {
	first := bytes.Repeat([]byte{0xAB}, 5242880)
	second := bytes.Repeat([]byte{0xCD}, 10000000-5242880)

	a := NewAssembler()
	assert.Equal(t, NotStarted, a.State())

	require.NoError(t, a.Start("bigfile.zip"))
	assert.Equal(t, InProgress, a.State())

	c1 := chunkOf(0, first, false)
	require.Equal(t, int64(5242879), c1.EndByte)
	require.NoError(t, a.Accept(c1))
	assert.Equal(t, InProgress, a.State())
	assert.Equal(t, int64(5242880), a.Cursor())

	c2 := chunkOf(5242880, second, true)
	require.Equal(t, int64(9999999), c2.EndByte)
	require.NoError(t, a.Accept(c2))
	assert.Equal(t, Complete, a.State())

	got, err := a.Result()
	require.NoError(t, err)
	assert.Len(t, got, 10000000)
	assert.Equal(t, byte(0xAB), got[5242879])
	assert.Equal(t, byte(0xCD), got[5242880])
}

func TestAssembler_OutOfOrderChunk(t *testing.T) {
	tests := []struct {
		name  string
		chunk Chunk
	}{
		{name: "ahead of cursor", chunk: chunkOf(100, []byte("hello"), false)},
		{name: "ahead and final", chunk: chunkOf(100, []byte("hello"), true)},
		{name: "garbage payload", chunk: Chunk{StartByte: 100, EndByte: 50, Payload: "!!!"}},
		{name: "oversized range", chunk: Chunk{StartByte: 1, EndByte: 1 + MaxChunkSize*2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler()
			require.NoError(t, a.Start("file"))

			err := a.Accept(tt.chunk)
			assert.ErrorIs(t, err, ErrOutOfOrderChunk)
			assert.Equal(t, InProgress, a.State())
			assert.Equal(t, int64(0), a.Cursor())
		})
	}
}

func TestAssembler_OutOfOrderAfterProgress(t *testing.T) {
	a := NewAssembler()
	require.NoError(t, a.Start("file"))
	require.NoError(t, a.Accept(chunkOf(0, []byte("abcd"), false)))

	// replaying the same chunk overlaps what was already received
	assert.ErrorIs(t, a.Accept(chunkOf(0, []byte("abcd"), false)), ErrOutOfOrderChunk)
	// skipping a byte leaves a gap
	assert.ErrorIs(t, a.Accept(chunkOf(5, []byte("f"), true)), ErrOutOfOrderChunk)

	require.NoError(t, a.Accept(chunkOf(4, []byte("ef"), true)))
	got, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(got))
}

func TestAssembler_ChunkTooLarge(t *testing.T) {
	a := NewAssembler()
	require.NoError(t, a.Start("file"))

	err := a.Accept(Chunk{StartByte: 0, EndByte: MaxChunkSize, Payload: ""})
	assert.ErrorIs(t, err, ErrChunkTooLarge)
	assert.Equal(t, int64(0), a.Cursor())
}

func TestAssembler_InvalidChunks(t *testing.T) {
	tests := []struct {
		name  string
		chunk Chunk
	}{
		{
			name:  "inverted range",
			chunk: Chunk{StartByte: 0, EndByte: -1, Payload: ""},
		},
		{
			name:  "payload not base64",
			chunk: Chunk{StartByte: 0, EndByte: 3, Payload: "not base64!"},
		},
		{
			name:  "payload shorter than range",
			chunk: Chunk{StartByte: 0, EndByte: 9, Payload: base64.StdEncoding.EncodeToString([]byte("short"))},
		},
		{
			name:  "payload longer than range",
			chunk: Chunk{StartByte: 0, EndByte: 1, Payload: base64.StdEncoding.EncodeToString([]byte("longer"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler()
			require.NoError(t, a.Start("file"))
			assert.ErrorIs(t, a.Accept(tt.chunk), ErrInvalidChunk)
			assert.Equal(t, InProgress, a.State())
		})
	}
}

func TestAssembler_ResultRequiresComplete(t *testing.T) {
	a := NewAssembler()

	_, err := a.Result()
	assert.ErrorIs(t, err, ErrIncompleteTransfer, "not started")

	require.NoError(t, a.Start("file"))
	require.NoError(t, a.Accept(chunkOf(0, []byte("partial"), false)))
	_, err = a.Result()
	assert.ErrorIs(t, err, ErrIncompleteTransfer, "in progress")

	require.NoError(t, a.Abort("user cancelled"))
	_, err = a.Result()
	assert.ErrorIs(t, err, ErrIncompleteTransfer, "failed")
}

func TestAssembler_Abort(t *testing.T) {
	a := NewAssembler()
	assert.ErrorIs(t, a.Abort("too early"), ErrInvalidState)

	require.NoError(t, a.Start("file"))
	require.NoError(t, a.Accept(chunkOf(0, []byte("data"), false)))
	require.NoError(t, a.Abort("permission denied"))

	assert.Equal(t, Failed, a.State())
	assert.Equal(t, "permission denied", a.AbortReason())
	assert.ErrorIs(t, a.Accept(chunkOf(4, []byte("more"), true)), ErrInvalidState)
	assert.ErrorIs(t, a.Abort("again"), ErrInvalidState)
}

func TestAssembler_InvalidStateTransitions(t *testing.T) {
	a := NewAssembler()
	assert.ErrorIs(t, a.Accept(chunkOf(0, []byte("x"), true)), ErrInvalidState)

	require.NoError(t, a.Start("file"))
	assert.ErrorIs(t, a.Start("file"), ErrInvalidState)

	require.NoError(t, a.Accept(chunkOf(0, []byte("x"), true)))
	assert.ErrorIs(t, a.Accept(chunkOf(1, []byte("y"), true)), ErrInvalidState)
	assert.ErrorIs(t, a.Abort("late"), ErrInvalidState)
	assert.Equal(t, "file", a.FileRef())
}

func TestAssembler_ExpectSize(t *testing.T) {
	t.Run("completes without final flag", func(t *testing.T) {
		a := NewAssembler()
		require.NoError(t, a.Start("file"))
		require.NoError(t, a.ExpectSize(6))

		require.NoError(t, a.Accept(chunkOf(0, []byte("abc"), false)))
		assert.Equal(t, InProgress, a.State())
		require.NoError(t, a.Accept(chunkOf(3, []byte("def"), false)))
		assert.Equal(t, Complete, a.State())
	})

	t.Run("rejects chunk beyond size", func(t *testing.T) {
		a := NewAssembler()
		require.NoError(t, a.Start("file"))
		require.NoError(t, a.ExpectSize(4))

		assert.ErrorIs(t, a.Accept(chunkOf(0, []byte("abcdef"), true)), ErrInvalidChunk)
		assert.Equal(t, int64(0), a.Cursor())
	})

	t.Run("final flag still wins", func(t *testing.T) {
		a := NewAssembler()
		require.NoError(t, a.Start("file"))
		require.NoError(t, a.ExpectSize(100))

		require.NoError(t, a.Accept(chunkOf(0, []byte("ab"), true)))
		assert.Equal(t, Complete, a.State())
	})

	t.Run("zero disables", func(t *testing.T) {
		a := NewAssembler()
		require.NoError(t, a.Start("file"))
		require.NoError(t, a.ExpectSize(0))
		require.NoError(t, a.Accept(chunkOf(0, []byte("ab"), false)))
		assert.Equal(t, InProgress, a.State())
	})
}

func TestValidateChunkSize(t *testing.T) {
	assert.NoError(t, ValidateChunkSize(1))
	assert.NoError(t, ValidateChunkSize(MaxChunkSize))
	assert.ErrorIs(t, ValidateChunkSize(MaxChunkSize+1), ErrChunkTooLarge)
	assert.ErrorIs(t, ValidateChunkSize(0), ErrInvalidChunk)
	assert.ErrorIs(t, ValidateChunkSize(-5), ErrInvalidChunk)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not_started", NotStarted.String())
	assert.Equal(t, "in_progress", InProgress.String())
	assert.Equal(t, "complete", Complete.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "state(9)", State(9).String())
}
