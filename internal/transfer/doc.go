// Package transfer reassembles files that a download tool delivers as a
// sequence of byte-range chunks.
//
// A transfer is driven by an Assembler, a small state machine:
//
//	NotStarted -> InProgress -> Complete
//	                  |
//	                  +-------> Failed
//
// Chunks must arrive strictly in order. Each chunk has to start exactly at
// the assembler's cursor, may span at most MaxChunkSize bytes, and carries a
// base64 payload that decodes to exactly the advertised byte range. The
// transfer completes when the source flags a chunk as final, or, when the
// total size is known up front, once the cursor reaches that size.
//
// Fetch runs the sequential request loop against a ChunkSource. There is no
// pipelining: every request is issued only after the previous chunk has been
// accepted, because the remote side gives no random-access guarantee and
// decides chunk boundaries per request.
//
// Example usage:
//
//	data, err := transfer.Fetch(ctx, driveClient, "reports/q3.zip", transfer.FetchOptions{
//	    ExpectedSize: 25000000,
//	})
//	if err != nil {
//	    return err
//	}
package transfer
