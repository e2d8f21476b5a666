package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Prompt is what an Approver is asked to decide on.
type Prompt struct {
	// ID uniquely identifies this confirmation request.
	ID string
	// ToolName is the gated tool.
	ToolName string
	// Parameters are the invocation arguments (a copy).
	Parameters map[string]any
	// Summary is a one-line human readable rendering of the invocation.
	Summary string
}

// Decision is an approver's answer.
type Decision struct {
	Approved bool
	Reason   string
}

// Approver obtains a human decision for a gated invocation.
type Approver interface {
	Approve(ctx context.Context, p Prompt) (Decision, error)
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(ctx context.Context, p Prompt) (Decision, error)

// Approve calls f.
func (f ApproverFunc) Approve(ctx context.Context, p Prompt) (Decision, error) {
	return f(ctx, p)
}

// PromptApprover asks a human on a terminal-like reader/writer pair.
// Only "y" or "yes" (any case) approves; anything else, including EOF, denies.
// Prompts are serialized so concurrent tool calls cannot interleave questions.
//
// Input is read by one background goroutine that lives as long as the
// reader. When a call is cancelled while waiting, the next line typed is
// taken as the late answer to that prompt and discarded.
type PromptApprover struct {
	mu    sync.Mutex
	in    *bufio.Reader
	out   io.Writer
	start sync.Once
	lines chan answerLine
	stale int
}

type answerLine struct {
	text string
	err  error
}

// NewPromptApprover returns an approver reading answers from in and writing questions to out.
func NewPromptApprover(in io.Reader, out io.Writer) *PromptApprover {
	return &PromptApprover{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan answerLine),
	}
}

func (a *PromptApprover) readLines() {
	defer close(a.lines)
	for {
		line, err := a.in.ReadString('\n')
		a.lines <- answerLine{text: line, err: err}
		if err != nil {
			return
		}
	}
}

// next waits for the next answer that belongs to the current prompt.
func (a *PromptApprover) next(ctx context.Context) (answerLine, error) {
	for {
		select {
		case <-ctx.Done():
			a.stale++
			_, _ = fmt.Fprintln(a.out, "\n(cancelled)")
			return answerLine{}, ctx.Err()
		case ans, ok := <-a.lines:
			if !ok {
				return answerLine{err: io.EOF}, nil
			}
			if a.stale > 0 {
				a.stale--
				continue
			}
			return ans, nil
		}
	}
}

// Approve writes the question and waits for a line or for ctx to end.
func (a *PromptApprover) Approve(ctx context.Context, p Prompt) (Decision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	a.start.Do(func() { go a.readLines() })

	if _, err := fmt.Fprintf(a.out, "\nThe agent wants to run:\n  %s\nAllow? [y/N]: ", p.Summary); err != nil {
		return Decision{}, fmt.Errorf("failed to write confirmation prompt: %w", err)
	}

	ans, err := a.next(ctx)
	if err != nil {
		return Decision{}, err
	}
	if ans.err != nil && !errors.Is(ans.err, io.EOF) {
		return Decision{}, fmt.Errorf("failed to read confirmation answer: %w", ans.err)
	}

	switch strings.ToLower(strings.TrimSpace(ans.text)) {
	case "y", "yes":
		return Decision{Approved: true, Reason: "approved at prompt"}, nil
	case "":
		if errors.Is(ans.err, io.EOF) {
			return Decision{Approved: false, Reason: "no answer (input closed)"}, nil
		}
		return Decision{Approved: false, Reason: "declined at prompt"}, nil
	default:
		return Decision{Approved: false, Reason: "declined at prompt"}, nil
	}
}

// AutoApprover approves every request. It exists for operators who explicitly
// opted out of confirmations; every approval is logged as a warning.
type AutoApprover struct {
	logger *slog.Logger
}

// NewAutoApprover returns an approver that always says yes.
func NewAutoApprover(logger *slog.Logger) *AutoApprover {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoApprover{logger: logger}
}

// Approve approves p.
func (a *AutoApprover) Approve(_ context.Context, p Prompt) (Decision, error) {
	a.logger.Warn("auto-approving gated tool", "tool", p.ToolName, "request_id", p.ID)
	return Decision{Approved: true, Reason: "auto-approved"}, nil
}

// DenyApprover denies every request. Use it when no human channel is available.
type DenyApprover struct {
	Reason string
}

// Approve denies p.
func (a DenyApprover) Approve(_ context.Context, _ Prompt) (Decision, error) {
	reason := a.Reason
	if reason == "" {
		reason = "no approver available"
	}
	return Decision{Approved: false, Reason: reason}, nil
}
