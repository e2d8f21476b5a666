package confirm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/teemow/driveagent/internal/logging"
)

// Decision labels reported to a DecisionRecorder and in logs.
const (
	DecisionNotRequired = "not_required"
	DecisionApproved    = "approved"
	DecisionDenied      = "denied"
	DecisionError       = "error"
)

// DecisionRecorder receives one call per Authorize.
type DecisionRecorder interface {
	RecordConfirmation(ctx context.Context, tool, decision string)
}

// Gate enforces a Policy in front of tool dispatch.
type Gate struct {
	policy   *Policy
	approver Approver
	logger   *slog.Logger
	recorder DecisionRecorder
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRecorder sets a recorder for confirmation metrics.
func WithRecorder(r DecisionRecorder) GateOption {
	return func(g *Gate) {
		g.recorder = r
	}
}

// NewGate returns a gate. A nil approver denies every gated invocation.
func NewGate(policy *Policy, approver Approver, opts ...GateOption) *Gate {
	g := &Gate{
		policy:   policy,
		approver: approver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the gate's policy.
func (g *Gate) Policy() *Policy {
	return g.policy
}

// RequiresConfirmation reports whether toolName is gated by this gate's policy.
func (g *Gate) RequiresConfirmation(toolName string) bool {
	return g.policy.RequiresConfirmation(toolName)
}

// Authorize returns nil when req may run. Ungated tools pass without
// consulting the approver. Gated tools need an explicit approval; a denial
// returns a *DeniedError, an approver failure is wrapped and also blocks.
func (g *Gate) Authorize(ctx context.Context, req Request) error {
	tool := req.ToolName()
	logger := logging.WithTool(g.logger, tool)

	if !g.policy.RequiresConfirmation(tool) {
		g.record(ctx, tool, DecisionNotRequired)
		return nil
	}

	prompt := Prompt{
		ID:         uuid.NewString(),
		ToolName:   tool,
		Parameters: req.Parameters(),
		Summary:    Summarize(req),
	}

	if g.approver == nil {
		g.record(ctx, tool, DecisionDenied)
		logger.Warn("gated tool denied, no approver configured", logging.RequestID(prompt.ID))
		return &DeniedError{ToolName: tool, RequestID: prompt.ID, Reason: "no approver configured"}
	}

	logger.Debug("requesting confirmation", logging.RequestID(prompt.ID))
	decision, err := g.approver.Approve(ctx, prompt)
	if err != nil {
		g.record(ctx, tool, DecisionError)
		logger.Error("confirmation failed", logging.RequestID(prompt.ID), logging.Err(err))
		return fmt.Errorf("confirmation for %s failed: %w", tool, err)
	}

	if !decision.Approved {
		g.record(ctx, tool, DecisionDenied)
		logger.Info("gated tool denied", logging.RequestID(prompt.ID), logging.Decision(DecisionDenied), "reason", decision.Reason)
		return &DeniedError{ToolName: tool, RequestID: prompt.ID, Reason: decision.Reason}
	}

	g.record(ctx, tool, DecisionApproved)
	logger.Info("gated tool approved", logging.RequestID(prompt.ID), logging.Decision(DecisionApproved), "reason", decision.Reason)
	return nil
}

func (g *Gate) record(ctx context.Context, tool, decision string) {
	if g.recorder != nil {
		g.recorder.RecordConfirmation(ctx, tool, decision)
	}
}
