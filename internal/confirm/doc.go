// Package confirm decides whether a tool invocation needs explicit human
// approval and, when it does, obtains that approval before the tool runs.
//
// A Policy is the static set of gated tool names. It is built once at
// startup and never changes, so RequiresConfirmation is a lock-free read that
// is safe from any goroutine. Names that are not listed are not gated.
//
// A Gate combines a Policy with an Approver. The gate sits in front of tool
// dispatch: whatever the agent reasons, a gated tool only executes after the
// Approver said yes. Approvers fail closed; any error or missing answer is a
// denial.
//
//	gate := confirm.NewGate(cfg.Policy(), confirm.NewPromptApprover(tty, tty))
//	if err := gate.Authorize(ctx, confirm.NewRequest("GoogleDrive_ShareFile", args)); err != nil {
//	    return err // errors.Is(err, confirm.ErrConfirmationDenied)
//	}
package confirm
