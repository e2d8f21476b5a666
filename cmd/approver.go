package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/teemow/driveagent/internal/config"
	"github.com/teemow/driveagent/internal/confirm"
	"github.com/teemow/driveagent/internal/logging"
)

// ttyPath is where confirmations are asked. stdin and stdout may be taken by
// the stdio transport, so the controlling terminal is opened directly.
var ttyPath = "/dev/tty"

// newApprover picks how gated tools are confirmed: everything approved with
// --yolo, a question on the terminal when there is one, and otherwise every
// gated tool is denied. The returned closer releases the terminal.
func newApprover(cfg *config.Config, logger *slog.Logger) (confirm.Approver, io.Closer) {
	if cfg.AutoApprove {
		logger.Warn("confirmations disabled, every gated tool is approved automatically")
		return confirm.NewAutoApprover(logger), io.NopCloser(nil)
	}

	tty, err := os.OpenFile(ttyPath, os.O_RDWR, 0)
	if err != nil {
		logger.Warn("no terminal for confirmations, gated tools will be denied",
			slog.Any("gated_tools", cfg.GatedTools()), logging.Err(err))
		return confirm.DenyApprover{}, io.NopCloser(nil)
	}
	return confirm.NewPromptApprover(tty, tty), tty
}
