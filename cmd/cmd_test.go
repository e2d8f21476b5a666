package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/driveagent/internal/config"
	"github.com/teemow/driveagent/internal/confirm"
	"github.com/teemow/driveagent/internal/drive"
	"github.com/teemow/driveagent/internal/server"
)

func testConfig() *config.Config {
	return &config.Config{
		UserID:              "ada@example.com",
		Model:               config.DefaultModel,
		AgentName:           config.DefaultAgentName,
		ToolLimit:           config.DefaultToolLimit,
		ChunkSize:           5242880,
		InlineDownloadLimit: config.DefaultInlineDownloadLimit,
		UploadLimit:         config.DefaultUploadLimit,
		GoogleClientSecret:  "s3cret",
	}
}

func TestNewMCPServer_RegistersDriveTools(t *testing.T) {
	cfg := testConfig()
	gate := confirm.NewGate(confirm.NewPolicy(config.DefaultGatedTools...), confirm.DenyApprover{})
	sc, err := server.NewServerContext(context.Background(), cfg, gate)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	mcpSrv, err := newMCPServer(sc)
	require.NoError(t, err)

	var names []string
	tools := make([]mcp.Tool, 0)
	for _, serverTool := range mcpSrv.ListTools() {
		names = append(names, serverTool.Tool.Name)
		tools = append(tools, serverTool.Tool)
	}
	assert.ElementsMatch(t, config.DriveTools, names)

	markdown := generateToolsMarkdown(tools, gate)
	assert.Contains(t, markdown, "### GoogleDrive_ShareFile")
	assert.Contains(t, markdown, "**Requires confirmation.**")
	assert.Contains(t, markdown, "`email_addresses` (array, required)")
}

func TestNewApprover(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("yolo approves", func(t *testing.T) {
		cfg := testConfig()
		cfg.AutoApprove = true
		approver, closer := newApprover(cfg, logger)
		defer closer.Close()
		assert.IsType(t, &confirm.AutoApprover{}, approver)
	})

	t.Run("no terminal denies", func(t *testing.T) {
		prev := ttyPath
		ttyPath = filepath.Join(t.TempDir(), "missing-tty")
		t.Cleanup(func() { ttyPath = prev })

		approver, closer := newApprover(testConfig(), logger)
		defer closer.Close()
		decision, err := approver.Approve(context.Background(), confirm.Prompt{ToolName: "GoogleDrive_ShareFile"})
		require.NoError(t, err)
		assert.False(t, decision.Approved)
	})
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		result drive.DownloadResult
		want   string
	}{
		{name: "explicit", output: "out.bin", result: drive.DownloadResult{Name: "report.pdf"}, want: "out.bin"},
		{name: "drive name", result: drive.DownloadResult{Name: "report.pdf"}, want: "report.pdf"},
		{name: "separators stripped", result: drive.DownloadResult{Name: "../../etc/passwd"}, want: "passwd"},
		{name: "empty name uses id", result: drive.DownloadResult{FileID: "abc123"}, want: "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outputPath(tt.output, &tt.result))
		})
	}
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	progress := progressPrinter(&buf)

	progress(5242880, 10000000)
	progress(10000000, 10000000)
	assert.Contains(t, buf.String(), "Downloaded 5242880 / 10000000 bytes (52%)")
	assert.Contains(t, buf.String(), "(100%)\n")
}

func TestPrintConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printConfig(&buf, testConfig()))

	out := buf.String()
	assert.Contains(t, out, config.DefaultModel)
	assert.Contains(t, out, "google_client_secret")
	assert.NotContains(t, out, "s3cret")
	assert.NotContains(t, out, "ada@example.com")
}
