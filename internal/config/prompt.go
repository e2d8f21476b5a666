package config

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/teemow/driveagent/internal/transfer"
)

//go:embed prompt.tmpl
var promptTemplate string

// DriveTools lists the tools the agent may call, in the order the prompt shows them.
var DriveTools = []string{
	"GoogleDrive_WhoAmI",
	"GoogleDrive_SearchFiles",
	"GoogleDrive_GetFileTreeStructure",
	"GoogleDrive_DownloadFile",
	"GoogleDrive_DownloadFileChunk",
	"GoogleDrive_CreateFolder",
	"GoogleDrive_UploadFile",
	"GoogleDrive_MoveFile",
	"GoogleDrive_RenameFile",
	"GoogleDrive_ShareFile",
}

var promptTmpl = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"join":  strings.Join,
	"bytes": formatBytes,
}).Parse(promptTemplate))

type promptData struct {
	AgentName           string
	Toolkits            []string
	Tools               []string
	ToolLimit           int
	GatedTools          []string
	MaxChunkSize        int64
	InlineDownloadLimit int64
	UploadLimit         int64
}

// SystemPrompt renders the agent's system prompt from the configuration, so
// the limits and gated tools the model is told about are the ones enforced.
func (c *Config) SystemPrompt() (string, error) {
	data := promptData{
		AgentName:           c.AgentName,
		Toolkits:            c.Toolkits(),
		Tools:               DriveTools,
		ToolLimit:           c.ToolLimit,
		GatedTools:          c.Policy().Tools(),
		MaxChunkSize:        transfer.MaxChunkSize,
		InlineDownloadLimit: c.InlineDownloadLimit,
		UploadLimit:         c.UploadLimit,
	}

	var sb strings.Builder
	if err := promptTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	return sb.String(), nil
}

// formatBytes renders n with a binary unit, e.g. 5242880 -> "5 MiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	value := float64(n) / float64(div)
	suffix := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}[exp]
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d %s", int64(value), suffix)
	}
	return fmt.Sprintf("%.1f %s", value, suffix)
}
