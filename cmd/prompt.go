package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/driveagent/internal/config"
	"github.com/teemow/driveagent/internal/logging"
)

func newPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt",
		Long:  "Print the agent's system prompt, rendered from the effective configuration.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			prompt, err := cfg.SystemPrompt()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), prompt)
			return err
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

// printConfig writes cfg as aligned key/value lines. The user ID is hashed
// and the client secret is never printed.
func printConfig(w io.Writer, cfg *config.Config) error {
	secret := "not set"
	if cfg.GoogleClientSecret != "" {
		secret = "set"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"user_id", logging.AnonymizeEmail(cfg.UserID)},
		{"model", cfg.Model},
		{"agent_name", cfg.AgentName},
		{"toolkits", strings.Join(cfg.Toolkits(), ", ")},
		{"tool_limit", fmt.Sprint(cfg.ToolLimit)},
		{"chunk_size", fmt.Sprint(cfg.ChunkSize)},
		{"inline_download_limit", fmt.Sprint(cfg.InlineDownloadLimit)},
		{"upload_limit", fmt.Sprint(cfg.UploadLimit)},
		{"token_file", cfg.TokenFile},
		{"google_client_id", cfg.GoogleClientID},
		{"google_client_secret", secret},
		{"auto_approve", fmt.Sprint(cfg.AutoApprove)},
		{"gated_tools", strings.Join(cfg.Policy().Tools(), ", ")},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}
