package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/driveagent/internal/config"
	"github.com/teemow/driveagent/internal/logging"
)

// rootCmd represents the base command for the driveagent application
var rootCmd = &cobra.Command{
	Use:   "driveagent",
	Short: "Google Drive tools for AI agents, with human confirmation",
	Long: `driveagent gives AI assistants access to Google Drive through the Model
Context Protocol (MCP). Tools that change or read Drive content ask a human
for confirmation before they run, and large files are transferred in chunks.

It can run as:
  - An MCP server for AI assistants (default)
  - A standalone CLI for chunked downloads`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

var (
	debugMode bool
	envFiles  []string
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "driveagent version %s\n" .Version}}`)

	// If no subcommand is provided, serve MCP over stdio
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&debugMode, "debug", false, "Enable debug logging")
	flags.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default: .env)")
	flags.String("model", "", "LLM model name the system prompt is written for (env: OPENAI_MODEL)")
	flags.String("user-id", "", "User the agent acts for (env: DRIVEAGENT_USER_ID)")
	flags.String("token-file", "", "Saved Google OAuth token (env: DRIVEAGENT_TOKEN_FILE)")
	flags.Int64("chunk-size", 0, "Chunk size for chunked downloads in bytes (env: DRIVEAGENT_CHUNK_SIZE)")
	flags.Int64("inline-limit", 0, "Largest file returned in one piece (env: DRIVEAGENT_INLINE_DOWNLOAD_LIMIT)")
	flags.String("gated-tools", "", "Comma-separated tools that need confirmation (env: DRIVEAGENT_GATED_TOOLS)")
	flags.Bool("yolo", false, "Approve every gated tool without asking (env: DRIVEAGENT_AUTO_APPROVE)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newPromptCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// newLogger logs to stderr; stdout carries the stdio transport.
func newLogger() *slog.Logger {
	logger := logging.New(os.Stderr, debugMode)
	slog.SetDefault(logger)
	return logger
}

// loadConfig builds the configuration from dotenv files, the environment and
// the flags the user set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(config.LoadOptions{
		EnvFiles: envFiles,
		Flags:    cmd.Flags(),
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("driveagent version %s\n", version)
		},
	}
}
