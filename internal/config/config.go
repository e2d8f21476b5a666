package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teemow/driveagent/internal/confirm"
	"github.com/teemow/driveagent/internal/transfer"
)

const (
	// DefaultModel is the LLM used when OPENAI_MODEL is not set.
	DefaultModel = "gpt-4o-mini"

	// DefaultAgentName names the agent in prompts and logs.
	DefaultAgentName = "GoogleDrive_Agent"

	// DefaultToolLimit caps tool calls per user request.
	DefaultToolLimit = 30

	// DefaultInlineDownloadLimit is the largest file returned in one piece.
	DefaultInlineDownloadLimit int64 = 5 * 1024 * 1024

	// DefaultUploadLimit is the largest file accepted by the upload-from-URL tool.
	DefaultUploadLimit int64 = 25 * 1024 * 1024
)

// DefaultToolkits are the tool integrations the agent loads.
var DefaultToolkits = []string{"GoogleDrive"}

// DefaultGatedTools are the Drive tools that need human approval before they run.
var DefaultGatedTools = []string{
	"GoogleDrive_CreateFolder",
	"GoogleDrive_DownloadFile",
	"GoogleDrive_DownloadFileChunk",
	"GoogleDrive_GetFileTreeStructure",
	"GoogleDrive_MoveFile",
	"GoogleDrive_RenameFile",
	"GoogleDrive_SearchFiles",
	"GoogleDrive_ShareFile",
	"GoogleDrive_UploadFile",
	"GoogleDrive_WhoAmI",
}

// Config is the agent configuration. It is built once by Load and then only
// read; slice-valued settings are exposed through copying accessors. Holders
// that share a Config with other components keep a Clone.
type Config struct {
	// UserID identifies the end user towards the tool provider.
	UserID string

	// Model is the LLM model name.
	Model string

	// AgentName names the agent.
	AgentName string

	// ToolLimit caps tool calls per user request.
	ToolLimit int

	// ChunkSize is the byte range requested per chunk in chunked downloads.
	ChunkSize int64

	// InlineDownloadLimit is the largest file size returned without chunking.
	InlineDownloadLimit int64

	// UploadLimit is the largest file accepted by upload-from-URL.
	UploadLimit int64

	// TokenFile is the path of the saved Google OAuth token (JSON).
	TokenFile string

	// GoogleClientID and GoogleClientSecret allow refreshing the saved token.
	GoogleClientID     string
	GoogleClientSecret string

	// AutoApprove skips human confirmation for gated tools.
	AutoApprove bool

	toolkits   []string
	gatedTools []string
}

// LoadOptions controls where Load reads settings from.
type LoadOptions struct {
	// EnvFiles are dotenv files loaded before reading the environment.
	// Missing files are skipped. Defaults to ".env".
	EnvFiles []string

	// Flags, when set, override environment values for flags the user changed.
	Flags *pflag.FlagSet
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"model":        "model",
	"user-id":      "user_id",
	"token-file":   "token_file",
	"chunk-size":   "chunk_size",
	"yolo":         "auto_approve",
	"gated-tools":  "gated_tools",
	"inline-limit": "inline_download_limit",
}

// Load reads dotenv files, the environment and changed flags, and returns a validated Config.
//
// Environment variables:
//   - DRIVEAGENT_USER_ID (fallback ARCADE_USER_ID)
//   - OPENAI_MODEL (default gpt-4o-mini)
//   - DRIVEAGENT_AGENT_NAME, DRIVEAGENT_TOOL_LIMIT, DRIVEAGENT_TOOLKITS
//   - DRIVEAGENT_GATED_TOOLS (comma separated, replaces the default list)
//   - DRIVEAGENT_CHUNK_SIZE, DRIVEAGENT_INLINE_DOWNLOAD_LIMIT, DRIVEAGENT_UPLOAD_LIMIT
//   - DRIVEAGENT_TOKEN_FILE, GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET
//   - DRIVEAGENT_AUTO_APPROVE
func Load(opts LoadOptions) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// missing dotenv files are skipped; variables already set in the environment win
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetDefault("model", DefaultModel)
	v.SetDefault("agent_name", DefaultAgentName)
	v.SetDefault("tool_limit", DefaultToolLimit)
	v.SetDefault("chunk_size", transfer.MaxChunkSize)
	v.SetDefault("inline_download_limit", DefaultInlineDownloadLimit)
	v.SetDefault("upload_limit", DefaultUploadLimit)
	v.SetDefault("token_file", defaultTokenFile())
	v.SetDefault("auto_approve", false)

	envBindings := map[string][]string{
		"user_id":               {"DRIVEAGENT_USER_ID", "ARCADE_USER_ID"},
		"model":                 {"OPENAI_MODEL"},
		"agent_name":            {"DRIVEAGENT_AGENT_NAME"},
		"tool_limit":            {"DRIVEAGENT_TOOL_LIMIT"},
		"toolkits":              {"DRIVEAGENT_TOOLKITS"},
		"gated_tools":           {"DRIVEAGENT_GATED_TOOLS"},
		"chunk_size":            {"DRIVEAGENT_CHUNK_SIZE"},
		"inline_download_limit": {"DRIVEAGENT_INLINE_DOWNLOAD_LIMIT"},
		"upload_limit":          {"DRIVEAGENT_UPLOAD_LIMIT"},
		"token_file":            {"DRIVEAGENT_TOKEN_FILE"},
		"google_client_id":      {"GOOGLE_CLIENT_ID"},
		"google_client_secret":  {"GOOGLE_CLIENT_SECRET"},
		"auto_approve":          {"DRIVEAGENT_AUTO_APPROVE"},
	}
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		UserID:              v.GetString("user_id"),
		Model:               v.GetString("model"),
		AgentName:           v.GetString("agent_name"),
		ToolLimit:           v.GetInt("tool_limit"),
		ChunkSize:           v.GetInt64("chunk_size"),
		InlineDownloadLimit: v.GetInt64("inline_download_limit"),
		UploadLimit:         v.GetInt64("upload_limit"),
		TokenFile:           v.GetString("token_file"),
		GoogleClientID:      v.GetString("google_client_id"),
		GoogleClientSecret:  v.GetString("google_client_secret"),
		AutoApprove:         v.GetBool("auto_approve"),
		toolkits:            listOrDefault(v.GetString("toolkits"), DefaultToolkits),
		gatedTools:          listOrDefault(v.GetString("gated_tools"), DefaultGatedTools),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the runtime cannot honour.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.ToolLimit <= 0 {
		return fmt.Errorf("tool limit must be positive, got %d", c.ToolLimit)
	}
	if err := transfer.ValidateChunkSize(c.ChunkSize); err != nil {
		return fmt.Errorf("invalid chunk size: %w", err)
	}
	if c.InlineDownloadLimit <= 0 {
		return fmt.Errorf("inline download limit must be positive, got %d", c.InlineDownloadLimit)
	}
	if c.UploadLimit <= 0 {
		return fmt.Errorf("upload limit must be positive, got %d", c.UploadLimit)
	}
	return nil
}

// Toolkits returns a copy of the configured toolkit names.
func (c *Config) Toolkits() []string {
	return slices.Clone(c.toolkits)
}

// GatedTools returns a copy of the configured gated tool names.
func (c *Config) GatedTools() []string {
	return slices.Clone(c.gatedTools)
}

// Policy returns a confirmation policy built from GatedTools.
func (c *Config) Policy() *confirm.Policy {
	return confirm.NewPolicy(c.gatedTools...)
}

// Clone returns a copy that shares nothing mutable with c.
func (c *Config) Clone() *Config {
	out := *c
	out.toolkits = slices.Clone(c.toolkits)
	out.gatedTools = slices.Clone(c.gatedTools)
	return &out
}

// listOrDefault splits a comma-separated list, falling back to def when raw is empty.
func listOrDefault(raw string, def []string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return slices.Clone(def)
	}
	return out
}

func defaultTokenFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "driveagent", "google-token.json")
}
