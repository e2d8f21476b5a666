package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/driveagent/internal/google"
	"github.com/teemow/driveagent/internal/server"
	"github.com/teemow/driveagent/internal/transfer"
)

// Resource URIs.
const (
	ProfileURI = "drive://profile"
	PolicyURI  = "driveagent://policy"
	PromptURI  = "driveagent://prompt"
)

// Policy is the content of the policy resource.
type Policy struct {
	AgentName           string   `json:"agent_name"`
	Model               string   `json:"model"`
	ToolLimit           int      `json:"tool_limit"`
	GatedTools          []string `json:"gated_tools"`
	MaxChunkSize        int64    `json:"max_chunk_size"`
	InlineDownloadLimit int64    `json:"inline_download_limit"`
	UploadLimit         int64    `json:"upload_limit"`
}

// RegisterResources registers the read-only agent resources: the Drive
// profile of the default account, the confirmation policy and the system
// prompt.
func RegisterResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil || sc == nil {
		return fmt.Errorf("server and server context are required")
	}

	profileResource := mcp.NewResource(
		ProfileURI,
		"Drive Profile",
		mcp.WithResourceDescription("Google Drive user, storage usage and shared drives of the default account"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProfile(ctx, request, sc)
	})

	policyResource := mcp.NewResource(
		PolicyURI,
		"Agent Policy",
		mcp.WithResourceDescription("Tools that need human confirmation and the transfer limits in force"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(policyResource, func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handlePolicy(request, sc)
	})

	promptResource := mcp.NewResource(
		PromptURI,
		"System Prompt",
		mcp.WithResourceDescription("System prompt of the Drive agent"),
		mcp.WithMIMEType("text/plain"),
	)
	s.AddResource(promptResource, func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		prompt, err := sc.Config().SystemPrompt()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			&mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "text/plain",
				Text:     prompt,
			},
		}, nil
	})

	return nil
}

// handleProfile reads the profile without passing the confirmation gate.
// Resources are fetched by the client, not chosen by the model.
func handleProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := sc.DriveClientForAccount(google.DefaultAccount)
	if err != nil {
		return nil, err
	}

	profile, err := client.WhoAmI(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Drive profile: %w", err)
	}
	return jsonContents(request.Params.URI, profile)
}

func handlePolicy(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()
	return jsonContents(request.Params.URI, Policy{
		AgentName:           cfg.AgentName,
		Model:               cfg.Model,
		ToolLimit:           cfg.ToolLimit,
		GatedTools:          sc.Gate().Policy().Tools(),
		MaxChunkSize:        transfer.MaxChunkSize,
		InlineDownloadLimit: cfg.InlineDownloadLimit,
		UploadLimit:         cfg.UploadLimit,
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
