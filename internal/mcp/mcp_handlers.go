package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/pmpulse/core"
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// params validates the tool arguments into engine parameters.
func params(request mcp.CallToolRequest) (core.Params, error) {
	user := request.GetString("user_id", "")
	if user == "" {
		return core.Params{}, errors.New("user_id is required")
	}

	rng, err := contract.ParseRange(request.GetString("range", ""))
	if err != nil {
		return core.Params{}, err
	}

	limit := request.GetInt("limit", 0)
	if limit < 0 || limit > contract.MaxResultLimit {
		return core.Params{}, fmt.Errorf("limit must be between 1 and %d", contract.MaxResultLimit)
	}

	return core.Params{
		UserID:    user,
		ProjectID: request.GetString("project_id", ""),
		Range:     rng,
		Limit:     limit,
	}, nil
}

// handle returns the handler that runs one report and returns it as indented JSON.
func (h *toolHandler) handle(report string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := params(request)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
		if h.mgr == nil || h.mgr.GetSnapshotStore() == nil {
			return mcp.NewToolResultError("snapshot store is not initialized"), nil
		}

		payload, err := core.EngineFor(h.baseCfg, h.mgr).Generate(ctx, report, p)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s report failed: %v", report, err)), nil
		}

		jsonData, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode %s report: %v", report, err)), nil
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
