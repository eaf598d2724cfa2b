package tools

import (
	"context"
	"fmt"

	"github.com/Barneyjm/camino-mcp/pkg/camino"
	"github.com/mark3labs/mcp-go/mcp"
)

type searchArgs struct {
	Query string `json:"query"`
}

// SearchTool returns a tool definition for free-form place search
func SearchTool() mcp.Tool {
	return mcp.NewTool(ToolSearch,
		mcp.WithDescription("Look up a place, address or landmark by name, for example \"Eiffel Tower\" "+
			"or \"221B Baker Street, London\", and return matching locations with their coordinates."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Place name, address or landmark to look up"),
		),
	)
}

func (r *Registry) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in searchArgs
	if err := bindArguments(req.GetArguments(), &in); err != nil {
		return ErrorResponse(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}

	env := r.upstream.Search(ctx, camino.SearchRequest{Query: in.Query})
	return envelopeResult(ctx, env)
}
