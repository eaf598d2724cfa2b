package tools

import (
	"context"
	"fmt"

	"github.com/Barneyjm/camino-mcp/pkg/camino"
	"github.com/mark3labs/mcp-go/mcp"
)

// queryArgs defines the input parameters for camino_query
type queryArgs struct {
	Query          string   `json:"query"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Radius         int      `json:"radius"`
	Limit          int      `json:"limit"`
	Rank           bool     `json:"rank"`
	GenerateAnswer bool     `json:"generate_answer"`
}

// QueryTool returns a tool definition for natural language place queries
func QueryTool() mcp.Tool {
	return mcp.NewTool(ToolQuery,
		mcp.WithDescription("Search for places using natural language, such as \"quiet coffee shops with wifi\" "+
			"or \"family friendly restaurants\". Optionally centre the search on a latitude/longitude and "+
			"restrict it to a radius. Results can be ranked by relevance and summarised in a generated answer."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language description of what to find"),
		),
		mcp.WithNumber("latitude",
			mcp.Description("Latitude of the search centre"),
		),
		mcp.WithNumber("longitude",
			mcp.Description("Longitude of the search centre"),
		),
		mcp.WithNumber("radius",
			integer(),
			mcp.Description("Search radius in meters"),
			mcp.Min(100),
			mcp.Max(50000),
			mcp.DefaultNumber(defaultQueryRadius),
		),
		mcp.WithNumber("limit",
			integer(),
			mcp.Description("Maximum number of results"),
			mcp.Min(1),
			mcp.Max(100),
			mcp.DefaultNumber(defaultQueryLimit),
		),
		mcp.WithBoolean("rank",
			mcp.Description("Rank results by relevance to the query"),
			mcp.DefaultBool(defaultQueryRank),
		),
		mcp.WithBoolean("generate_answer",
			mcp.Description("Generate a natural language summary of the results"),
			mcp.DefaultBool(defaultQueryAnswer),
		),
	)
}

func (r *Registry) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in queryArgs
	if err := bindArguments(applyDefaults(ToolQuery, req.GetArguments()), &in); err != nil {
		return ErrorResponse(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}

	env := r.upstream.Query(ctx, camino.QueryRequest{
		Query:          in.Query,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		Radius:         in.Radius,
		Limit:          in.Limit,
		Rank:           in.Rank,
		GenerateAnswer: in.GenerateAnswer,
	})
	return envelopeResult(ctx, env)
}
