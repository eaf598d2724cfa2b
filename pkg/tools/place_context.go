package tools

import (
	"context"
	"fmt"

	"github.com/Barneyjm/camino-mcp/pkg/camino"
	"github.com/mark3labs/mcp-go/mcp"
)

type placeContextArgs struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    string  `json:"radius"`
	Context   string  `json:"context"`
}

// PlaceContextTool returns a tool definition for describing a location's surroundings
func PlaceContextTool() mcp.Tool {
	return mcp.NewTool(ToolPlaceContext,
		mcp.WithDescription("Describe what is around a location: the character of the area and nearby "+
			"places of interest. An optional context such as \"lunch options\" or \"safety at night\" "+
			"focuses the description."),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("Latitude of the location"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("Longitude of the location"),
		),
		mcp.WithString("radius",
			mcp.Description("Area to consider, for example \"500m\" or \"2km\""),
			mcp.DefaultString(defaultContextRadius),
		),
		mcp.WithString("context",
			mcp.Description("What the caller wants to know about the area"),
		),
	)
}

func (r *Registry) handlePlaceContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in placeContextArgs
	if err := bindArguments(applyDefaults(ToolPlaceContext, req.GetArguments()), &in); err != nil {
		return ErrorResponse(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}

	env := r.upstream.PlaceContext(ctx, camino.ContextRequest{
		Location: camino.Coordinate{Latitude: in.Latitude, Longitude: in.Longitude},
		Radius:   in.Radius,
		Context:  in.Context,
	})
	return envelopeResult(ctx, env)
}
