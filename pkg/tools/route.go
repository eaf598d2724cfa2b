package tools

import (
	"context"
	"fmt"

	"github.com/Barneyjm/camino-mcp/pkg/camino"
	"github.com/mark3labs/mcp-go/mcp"
)

type routeArgs struct {
	StartLatitude   float64 `json:"start_latitude"`
	StartLongitude  float64 `json:"start_longitude"`
	EndLatitude     float64 `json:"end_latitude"`
	EndLongitude    float64 `json:"end_longitude"`
	Mode            string  `json:"mode"`
	IncludeGeometry bool    `json:"include_geometry"`
}

var routeModes = []string{"car", "bike", "foot"}

// RoutePlanningTool returns a tool definition for point to point routes
func RoutePlanningTool() mcp.Tool {
	return mcp.NewTool(ToolRoutePlanning,
		mcp.WithDescription("Plan a route between two points by car, bike or on foot. Returns distance, "+
			"duration and turn-by-turn directions, and the route geometry when requested."),
		mcp.WithNumber("start_latitude",
			mcp.Required(),
			mcp.Description("Latitude of the starting point"),
		),
		mcp.WithNumber("start_longitude",
			mcp.Required(),
			mcp.Description("Longitude of the starting point"),
		),
		mcp.WithNumber("end_latitude",
			mcp.Required(),
			mcp.Description("Latitude of the destination"),
		),
		mcp.WithNumber("end_longitude",
			mcp.Required(),
			mcp.Description("Longitude of the destination"),
		),
		mcp.WithString("mode",
			mcp.Description("Mode of transport"),
			mcp.Enum(routeModes...),
			mcp.DefaultString(defaultRouteMode),
		),
		mcp.WithBoolean("include_geometry",
			mcp.Description("Include the route geometry in the response"),
			mcp.DefaultBool(defaultIncludeGeometry),
		),
	)
}

func (r *Registry) handleRoutePlanning(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in routeArgs
	if err := bindArguments(applyDefaults(ToolRoutePlanning, req.GetArguments()), &in); err != nil {
		return ErrorResponse(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}

	env := r.upstream.RoutePlanning(ctx, camino.RouteRequest{
		Start:           camino.Coordinate{Latitude: in.StartLatitude, Longitude: in.StartLongitude},
		End:             camino.Coordinate{Latitude: in.EndLatitude, Longitude: in.EndLongitude},
		Mode:            in.Mode,
		IncludeGeometry: in.IncludeGeometry,
	})
	return envelopeResult(ctx, env)
}
