package tools

import (
	"context"
	"fmt"

	"github.com/Barneyjm/camino-mcp/pkg/camino"
	"github.com/mark3labs/mcp-go/mcp"
)

type journeyArgs struct {
	Waypoints []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Purpose   string  `json:"purpose"`
	} `json:"waypoints"`
	TransportMode string `json:"transport_mode"`
	TimeBudget    string `json:"time_budget"`
}

var transportModes = []string{"walking", "driving", "cycling"}

// JourneyPlanningTool returns a tool definition for multi-stop journeys
func JourneyPlanningTool() mcp.Tool {
	return mcp.NewTool(ToolJourneyPlanning,
		mcp.WithDescription("Plan a journey through two or more waypoints, each with a purpose such as "+
			"\"coffee\" or \"museum visit\". Reports whether the journey is feasible for the chosen "+
			"transport mode and optional time budget, with per-leg distances and durations."),
		mcp.WithArray("waypoints",
			mcp.Required(),
			mcp.Description("Ordered stops of the journey, at least two"),
			mcp.MinItems(2),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"latitude":  map[string]any{"type": "number", "description": "Latitude of the stop"},
					"longitude": map[string]any{"type": "number", "description": "Longitude of the stop"},
					"purpose":   map[string]any{"type": "string", "description": "Why the stop is part of the journey"},
				},
				"required": []string{"latitude", "longitude", "purpose"},
			}),
		),
		mcp.WithString("transport_mode",
			mcp.Description("How the journey is travelled"),
			mcp.Enum(transportModes...),
			mcp.DefaultString(defaultTransportMode),
		),
		mcp.WithString("time_budget",
			mcp.Description("Time available for the whole journey, for example \"2 hours\""),
		),
	)
}

func (r *Registry) handleJourneyPlanning(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in journeyArgs
	if err := bindArguments(applyDefaults(ToolJourneyPlanning, req.GetArguments()), &in); err != nil {
		return ErrorResponse(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}
	if len(in.Waypoints) < 2 {
		return ErrorResponse("At least two waypoints are required"), nil
	}

	waypoints := make([]camino.Waypoint, 0, len(in.Waypoints))
	for _, wp := range in.Waypoints {
		waypoints = append(waypoints, camino.Waypoint{
			Coordinate: camino.Coordinate{Latitude: wp.Latitude, Longitude: wp.Longitude},
			Purpose:    wp.Purpose,
		})
	}

	env := r.upstream.JourneyPlanning(ctx, camino.JourneyRequest{
		Waypoints:     waypoints,
		TransportMode: in.TransportMode,
		TimeBudget:    in.TimeBudget,
	})
	return envelopeResult(ctx, env)
}
