package tools

import (
	"context"
	"fmt"

	"github.com/Barneyjm/camino-mcp/pkg/camino"
	"github.com/mark3labs/mcp-go/mcp"
)

type relationshipArgs struct {
	StartLatitude  float64  `json:"start_latitude"`
	StartLongitude float64  `json:"start_longitude"`
	EndLatitude    float64  `json:"end_latitude"`
	EndLongitude   float64  `json:"end_longitude"`
	Include        []string `json:"include"`
}

// SpatialRelationshipTool returns a tool definition describing how two points relate
func SpatialRelationshipTool() mcp.Tool {
	return mcp.NewTool(ToolSpatialRelationship,
		mcp.WithDescription("Describe the spatial relationship between two points: how far apart they are, "+
			"the compass direction from start to end, estimated travel time and a plain language description."),
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
			mcp.Description("Latitude of the end point"),
		),
		mcp.WithNumber("end_longitude",
			mcp.Required(),
			mcp.Description("Longitude of the end point"),
		),
		mcp.WithArray("include",
			mcp.Description("Aspects of the relationship to compute"),
			mcp.Items(map[string]any{
				"type": "string",
				"enum": relationshipAspects,
			}),
			mcp.DefaultArray(relationshipAspects),
		),
	)
}

func (r *Registry) handleSpatialRelationship(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in relationshipArgs
	if err := bindArguments(applyDefaults(ToolSpatialRelationship, req.GetArguments()), &in); err != nil {
		return ErrorResponse(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}

	env := r.upstream.SpatialRelationship(ctx, camino.RelationshipRequest{
		Start:   camino.Coordinate{Latitude: in.StartLatitude, Longitude: in.StartLongitude},
		End:     camino.Coordinate{Latitude: in.EndLatitude, Longitude: in.EndLongitude},
		Include: in.Include,
	})
	return envelopeResult(ctx, env)
}
