package tools

import "github.com/mark3labs/mcp-go/mcp"

// Default values for optional tool arguments. The same values appear in the
// advertised input schemas and in toolDefaults.
const (
	defaultQueryRadius     = 1000
	defaultQueryLimit      = 20
	defaultQueryRank       = true
	defaultQueryAnswer     = true
	defaultContextRadius   = "500m"
	defaultTransportMode   = "walking"
	defaultRouteMode       = "car"
	defaultIncludeGeometry = false
)

var relationshipAspects = []string{"distance", "direction", "travel_time", "description"}

// toolDefaults lists, per tool, the arguments filled in when the caller
// omits them.
var toolDefaults = map[string]map[string]any{
	ToolQuery: {
		"radius":          defaultQueryRadius,
		"limit":           defaultQueryLimit,
		"rank":            defaultQueryRank,
		"generate_answer": defaultQueryAnswer,
	},
	ToolSpatialRelationship: {
		"include": relationshipAspects,
	},
	ToolPlaceContext: {
		"radius": defaultContextRadius,
	},
	ToolJourneyPlanning: {
		"transport_mode": defaultTransportMode,
	},
	ToolRoutePlanning: {
		"mode":             defaultRouteMode,
		"include_geometry": defaultIncludeGeometry,
	},
}

// applyDefaults returns a copy of args with missing or null optional
// arguments set. args itself is never modified.
func applyDefaults(name string, args map[string]any) map[string]any {
	out := make(map[string]any, len(args)+len(toolDefaults[name]))
	for k, v := range args {
		out[k] = v
	}
	for k, v := range toolDefaults[name] {
		if cur, ok := out[k]; !ok || cur == nil {
			if s, isSlice := v.([]string); isSlice {
				v = append([]string(nil), s...)
			}
			out[k] = v
		}
	}
	return out
}

// integer narrows a WithNumber property to whole numbers.
func integer() mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = "integer"
	}
}
