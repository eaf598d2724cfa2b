package camino

// Fallback payloads returned in a failed Envelope. Each echoes what the
// caller asked for so an agent can still reason about the request.

// QueryFallback is returned when a query cannot be answered.
type QueryFallback struct {
	Query      string   `json:"query"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Results    []any    `json:"results"`
	TotalFound int      `json:"total_found"`
	AIRanked   bool     `json:"ai_ranked"`
}

// SearchFallback is returned when a search cannot be answered.
type SearchFallback struct {
	Query      string `json:"query"`
	Results    []any  `json:"results"`
	TotalFound int    `json:"total_found"`
}

// RelationshipFallback is returned when a spatial relationship cannot be computed.
type RelationshipFallback struct {
	Start   Coordinate `json:"start"`
	End     Coordinate `json:"end"`
	Include []string   `json:"include"`
}

// ContextFallback is returned when place context cannot be fetched.
type ContextFallback struct {
	Location     Coordinate `json:"location"`
	Radius       string     `json:"radius"`
	Context      string     `json:"context,omitempty"`
	NearbyPlaces []any      `json:"nearby_places"`
}

// JourneyFallback is returned when a journey cannot be planned.
type JourneyFallback struct {
	Waypoints     []Waypoint `json:"waypoints"`
	TransportMode string     `json:"transport_mode"`
	TimeBudget    string     `json:"time_budget,omitempty"`
	Feasible      bool       `json:"feasible"`
}

// RouteFallback is returned when a route cannot be planned.
type RouteFallback struct {
	Start           Coordinate `json:"start"`
	End             Coordinate `json:"end"`
	Mode            string     `json:"mode"`
	IncludeGeometry bool       `json:"include_geometry"`
}

func queryFallback(req QueryRequest) QueryFallback {
	return QueryFallback{
		Query:     req.Query,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Results:   []any{},
	}
}

func searchFallback(req SearchRequest) SearchFallback {
	return SearchFallback{Query: req.Query, Results: []any{}}
}

func relationshipFallback(req RelationshipRequest) RelationshipFallback {
	include := req.Include
	if include == nil {
		include = []string{}
	}
	return RelationshipFallback{Start: req.Start, End: req.End, Include: include}
}

func contextFallback(req ContextRequest) ContextFallback {
	return ContextFallback{
		Location:     req.Location,
		Radius:       req.Radius,
		Context:      req.Context,
		NearbyPlaces: []any{},
	}
}

func journeyFallback(req JourneyRequest) JourneyFallback {
	waypoints := req.Waypoints
	if waypoints == nil {
		waypoints = []Waypoint{}
	}
	return JourneyFallback{
		Waypoints:     waypoints,
		TransportMode: req.TransportMode,
		TimeBudget:    req.TimeBudget,
	}
}

func routeFallback(req RouteRequest) RouteFallback {
	return RouteFallback{
		Start:           req.Start,
		End:             req.End,
		Mode:            req.Mode,
		IncludeGeometry: req.IncludeGeometry,
	}
}
