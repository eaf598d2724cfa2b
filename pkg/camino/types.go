// Package camino provides a client for the Camino location intelligence API.
package camino

// Coordinate is a WGS-84 point. Values are forwarded as given; range checks
// are left to the API.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Waypoint is a journey stop together with the reason for visiting it.
type Waypoint struct {
	Coordinate
	Purpose string `json:"purpose"`
}

// QueryRequest is a natural language place search.
// Latitude and Longitude are optional and each is sent when set.
type QueryRequest struct {
	Query          string
	Latitude       *float64
	Longitude      *float64
	Radius         int
	Limit          int
	Rank           bool
	GenerateAnswer bool
}

// SearchRequest is a free-form place search.
type SearchRequest struct {
	Query string
}

// RelationshipRequest asks how two points relate to each other.
type RelationshipRequest struct {
	Start   Coordinate
	End     Coordinate
	Include []string
}

// ContextRequest asks what is around a location.
type ContextRequest struct {
	Location Coordinate
	Radius   string
	Context  string
}

// JourneyRequest plans a multi-stop journey.
type JourneyRequest struct {
	Waypoints     []Waypoint
	TransportMode string
	TimeBudget    string
}

// RouteRequest asks for a route between two points.
type RouteRequest struct {
	Start           Coordinate
	End             Coordinate
	Mode            string
	IncludeGeometry bool
}

// Wire shapes for the JSON bodies the API expects.
type (
	latLon struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}

	relationshipBody struct {
		Start   latLon   `json:"start"`
		End     latLon   `json:"end"`
		Include []string `json:"include"`
	}

	contextBody struct {
		Location latLon `json:"location"`
		Radius   string `json:"radius"`
		Context  string `json:"context,omitempty"`
	}

	journeyWaypoint struct {
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		Purpose string  `json:"purpose"`
	}

	journeyConstraints struct {
		Transport  string `json:"transport"`
		TimeBudget string `json:"time_budget,omitempty"`
	}

	journeyBody struct {
		Waypoints   []journeyWaypoint  `json:"waypoints"`
		Constraints journeyConstraints `json:"constraints"`
	}
)

func toLatLon(c Coordinate) latLon {
	return latLon{Lat: c.Latitude, Lon: c.Longitude}
}
