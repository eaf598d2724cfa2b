package camino

import (
	"errors"
	"net/http"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	err := NewAPIError(http.StatusNotFound, "no such place")
	assert.Equal(t, "Camino API error (404): no such place", err.Error())
	assert.Equal(t, GuidanceNotFound, err.Guidance)
	assert.True(t, err.Recoverable)

	netErr := NetworkError(errors.New("connection refused"))
	assert.Equal(t, "Camino API error: connection refused", netErr.Error())
	assert.Zero(t, netErr.StatusCode)
}

func TestNewAPIError_Guidance(t *testing.T) {
	tests := []struct {
		status      int
		guidance    string
		recoverable bool
	}{
		{http.StatusTooManyRequests, GuidanceRateLimit, true},
		{http.StatusUnauthorized, GuidanceAuth, true},
		{http.StatusForbidden, GuidanceAuth, true},
		{http.StatusNotFound, GuidanceNotFound, true},
		{http.StatusGatewayTimeout, GuidanceTimeout, true},
		{http.StatusBadRequest, GuidanceBadRequest, false},
		{http.StatusUnprocessableEntity, GuidanceBadRequest, false},
		{http.StatusServiceUnavailable, GuidanceUnavailable, true},
		{http.StatusInternalServerError, GuidanceServer, true},
		{http.StatusTeapot, GuidanceGeneral, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := NewAPIError(tt.status, "x")
			assert.Equal(t, tt.guidance, err.Guidance)
			assert.Equal(t, tt.recoverable, err.Recoverable)
			assert.Equal(t, ServiceName, err.Service)
		})
	}
}

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", 500, `{"detail":"boom"}`, "boom"},
		{"detail list", 422, `{"detail":[{"loc":["body","start","lat"],"msg":"value is not a valid float"},{"msg":"missing"}]}`, "lat: value is not a valid float; missing"},
		{"message field", 401, `{"message":"bad key"}`, "bad key"},
		{"error field", 403, `{"error":"forbidden"}`, "forbidden"},
		{"detail wins over message", 400, `{"detail":"first","message":"second"}`, "first"},
		{"raw body", 500, "  upstream exploded\n", "upstream exploded"},
		{"unrecognised json", 500, `{"other":1}`, `{"other":1}`},
		{"empty body", 503, "", "Service Unavailable"},
		{"unknown status", 599, "", "unexpected status 599"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorDetail(tt.status, []byte(tt.body)))
		})
	}
}

func TestFallbacks_NeverNilSlices(t *testing.T) {
	assert.NotNil(t, queryFallback(QueryRequest{}).Results)
	assert.NotNil(t, searchFallback(SearchRequest{}).Results)
	assert.NotNil(t, relationshipFallback(RelationshipRequest{}).Include)
	assert.NotNil(t, contextFallback(ContextRequest{}).NearbyPlaces)
	assert.NotNil(t, journeyFallback(JourneyRequest{}).Waypoints)
}

func TestFallbacks_EchoInput(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	lat := gen.Float64Range(-90, 90)
	lon := gen.Float64Range(-180, 180)

	properties.Property("query fallback echoes query and coordinates", prop.ForAll(
		func(q string, la, lo float64) bool {
			fb := queryFallback(QueryRequest{Query: q, Latitude: &la, Longitude: &lo})
			return fb.Query == q &&
				*fb.Latitude == la && *fb.Longitude == lo &&
				len(fb.Results) == 0 && fb.TotalFound == 0 && !fb.AIRanked
		},
		gen.AnyString(), lat, lon,
	))

	properties.Property("search fallback echoes query", prop.ForAll(
		func(q string) bool {
			fb := searchFallback(SearchRequest{Query: q})
			return fb.Query == q && len(fb.Results) == 0 && fb.TotalFound == 0
		},
		gen.AnyString(),
	))

	properties.Property("route fallback echoes endpoints and mode", prop.ForAll(
		func(sLat, sLon, eLat, eLon float64, mode string, geometry bool) bool {
			req := RouteRequest{
				Start:           Coordinate{Latitude: sLat, Longitude: sLon},
				End:             Coordinate{Latitude: eLat, Longitude: eLon},
				Mode:            mode,
				IncludeGeometry: geometry,
			}
			fb := routeFallback(req)
			return fb.Start == req.Start && fb.End == req.End &&
				fb.Mode == mode && fb.IncludeGeometry == geometry
		},
		lat, lon, lat, lon, gen.OneConstOf("car", "bike", "foot"), gen.Bool(),
	))

	properties.Property("context fallback echoes location and radius", prop.ForAll(
		func(la, lo float64, radius string) bool {
			fb := contextFallback(ContextRequest{Location: Coordinate{Latitude: la, Longitude: lo}, Radius: radius})
			return fb.Location.Latitude == la && fb.Location.Longitude == lo &&
				fb.Radius == radius && len(fb.NearbyPlaces) == 0
		},
		lat, lon, gen.AlphaString(),
	))

	properties.Property("journey fallback is never feasible", prop.ForAll(
		func(n int, mode string) bool {
			wps := make([]Waypoint, n)
			fb := journeyFallback(JourneyRequest{Waypoints: wps, TransportMode: mode})
			return !fb.Feasible && len(fb.Waypoints) == n && fb.TransportMode == mode
		},
		gen.IntRange(0, 10), gen.OneConstOf("walking", "driving", "cycling"),
	))

	properties.TestingRun(t)
}
