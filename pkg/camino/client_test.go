package camino

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Barneyjm/camino-mcp/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(testutil.DiscardLogger())}, opts...)
	c, err := NewClient(baseURL, "test-key", opts...)
	require.NoError(t, err)
	return c
}

func ptr(f float64) *float64 { return &f }

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		apiKey  string
		wantErr bool
	}{
		{name: "valid", baseURL: "https://api.example.com", apiKey: "k"},
		{name: "default base url", baseURL: "", apiKey: "k"},
		{name: "missing api key", baseURL: "https://api.example.com", apiKey: "", wantErr: true},
		{name: "bad scheme", baseURL: "ftp://api.example.com", apiKey: "k", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.baseURL, tt.apiKey)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultTimeout, c.Timeout())
		})
	}

	c, err := NewClient("", "k")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c, err = NewClient("https://api.example.com/", "k", WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", c.BaseURL())
	assert.Equal(t, 5*time.Second, c.Timeout())
}

// countingTransport counts round trips through the wrapped transport.
type countingTransport struct {
	next  http.RoundTripper
	count atomic.Int32
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.count.Add(1)
	return c.next.RoundTrip(r)
}

func TestClient_WithHTTPClient(t *testing.T) {
	up := testutil.NewFakeUpstream(t)
	up.Respond(PathSearch, http.StatusOK, `{"results":[]}`)

	rt := &countingTransport{next: http.DefaultTransport}
	hc := &http.Client{Transport: rt, Timeout: time.Minute}
	c := newTestClient(t, up.URL, WithHTTPClient(hc), WithTimeout(2*time.Second))

	env := c.Search(context.Background(), SearchRequest{Query: "coffee"})
	require.True(t, env.Success)
	assert.Equal(t, int32(1), rt.count.Load())

	assert.Equal(t, time.Minute, hc.Timeout, "caller's client must not be modified")
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, hc, c.httpClient)
}

func TestClient_Headers(t *testing.T) {
	up := testutil.NewFakeUpstream(t)
	up.Respond(PathSearch, http.StatusOK, `{"results":[]}`)
	c := newTestClient(t, up.URL)

	env := c.Search(context.Background(), SearchRequest{Query: "coffee"})
	require.True(t, env.Success)

	req, ok := up.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "test-key", req.Header.Get(APIKeyHeader))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.NotContains(t, req.Query.Encode(), "test-key")
	assert.NotContains(t, string(req.Body), "test-key")
}

func TestClient_Query(t *testing.T) {
	up := testutil.NewFakeUpstream(t)
	payload := `{"query":"coffee","results":[{"name":"Blue Bottle"}],"total_found":1}`
	up.Respond(PathQuery, http.StatusOK, payload)
	c := newTestClient(t, up.URL)

	t.Run("without coordinates", func(t *testing.T) {
		env := c.Query(context.Background(), QueryRequest{
			Query: "coffee", Radius: 1000, Limit: 20, Rank: true, GenerateAnswer: true,
		})
		require.True(t, env.Success)
		assert.JSONEq(t, payload, string(env.Data.(json.RawMessage)))

		req, _ := up.LastRequest()
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "coffee", req.Query.Get("q"))
		assert.Equal(t, "1000", req.Query.Get("radius"))
		assert.Equal(t, "20", req.Query.Get("limit"))
		assert.Equal(t, "true", req.Query.Get("rank"))
		assert.Equal(t, "true", req.Query.Get("answer"))
		assert.False(t, req.Query.Has("lat"))
		assert.False(t, req.Query.Has("lon"))
	})

	t.Run("with coordinates", func(t *testing.T) {
		env := c.Query(context.Background(), QueryRequest{
			Query: "coffee", Latitude: ptr(40.7128), Longitude: ptr(-74.006),
			Radius: 500, Limit: 5,
		})
		require.True(t, env.Success)

		req, _ := up.LastRequest()
		assert.Equal(t, "40.7128", req.Query.Get("lat"))
		assert.Equal(t, "-74.006", req.Query.Get("lon"))
		assert.Equal(t, "false", req.Query.Get("rank"))
		assert.Equal(t, "false", req.Query.Get("answer"))
	})

	t.Run("latitude only", func(t *testing.T) {
		env := c.Query(context.Background(), QueryRequest{
			Query: "coffee", Latitude: ptr(40.7), Radius: 1000, Limit: 20,
		})
		require.True(t, env.Success)

		req, _ := up.LastRequest()
		assert.Equal(t, "40.7", req.Query.Get("lat"))
		assert.False(t, req.Query.Has("lon"))
	})

	t.Run("longitude only", func(t *testing.T) {
		env := c.Query(context.Background(), QueryRequest{
			Query: "coffee", Longitude: ptr(-74.006), Radius: 1000, Limit: 20,
		})
		require.True(t, env.Success)

		req, _ := up.LastRequest()
		assert.False(t, req.Query.Has("lat"))
		assert.Equal(t, "-74.006", req.Query.Get("lon"))
	})
}

func TestClient_Search(t *testing.T) {
	up := testutil.NewFakeUpstream(t)
	up.Respond(PathSearch, http.StatusOK, `[{"display_name":"Eiffel Tower"}]`)
	c := newTestClient(t, up.URL)

	env := c.Search(context.Background(), SearchRequest{Query: "Eiffel Tower"})
	require.True(t, env.Success)
	assert.JSONEq(t, `[{"display_name":"Eiffel Tower"}]`, string(env.Data.(json.RawMessage)))

	req, _ := up.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "Eiffel Tower", req.Query.Get("q"))
	assert.Empty(t, req.Body)
}

func TestClient_SpatialRelationship(t *testing.T) {
	up := testutil.NewFakeUpstream(t)
	up.Respond(PathRelationship, http.StatusOK, `{"distance":"1.2km"}`)
	c := newTestClient(t, up.URL)

	env := c.SpatialRelationship(context.Background(), RelationshipRequest{
		Start:   Coordinate{Latitude: 48.8584, Longitude: 2.2945},
		End:     Coordinate{Latitude: 48.8606, Longitude: 2.3376},
		Include: []string{"distance", "direction"},
	})
	require.True(t, env.Success)

	req, _ := up.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.JSONEq(t, `{
		"start": {"lat": 48.8584, "lon": 2.2945},
		"end": {"lat": 48.8606, "lon": 2.3376},
		"include": ["distance", "direction"]
	}`, string(req.Body))
}

func TestClient_PlaceContext(t *testing.T) {
	up := testutil.NewFakeUpstream(t)
	up.Respond(PathContext, http.StatusOK, `{"area_description":"busy"}`)
	c := newTestClient(t, up.URL)

	env := c.PlaceContext(context.Background(), ContextRequest{
		Location: Coordinate{Latitude: 51.5, Longitude: -0.12},
		Radius:   "500m",
	})
	require.True(t, env.Success)

	req, _ := up.LastRequest()
	assert.JSONEq(t, `{"location":{"lat":51.5,"lon":-0.12},"radius":"500m"}`, string(req.Body))

	c.PlaceContext(context.Background(), ContextRequest{
		Location: Coordinate{Latitude: 51.5, Longitude: -0.12},
		Radius:   "1km",
		Context:  "lunch spots",
	})
	req, _ = up.LastRequest()
	assert.JSONEq(t, `{"location":{"lat":51.5,"lon":-0.12},"radius":"1km","context":"lunch spots"}`, string(req.Body))
}

func TestClient_JourneyPlanning(t *testing.T) {
	up := testutil.NewFakeUpstream(t)
	up.Respond(PathJourney, http.StatusOK, `{"feasible":true}`)
	c := newTestClient(t, up.URL)

	env := c.JourneyPlanning(context.Background(), JourneyRequest{
		Waypoints: []Waypoint{
			{Coordinate: Coordinate{Latitude: 1, Longitude: 2}, Purpose: "start"},
			{Coordinate: Coordinate{Latitude: 3, Longitude: 4}, Purpose: "lunch"},
		},
		TransportMode: "cycling",
		TimeBudget:    "2 hours",
	})
	require.True(t, env.Success)

	req, _ := up.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.JSONEq(t, `{
		"waypoints": [
			{"lat": 1, "lon": 2, "purpose": "start"},
			{"lat": 3, "lon": 4, "purpose": "lunch"}
		],
		"constraints": {"transport": "cycling", "time_budget": "2 hours"}
	}`, string(req.Body))
}

func TestClient_RoutePlanning(t *testing.T) {
	up := testutil.NewFakeUpstream(t)
	up.Respond(PathRoute, http.StatusOK, `{"distance":1234.5}`)
	c := newTestClient(t, up.URL)

	env := c.RoutePlanning(context.Background(), RouteRequest{
		Start:           Coordinate{Latitude: 37.7749, Longitude: -122.4194},
		End:             Coordinate{Latitude: 37.8044, Longitude: -122.2712},
		Mode:            "bike",
		IncludeGeometry: true,
	})
	require.True(t, env.Success)

	req, _ := up.LastRequest()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "37.7749", req.Query.Get("start_lat"))
	assert.Equal(t, "-122.4194", req.Query.Get("start_lon"))
	assert.Equal(t, "37.8044", req.Query.Get("end_lat"))
	assert.Equal(t, "-122.2712", req.Query.Get("end_lon"))
	assert.Equal(t, "bike", req.Query.Get("mode"))
	assert.Equal(t, "true", req.Query.Get("include_geometry"))
}

func TestClient_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantError    string
		wantGuidance string
	}{
		{
			name:         "detail string",
			status:       http.StatusInternalServerError,
			body:         `{"detail":"index unavailable"}`,
			wantError:    "index unavailable",
			wantGuidance: GuidanceServer,
		},
		{
			name:         "validation detail list",
			status:       http.StatusUnprocessableEntity,
			body:         `{"detail":[{"loc":["query","lat"],"msg":"field required"}]}`,
			wantError:    "lat: field required",
			wantGuidance: GuidanceBadRequest,
		},
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			body:         `{"message":"invalid api key"}`,
			wantError:    "invalid api key",
			wantGuidance: GuidanceAuth,
		},
		{
			name:         "rate limited plain text",
			status:       http.StatusTooManyRequests,
			body:         "slow down",
			wantError:    "slow down",
			wantGuidance: GuidanceRateLimit,
		},
		{
			name:         "empty body",
			status:       http.StatusBadGateway,
			body:         "",
			wantError:    "Bad Gateway",
			wantGuidance: GuidanceServer,
		},
		{
			name:         "malformed success body",
			status:       http.StatusOK,
			body:         "{not json",
			wantError:    "malformed JSON response from Camino API",
			wantGuidance: GuidanceDataError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := testutil.NewFakeUpstream(t)
			up.Respond(PathRoute, tt.status, tt.body)
			c := newTestClient(t, up.URL)

			req := RouteRequest{
				Start: Coordinate{Latitude: 1, Longitude: 2},
				End:   Coordinate{Latitude: 3, Longitude: 4},
				Mode:  "foot",
			}
			env := c.RoutePlanning(context.Background(), req)

			assert.False(t, env.Success)
			assert.Equal(t, tt.wantError, env.Error)
			assert.Equal(t, tt.wantGuidance, env.Message)
			assert.Equal(t, routeFallback(req), env.Data)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	c := newTestClient(t, testutil.DeadURL(t))

	env := c.Query(context.Background(), QueryRequest{Query: "museums", Radius: 1000, Limit: 20})
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
	assert.Equal(t, GuidanceNetworkError, env.Message)

	fallback, ok := env.Data.(QueryFallback)
	require.True(t, ok)
	assert.Equal(t, "museums", fallback.Query)
	assert.Empty(t, fallback.Results)
	assert.NotNil(t, fallback.Results)
	assert.Zero(t, fallback.TotalFound)
	assert.False(t, fallback.AIRanked)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := newTestClient(t, srv.URL, WithTimeout(50*time.Millisecond))

	env := c.Search(context.Background(), SearchRequest{Query: "slow"})
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
	assert.Equal(t, SearchFallback{Query: "slow", Results: []any{}}, env.Data)
}

func TestClient_RateLimitCancelled(t *testing.T) {
	up := testutil.NewFakeUpstream(t)
	up.Respond(PathSearch, http.StatusOK, `{}`)
	c := newTestClient(t, up.URL, WithRateLimit(0.001, 1))

	require.True(t, c.Search(context.Background(), SearchRequest{Query: "first"}).Success)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	env := c.Search(ctx, SearchRequest{Query: "second"})
	assert.False(t, env.Success)
	assert.Len(t, up.Requests(), 1)
}

func TestEnvelope_JSON(t *testing.T) {
	ok := succeeded(json.RawMessage(`{"a":1}`))
	data, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"a":1}}`, string(data))

	bad := failed(NewAPIError(http.StatusServiceUnavailable, "down"), searchFallback(SearchRequest{Query: "x"}))
	data, err = json.Marshal(bad)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"data": {"query": "x", "results": [], "total_found": 0},
		"error": "down",
		"message": "`+GuidanceUnavailable+`"
	}`, string(data))
}
