package camino

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Barneyjm/camino-mcp/pkg/version"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Camino API endpoint.
	DefaultBaseURL = "https://api.getcamino.ai"

	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 30 * time.Second

	// APIKeyHeader carries the API key on every request.
	APIKeyHeader = "X-API-Key"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 10 << 20
)

// Upstream endpoint paths.
const (
	PathQuery        = "/query"
	PathSearch       = "/search"
	PathRelationship = "/relationship"
	PathContext      = "/context"
	PathJourney      = "/journey"
	PathRoute        = "/route"
)

// Client calls the Camino API. Every operation makes exactly one attempt and
// reports failures through the returned Envelope rather than an error.
// A Client is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sends requests through a copy of hc. The copy's Timeout is
// replaced by the client's timeout; hc itself is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.httpClient = &cp
		}
	}
}

// WithRateLimit throttles outgoing calls to rps requests per second with the
// given burst. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Camino API client for baseURL authenticated with apiKey.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("camino: api key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("camino: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("camino: invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		apiKey:  apiKey,
		timeout: DefaultTimeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Timeout = c.timeout

	return c, nil
}

// BaseURL returns the API endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Query runs a natural language place query (GET /query).
func (c *Client) Query(ctx context.Context, req QueryRequest) Envelope {
	q := url.Values{}
	q.Set("q", req.Query)
	if req.Latitude != nil {
		q.Set("lat", formatFloat(*req.Latitude))
	}
	if req.Longitude != nil {
		q.Set("lon", formatFloat(*req.Longitude))
	}
	q.Set("radius", strconv.Itoa(req.Radius))
	q.Set("rank", strconv.FormatBool(req.Rank))
	q.Set("limit", strconv.Itoa(req.Limit))
	q.Set("answer", strconv.FormatBool(req.GenerateAnswer))

	payload, apiErr := c.do(ctx, http.MethodGet, PathQuery, q, nil)
	if apiErr != nil {
		return failed(apiErr, queryFallback(req))
	}
	return succeeded(payload)
}

// Search runs a free-form search (POST /search?q=...).
func (c *Client) Search(ctx context.Context, req SearchRequest) Envelope {
	q := url.Values{}
	q.Set("q", req.Query)

	payload, apiErr := c.do(ctx, http.MethodPost, PathSearch, q, nil)
	if apiErr != nil {
		return failed(apiErr, searchFallback(req))
	}
	return succeeded(payload)
}

// SpatialRelationship describes how two points relate (POST /relationship).
func (c *Client) SpatialRelationship(ctx context.Context, req RelationshipRequest) Envelope {
	include := req.Include
	if include == nil {
		include = []string{}
	}
	body := relationshipBody{
		Start:   toLatLon(req.Start),
		End:     toLatLon(req.End),
		Include: include,
	}

	payload, apiErr := c.do(ctx, http.MethodPost, PathRelationship, nil, body)
	if apiErr != nil {
		return failed(apiErr, relationshipFallback(req))
	}
	return succeeded(payload)
}

// PlaceContext describes the surroundings of a location (POST /context).
func (c *Client) PlaceContext(ctx context.Context, req ContextRequest) Envelope {
	body := contextBody{
		Location: toLatLon(req.Location),
		Radius:   req.Radius,
		Context:  req.Context,
	}

	payload, apiErr := c.do(ctx, http.MethodPost, PathContext, nil, body)
	if apiErr != nil {
		return failed(apiErr, contextFallback(req))
	}
	return succeeded(payload)
}

// JourneyPlanning plans a multi-stop journey (POST /journey).
func (c *Client) JourneyPlanning(ctx context.Context, req JourneyRequest) Envelope {
	waypoints := make([]journeyWaypoint, 0, len(req.Waypoints))
	for _, wp := range req.Waypoints {
		waypoints = append(waypoints, journeyWaypoint{
			Lat:     wp.Latitude,
			Lon:     wp.Longitude,
			Purpose: wp.Purpose,
		})
	}
	body := journeyBody{
		Waypoints: waypoints,
		Constraints: journeyConstraints{
			Transport:  req.TransportMode,
			TimeBudget: req.TimeBudget,
		},
	}

	payload, apiErr := c.do(ctx, http.MethodPost, PathJourney, nil, body)
	if apiErr != nil {
		return failed(apiErr, journeyFallback(req))
	}
	return succeeded(payload)
}

// RoutePlanning plans a route between two points (GET /route).
func (c *Client) RoutePlanning(ctx context.Context, req RouteRequest) Envelope {
	q := url.Values{}
	q.Set("start_lat", formatFloat(req.Start.Latitude))
	q.Set("start_lon", formatFloat(req.Start.Longitude))
	q.Set("end_lat", formatFloat(req.End.Latitude))
	q.Set("end_lon", formatFloat(req.End.Longitude))
	q.Set("mode", req.Mode)
	q.Set("include_geometry", strconv.FormatBool(req.IncludeGeometry))

	payload, apiErr := c.do(ctx, http.MethodGet, PathRoute, q, nil)
	if apiErr != nil {
		return failed(apiErr, routeFallback(req))
	}
	return succeeded(payload)
}

// do performs a single request and returns the raw JSON payload of a 2xx
// response. Any other outcome is reported as an *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, *APIError) {
	logger := c.logger.With("method", method, "path", path)

	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			logger.Error("failed to marshal request body", "error", err)
			return nil, DataError(fmt.Sprintf("failed to encode request: %v", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		logger.Error("failed to create request", "error", err)
		return nil, NetworkError(err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.Debug("rate limiter wait error", "error", err)
			return nil, NetworkError(err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("failed to execute request", "error", err)
		return nil, NetworkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		logger.Error("failed to read response", "status", resp.StatusCode, "error", err)
		return nil, NetworkError(err)
	}

	logger.Debug("upstream response",
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := NewAPIError(resp.StatusCode, errorDetail(resp.StatusCode, data))
		logger.Error("upstream returned error", "status", resp.StatusCode, "detail", apiErr.Message)
		return nil, apiErr
	}

	if len(bytes.TrimSpace(data)) == 0 {
		logger.Error("upstream returned empty body", "status", resp.StatusCode)
		return nil, DataError("empty response from Camino API")
	}
	if !json.Valid(data) {
		logger.Error("upstream returned malformed body", "status", resp.StatusCode)
		return nil, DataError("malformed JSON response from Camino API")
	}

	return json.RawMessage(data), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
