package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Barneyjm/camino-mcp/pkg/camino"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorResponse is used for consistent error reporting
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// envelopeResult turns an upstream envelope into a tool result. A successful
// call yields the upstream payload alone; a failed one yields the whole
// envelope so the caller sees error, guidance and fallback data.
func envelopeResult(ctx context.Context, env camino.Envelope) (*mcp.CallToolResult, error) {
	var body any = env
	if env.Success {
		body = env.Data
	} else {
		markOutcome(ctx, outcomeFallback)
	}

	text, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(text)), nil
}

// bindArguments decodes the defaulted argument map into a typed struct.
func bindArguments(args map[string]any, target any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
