package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// validator checks tool arguments against each tool's advertised input schema.
type validator struct {
	schemas map[string]*jsonschema.Schema
}

func newValidator(defs []ToolDefinition) (*validator, error) {
	v := &validator{schemas: make(map[string]*jsonschema.Schema, len(defs))}
	for _, def := range defs {
		schema, err := compileInputSchema(def.Tool)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", def.Name, err)
		}
		v.schemas[def.Name] = schema
	}
	return v, nil
}

func compileInputSchema(tool mcp.Tool) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	var schemaDoc any
	if err := json.Unmarshal(raw, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validate reports why args do not satisfy the schema of the named tool.
// Tools without a compiled schema accept anything.
func (v *validator) validate(name string, args map[string]any) error {
	schema, ok := v.schemas[name]
	if !ok {
		return nil
	}

	if args == nil {
		args = map[string]any{}
	}
	// Round trip so the validator only sees JSON-native values.
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}

	return schema.Validate(doc)
}

// middleware rejects invalid arguments before the handler runs.
func (v *validator) middleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := v.validate(req.Params.Name, req.GetArguments()); err != nil {
			markOutcome(ctx, outcomeInvalid)
			return ErrorResponse(fmt.Sprintf("Invalid arguments for %s: %v", req.Params.Name, err)), nil
		}
		return next(ctx, req)
	}
}
