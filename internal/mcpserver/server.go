package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leofalp/intake/core/form"
	"github.com/leofalp/intake/core/schema"
)

// Tool names.
const (
	ToolExtract = "intake_extract"
	ToolSave    = "intake_save"
	ToolSchema  = "intake_schema"
)

// sessionID is shared by every call: one MCP client drives one form.
const sessionID = "mcp"

// New returns an MCP server with the intake tools registered.
func New(service *form.Service, sc schema.Schema, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "intake", Version: version}, nil)
	Register(srv, service, sc)
	return srv
}

// Register adds the intake tools to srv.
func Register(srv *mcp.Server, service *form.Service, sc schema.Schema) {
	registerExtract(srv, service)
	registerSave(srv, service)
	registerSchema(srv, sc)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

type extractReq struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

func registerExtract(srv *mcp.Server, service *form.Service) {
	tool := &mcp.Tool{
		Name:        ToolExtract,
		Description: "Extract a patient intake record from free text. Returns the filled form fields.",
		InputSchema: inputSchema(map[string]any{
			"text": map[string]any{"type": "string", "description": "Source text describing the patient"},
			"format": map[string]any{
				"type":        "string",
				"description": "Source format",
				"enum":        []string{string(form.FormatText), string(form.FormatMarkdown), string(form.FormatHTML)},
			},
		}, []string{"text"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r extractReq
		if err := decode(req, &r); err != nil {
			return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
		}

		format, err := form.ParseFormat(r.Format)
		if err != nil {
			return toolError(err), nil
		}
		if format == form.FormatURL {
			return toolError(form.ErrUnsupportedFormat), nil
		}

		outcome, err := service.Autofill(ctx, sessionID, r.Text, format)
		if err != nil {
			return toolError(err), nil
		}
		if !outcome.OK {
			return toolError(errors.New(outcome.Message)), nil
		}
		return jsonResult(outcome.Form)
	})
}

func registerSave(srv *mcp.Server, service *form.Service) {
	tool := &mcp.Tool{
		Name:        ToolSave,
		Description: "Save a completed intake form.",
		InputSchema: inputSchema(map[string]any{
			"name":        map[string]any{"type": "string"},
			"id_number":   map[string]any{"type": "string"},
			"age":         map[string]any{"type": "string"},
			"gender":      map[string]any{"type": "string"},
			"nationality": map[string]any{"type": "string"},
			"consent":     map[string]any{"type": "boolean"},
			"smoke":       map[string]any{"type": "boolean"},
			"allergy":     map[string]any{"type": "string"},
			"comments":    map[string]any{"type": "string"},
		}, nil),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var data form.FormData
		if err := decode(req, &data); err != nil {
			return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
		}

		message, err := service.Save(ctx, data)
		if err != nil {
			return toolError(errors.New(message)), nil
		}
		return jsonResult(map[string]any{"ok": true, "message": message})
	})
}

func registerSchema(srv *mcp.Server, sc schema.Schema) {
	tool := &mcp.Tool{
		Name:        ToolSchema,
		Description: "Return the JSON Schema extracted records are validated against.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(sc.JSONSchema())
	})
}

func decode(req *mcp.CallToolRequest, v any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, v)
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Errorf("marshal: %w", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}
