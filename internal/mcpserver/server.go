// Package mcpserver exposes generation as Model Context Protocol tools.
package mcpserver

import (
	"bytes"
	"context"
	"fmt"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/GabrielNunesIT/loadplan/internal/generate"
)

// Tool names.
const (
	ToolGeneratePlan   = "generate_jmeter_plan"
	ToolGenerateCases  = "generate_test_cases"
	ToolListOperations = "list_operations"
)

// Tools holds the tool handlers.
type Tools struct {
	log logger.ILogger
	svc *generate.Service
}

// NewServer registers the tools on a new MCP server.
func NewServer(log logger.ILogger, svc *generate.Service, version string) *server.MCPServer {
	s := server.NewMCPServer("loadplan", version, server.WithToolCapabilities(false))
	t := &Tools{log: log, svc: svc}

	specArg := mcp.WithString("spec",
		mcp.Required(),
		mcp.Description("OpenAPI 3, Swagger 2 (JSON or YAML) or HAR document text"),
	)
	sourceArg := mcp.WithString("source",
		mcp.Description("Input kind: openapi or har. Detected when omitted"),
	)
	baseURLArg := mcp.WithString("base_url",
		mcp.Description("Overrides the base URL resolved from the document"),
	)

	s.AddTool(mcp.NewTool(ToolGeneratePlan,
		mcp.WithDescription("Generate an Apache JMeter test plan (JMX XML) for every operation in an API description"),
		specArg, sourceArg, baseURLArg,
		mcp.WithNumber("threads", mcp.Description("Concurrent users per thread group")),
		mcp.WithNumber("ramp_up_seconds", mcp.Description("Ramp-up period in seconds")),
		mcp.WithNumber("loops", mcp.Description("Iterations per thread, -1 for infinite")),
		mcp.WithString("group_by", mcp.Description("Thread group strategy: tag or path")),
	), t.GeneratePlan)

	s.AddTool(mcp.NewTool(ToolGenerateCases,
		mcp.WithDescription("Generate a CSV catalogue of functional test cases for an API description"),
		specArg, sourceArg, baseURLArg,
		mcp.WithString("custom_prompt",
			mcp.Description("Free text; role names such as ADMIN or VIEWER add role-based cases"),
		),
	), t.GenerateCases)

	s.AddTool(mcp.NewTool(ToolListOperations,
		mcp.WithDescription("List the operations found in an API description as YAML"),
		specArg, sourceArg,
	), t.ListOperations)

	return s
}

// Serve runs s over stdin/stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// GeneratePlan handles generate_jmeter_plan.
func (t *Tools) GeneratePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, errResult := t.request(request, "jmeter")
	if errResult != nil {
		return errResult, nil
	}

	load := t.svc.LoadDefaults()
	args := request.Params.Arguments
	if v, ok := intArg(args, "threads"); ok {
		load.Threads = v
	}
	if v, ok := intArg(args, "ramp_up_seconds"); ok {
		load.RampUpSeconds = v
	}
	if v, ok := intArg(args, "loops"); ok {
		load.Loops = v
	}
	if v, ok := args["group_by"].(string); ok && v != "" {
		load.GroupBy = v
	}
	req.Load = &load

	return t.generate(ctx, req)
}

// GenerateCases handles generate_test_cases.
func (t *Tools) GenerateCases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, errResult := t.request(request, "csv")
	if errResult != nil {
		return errResult, nil
	}
	req.CustomPrompt, _ = request.Params.Arguments["custom_prompt"].(string)
	return t.generate(ctx, req)
}

// ListOperations handles list_operations.
func (t *Tools) ListOperations(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, errResult := t.request(request, "")
	if errResult != nil {
		return errResult, nil
	}
	spec, err := t.svc.Parse(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("[Error] %v", err)), nil
	}
	out, err := yaml.Marshal(generate.Summarize(spec))
	if err != nil {
		return nil, fmt.Errorf("failed to encode operations: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (t *Tools) request(request mcp.CallToolRequest, format string) (generate.Request, *mcp.CallToolResult) {
	args := request.Params.Arguments
	spec, ok := args["spec"].(string)
	if !ok || spec == "" {
		return generate.Request{}, mcp.NewToolResultError("[Error] missing or invalid argument: spec")
	}
	req := generate.Request{Spec: []byte(spec), Format: format}
	req.Source, _ = args["source"].(string)
	req.BaseURL, _ = args["base_url"].(string)
	return req, nil
}

// generate reports input problems as tool errors so the client can correct
// them; anything else fails the call.
func (t *Tools) generate(ctx context.Context, req generate.Request) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if _, err := t.svc.Generate(ctx, req, &buf); err != nil {
		if generate.IsBadInput(err) {
			return mcp.NewToolResultError(fmt.Sprintf("[Error] %v", err)), nil
		}
		t.log.Errorf("Tool call failed: %v", err)
		return nil, err
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func intArg(args map[string]any, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
