// Package demo implements the demo MCP server exposed by cmd/mcp-server. It
// registers a handful of small tools plus two informational resources, enough
// to exercise every client transport.
package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/mcplab/mcpcli/internal/config"
	"github.com/mcplab/mcpcli/internal/fetch"
)

// Server wraps the official MCP server with the demo tool set.
type Server struct {
	config  *config.Server
	logger  zerolog.Logger
	server  *mcp.Server
	fetcher *fetch.Service
}

// NewServer creates a demo MCP server instance using the official SDK.
func NewServer(cfg *config.Server, logger zerolog.Logger) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &mcp.ServerOptions{
		HasTools:     true,
		HasResources: true,
	})

	fetcher := fetch.NewService(fetch.Config{
		UserAgent:   cfg.Fetcher.UserAgent,
		Timeout:     time.Duration(cfg.Fetcher.Timeout),
		MaxBodySize: cfg.Fetcher.MaxBodySize,
	}, logger)

	s := &Server{
		config:  cfg,
		logger:  logger.With().Str("component", "demo-server").Logger(),
		server:  mcpServer,
		fetcher: fetcher,
	}

	s.registerTools()
	s.registerResources()

	return s
}

// MCP exposes the underlying SDK server for HTTP handlers.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves MCP on the given transport until the context is canceled or the
// peer disconnects.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	s.logger.Info().Str("name", s.config.Name).Str("version", s.config.Version).Msg("Starting MCP server")
	return s.server.Run(ctx, t)
}

// Parameter types for the demo tools.

type EchoParams struct {
	Text string `json:"text" jsonschema:"the text to echo back"`
}

type AddNumbersParams struct {
	A float64 `json:"a" jsonschema:"first number"`
	B float64 `json:"b" jsonschema:"second number"`
}

type WeatherParams struct {
	City string `json:"city" jsonschema:"city to report weather for"`
}

type FibonacciParams struct {
	N int `json:"n" jsonschema:"index of the Fibonacci number to compute"`
}

type ReverseStringParams struct {
	Text string `json:"text" jsonschema:"the text to reverse"`
}

type FetchPageParams struct {
	URL string `json:"url" jsonschema:"the URL to fetch"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "echo",
		Description: "Echo back the input text",
	}, s.handleEcho)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_numbers",
		Description: "Add two numbers together",
	}, s.handleAddNumbers)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_weather",
		Description: "Get mock weather information for a city",
	}, s.handleGetWeather)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "calculate_fibonacci",
		Description: "Calculate the nth Fibonacci number",
	}, s.handleFibonacci)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reverse_string",
		Description: "Reverse the input string",
	}, s.handleReverseString)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_page",
		Description: "Fetch a web page and return its title and visible text",
	}, s.handleFetchPage)
}

func (s *Server) handleEcho(ctx context.Context, req *mcp.CallToolRequest, params EchoParams) (*mcp.CallToolResult, any, error) {
	return textResult(fmt.Sprintf("Echo: %s", params.Text)), nil, nil
}

func (s *Server) handleAddNumbers(ctx context.Context, req *mcp.CallToolRequest, params AddNumbersParams) (*mcp.CallToolResult, any, error) {
	sum := params.A + params.B
	return textResult(formatNumber(sum)), map[string]float64{"sum": sum}, nil
}

func (s *Server) handleGetWeather(ctx context.Context, req *mcp.CallToolRequest, params WeatherParams) (*mcp.CallToolResult, any, error) {
	weather := map[string]string{
		"city":        params.City,
		"temperature": "22°C",
		"condition":   "Sunny",
		"humidity":    "65%",
		"wind":        "10 km/h",
		"timestamp":   "2025-01-01T12:00:00Z",
	}

	data, err := json.MarshalIndent(weather, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode weather: %w", err)
	}
	return textResult(string(data)), weather, nil
}

func (s *Server) handleFibonacci(ctx context.Context, req *mcp.CallToolRequest, params FibonacciParams) (*mcp.CallToolResult, any, error) {
	if params.N < 0 {
		return errorResult(fmt.Sprintf("n must be non-negative, got %d", params.N)), nil, nil
	}
	return textResult(fmt.Sprintf("%d", fibonacci(params.N))), nil, nil
}

func (s *Server) handleReverseString(ctx context.Context, req *mcp.CallToolRequest, params ReverseStringParams) (*mcp.CallToolResult, any, error) {
	runes := []rune(params.Text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return textResult(string(runes)), nil, nil
}

func (s *Server) handleFetchPage(ctx context.Context, req *mcp.CallToolRequest, params FetchPageParams) (*mcp.CallToolResult, any, error) {
	result, err := s.fetcher.Page(ctx, params.URL)
	if err != nil {
		return errorResult(fmt.Sprintf("Error fetching page: %v", err)), nil, nil
	}

	return textResult(fmt.Sprintf("Fetched %s\n\nTitle: %s\n\nContent:\n%s",
		result.URL, result.Title, result.Text)), result, nil
}

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         "info://server",
		Name:        "server-info",
		Description: "Basic information about this MCP server",
		MIMEType:    "application/json",
	}, s.handleServerInfo)

	s.server.AddResource(&mcp.Resource{
		URI:         "docs://getting-started",
		Name:        "getting-started",
		Description: "A guide to using this MCP server",
		MIMEType:    "text/markdown",
	}, s.handleGettingStarted)
}

func (s *Server) handleServerInfo(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	info := map[string]any{
		"name":        s.config.Name,
		"version":     s.config.Version,
		"description": "A configurable demo MCP server with multiple transport support",
		"tools": []string{
			"echo", "add_numbers", "get_weather",
			"calculate_fibonacci", "reverse_string", "fetch_page",
		},
		"resources":         []string{"info://server", "docs://getting-started"},
		"transports":        []string{"stdio", "sse", "http"},
		"default_transport": "stdio",
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode server info: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleGettingStarted(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     gettingStartedGuide,
		}},
	}, nil
}

func fibonacci(n int) int {
	if n <= 1 {
		return n
	}
	a, b := 0, 1
	for i := 2; i <= n; i++ {
		a, b = b, a+b
	}
	return b
}

// formatNumber renders floats the way users expect sums to look: integers
// without a decimal point.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

const gettingStartedGuide = `# Getting Started

This server implements the MCP (Model Context Protocol) specification with
support for multiple transports: STDIO, SSE, and HTTP.

## Command line usage

    mcp-server                  # STDIO transport (default)
    mcp-server -t sse           # SSE transport on port 8000
    mcp-server -t sse -p 9000   # SSE transport on a custom port
    mcp-server -t http -p 8080  # HTTP transport on port 8080

## Available tools

1. echo - Echo back any text you provide
2. add_numbers - Add two numbers together
3. get_weather - Get mock weather information for a city
4. calculate_fibonacci - Calculate the nth Fibonacci number
5. reverse_string - Reverse the input string
6. fetch_page - Fetch a web page and return its title and text

## Available resources

1. info://server - JSON information about this server
2. docs://getting-started - This guide

## Client integration

    mcp-cli tools                                   # STDIO, lists tools
    mcp-cli -t sse -p 9000 tools                    # SSE on a custom port
    mcp-cli call echo -a text=hello                 # invoke a tool
    mcp-cli chat                                    # interactive LLM chat
`
