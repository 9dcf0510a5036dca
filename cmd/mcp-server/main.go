// Command mcp-server runs the demo MCP server with a configurable transport.
//
//	mcp-server                  # STDIO transport (default)
//	mcp-server -t sse           # SSE transport on port 8000
//	mcp-server -t sse -p 9000   # SSE transport on a custom port
//	mcp-server -t http -p 8080  # streamable HTTP transport on port 8080
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/mcplab/mcpcli/internal/config"
	"github.com/mcplab/mcpcli/internal/demo"
)

func main() {
	var (
		transportName string
		port          int
		host          string
		configPath    string
		verbose       bool
	)

	flag.StringVar(&transportName, "transport", "stdio", "transport type (stdio, sse, http)")
	flag.StringVar(&transportName, "t", "stdio", "shorthand for -transport")
	flag.IntVar(&port, "port", 8000, "port for sse/http transports")
	flag.IntVar(&port, "p", 8000, "shorthand for -port")
	flag.StringVar(&host, "host", "localhost", "host for sse/http transports")
	flag.StringVar(&configPath, "config", "", "optional YAML config file")
	flag.BoolVar(&verbose, "v", false, "enable verbose output")
	flag.Parse()

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	// Stdout carries the stdio transport; logs must go to stderr.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg, err := config.LoadServer(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	server := demo.NewServer(cfg, logger)
	ctx := context.Background()
	addr := fmt.Sprintf("%s:%d", host, port)

	switch transportName {
	case "stdio":
		logger.Info().Msg("STDIO: ready for subprocess communication")
		if err := server.Run(ctx, &gomcp.StdioTransport{}); err != nil {
			log.Fatalf("Server failed: %v", err)
		}

	case "sse":
		logger.Info().Str("url", fmt.Sprintf("http://%s/sse", addr)).Msg("Serving SSE transport")
		handler := gomcp.NewSSEHandler(func(r *http.Request) *gomcp.Server {
			return server.MCP()
		})
		if err := http.ListenAndServe(addr, handler); err != nil {
			log.Fatalf("Server failed: %v", err)
		}

	case "http":
		logger.Info().Str("url", fmt.Sprintf("http://%s", addr)).Msg("Serving streamable HTTP transport")
		handler := gomcp.NewStreamableHTTPHandler(func(r *http.Request) *gomcp.Server {
			return server.MCP()
		}, nil)
		if err := http.ListenAndServe(addr, handler); err != nil {
			log.Fatalf("Server failed: %v", err)
		}

	default:
		log.Fatalf("Unsupported transport: %s (use stdio, sse, or http)", transportName)
	}
}
