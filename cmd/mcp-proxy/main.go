// Command mcp-proxy re-exports a stdio MCP server over another transport.
// Everything after "--" is the upstream server command.
//
//	mcp-proxy -t sse -p 8000 -- docker run -i --rm mcp/duckduckgo
//	mcp-proxy -t http -p 8080 -- ./mcp-server
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/mcplab/mcpcli/internal/proxy"
)

func main() {
	var (
		transportName string
		port          int
		host          string
	)

	flag.StringVar(&transportName, "transport", "sse", "transport to serve (stdio, sse, http)")
	flag.StringVar(&transportName, "t", "sse", "shorthand for -transport")
	flag.IntVar(&port, "port", 8000, "port for sse/http transports")
	flag.IntVar(&port, "p", 8000, "shorthand for -port")
	flag.StringVar(&host, "host", "localhost", "host for sse/http transports")
	flag.Parse()

	upstream := flag.Args()
	if len(upstream) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-proxy [-t sse|http|stdio] [-p port] -- <upstream command...>")
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	upstreamTransport := &gomcp.CommandTransport{
		Command: exec.CommandContext(ctx, upstream[0], upstream[1:]...),
	}

	p, err := proxy.New(ctx, logger, upstreamTransport)
	if err != nil {
		log.Fatalf("Failed to start proxy: %v", err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close upstream session")
		}
	}()

	addr := fmt.Sprintf("%s:%d", host, port)

	switch transportName {
	case "stdio":
		if err := p.Run(ctx, &gomcp.StdioTransport{}); err != nil {
			log.Fatalf("Proxy failed: %v", err)
		}

	case "sse":
		logger.Info().Str("url", fmt.Sprintf("http://%s/sse", addr)).Msg("Proxy serving SSE transport")
		handler := gomcp.NewSSEHandler(func(r *http.Request) *gomcp.Server {
			return p.MCP()
		})
		if err := http.ListenAndServe(addr, handler); err != nil {
			log.Fatalf("Proxy failed: %v", err)
		}

	case "http":
		logger.Info().Str("url", fmt.Sprintf("http://%s", addr)).Msg("Proxy serving streamable HTTP transport")
		handler := gomcp.NewStreamableHTTPHandler(func(r *http.Request) *gomcp.Server {
			return p.MCP()
		}, nil)
		if err := http.ListenAndServe(addr, handler); err != nil {
			log.Fatalf("Proxy failed: %v", err)
		}

	default:
		log.Fatalf("Unsupported transport: %s (use stdio, sse, or http)", transportName)
	}
}
