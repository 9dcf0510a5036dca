package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcplab/mcpcli/internal/agent"
	"github.com/mcplab/mcpcli/internal/config"
	"github.com/mcplab/mcpcli/internal/demo"
	"github.com/mcplab/mcpcli/internal/proxy"
)

// Serves a proxied upstream over SSE the way main does, and drives it with a
// real client.
func TestProxyOverSSE(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg, err := config.LoadServer("")
	require.NoError(t, err)
	upstream := demo.NewServer(cfg, zerolog.Nop())

	upstreamClientT, upstreamServerT := gomcp.NewInMemoryTransports()
	go func() {
		_ = upstream.Run(ctx, upstreamServerT)
	}()

	p, err := proxy.New(ctx, zerolog.Nop(), upstreamClientT)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	handler := gomcp.NewSSEHandler(func(r *http.Request) *gomcp.Server {
		return p.MCP()
	})
	httpServer := httptest.NewServer(handler)
	defer httpServer.Close()

	client := gomcp.NewClient(&gomcp.Implementation{Name: "proxy-sse-test", Version: "v1"}, nil)
	session, err := client.Connect(ctx, &gomcp.SSEClientTransport{
		Endpoint: httpServer.URL,
	}, nil)
	require.NoError(t, err)
	defer session.Close()

	list, err := session.ListTools(ctx, &gomcp.ListToolsParams{})
	require.NoError(t, err)
	assert.Len(t, list.Tools, 6)

	res, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"text": "over sse"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Echo: over sse", agent.ContentText(res))
}
