package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcplab/mcpcli/internal/agent"
	"github.com/mcplab/mcpcli/internal/config"
)

// newTestSession runs the demo server on an in-memory transport and returns
// a connected client session.
func newTestSession(t *testing.T) *mcp.ClientSession {
	t.Helper()

	cfg, err := config.LoadServer("")
	require.NoError(t, err)
	server := NewServer(cfg, zerolog.Nop())

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() {
		_ = server.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "demo-test", Version: "v1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	return res
}

func TestListTools(t *testing.T) {
	session := newTestSession(t)

	res, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make(map[string]bool, len(res.Tools))
	for _, tool := range res.Tools {
		names[tool.Name] = true
		assert.NotEmpty(t, tool.Description, "tool %s has no description", tool.Name)
	}

	for _, want := range []string{
		"echo", "add_numbers", "get_weather",
		"calculate_fibonacci", "reverse_string", "fetch_page",
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
	assert.Len(t, res.Tools, 6)
}

func TestEcho(t *testing.T) {
	session := newTestSession(t)

	res := callTool(t, session, "echo", map[string]any{"text": "hello"})
	assert.False(t, res.IsError)
	assert.Equal(t, "Echo: hello", agent.ContentText(res))
}

func TestAddNumbers(t *testing.T) {
	session := newTestSession(t)

	res := callTool(t, session, "add_numbers", map[string]any{"a": 2.5, "b": 3.5})
	assert.False(t, res.IsError)
	assert.Equal(t, "6", agent.ContentText(res))

	res = callTool(t, session, "add_numbers", map[string]any{"a": 0.1, "b": 0.2})
	assert.False(t, res.IsError)
	assert.Contains(t, agent.ContentText(res), "0.3")
}

func TestCalculateFibonacci(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{1, "1"},
		{2, "1"},
		{10, "55"},
		{20, "6765"},
	}

	session := newTestSession(t)
	for _, tt := range tests {
		res := callTool(t, session, "calculate_fibonacci", map[string]any{"n": tt.n})
		assert.False(t, res.IsError)
		assert.Equal(t, tt.want, agent.ContentText(res), "fibonacci(%d)", tt.n)
	}
}

func TestCalculateFibonacciNegative(t *testing.T) {
	session := newTestSession(t)

	res := callTool(t, session, "calculate_fibonacci", map[string]any{"n": -3})
	assert.True(t, res.IsError)
	assert.Contains(t, agent.ContentText(res), "non-negative")
}

func TestReverseString(t *testing.T) {
	session := newTestSession(t)

	res := callTool(t, session, "reverse_string", map[string]any{"text": "golang"})
	assert.Equal(t, "gnalog", agent.ContentText(res))

	// Multi-byte characters must survive reversal.
	res = callTool(t, session, "reverse_string", map[string]any{"text": "héllo"})
	assert.Equal(t, "olléh", agent.ContentText(res))
}

func TestGetWeather(t *testing.T) {
	session := newTestSession(t)

	res := callTool(t, session, "get_weather", map[string]any{"city": "Lisbon"})
	assert.False(t, res.IsError)

	var weather map[string]string
	require.NoError(t, json.Unmarshal([]byte(agent.ContentText(res)), &weather))
	assert.Equal(t, "Lisbon", weather["city"])
	assert.NotEmpty(t, weather["temperature"])
	assert.NotEmpty(t, weather["condition"])
}

func TestFetchPage(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Demo Page</title></head><body><p>Some page text.</p></body></html>`)
	}))
	defer page.Close()

	session := newTestSession(t)

	res := callTool(t, session, "fetch_page", map[string]any{"url": page.URL})
	require.False(t, res.IsError, "fetch_page failed: %s", agent.ContentText(res))
	text := agent.ContentText(res)
	assert.Contains(t, text, "Demo Page")
	assert.Contains(t, text, "Some page text.")
}

func TestFetchPageError(t *testing.T) {
	session := newTestSession(t)

	res := callTool(t, session, "fetch_page", map[string]any{"url": "not-a-url"})
	assert.True(t, res.IsError)
}

func TestResources(t *testing.T) {
	session := newTestSession(t)
	ctx := context.Background()

	list, err := session.ListResources(ctx, &mcp.ListResourcesParams{})
	require.NoError(t, err)
	assert.Len(t, list.Resources, 2)

	info, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "info://server"})
	require.NoError(t, err)
	require.Len(t, info.Contents, 1)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(info.Contents[0].Text), &parsed))
	assert.Equal(t, "demo-mcp-server", parsed["name"])
	assert.Equal(t, "stdio", parsed["default_transport"])

	docs, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "docs://getting-started"})
	require.NoError(t, err)
	require.Len(t, docs.Contents, 1)
	assert.Contains(t, docs.Contents[0].Text, "Getting Started")
}

func TestFibonacciHelper(t *testing.T) {
	want := []int{0, 1, 1, 2, 3, 5, 8, 13, 21, 34}
	for n, expected := range want {
		assert.Equal(t, expected, fibonacci(n))
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "6", formatNumber(6.0))
	assert.Equal(t, "-2", formatNumber(-2.0))
	assert.Equal(t, "2.5", formatNumber(2.5))
}
