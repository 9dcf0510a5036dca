// Package transport maps CLI-level connection settings onto the MCP SDK's
// client transports.
package transport

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Kind selects how the client reaches the MCP server.
type Kind string

const (
	KindStdio  Kind = "stdio"
	KindSSE    Kind = "sse"
	KindHTTP   Kind = "http"
	KindDocker Kind = "docker"
)

// DefaultDockerImage is the image run by the docker transport when none is
// configured.
const DefaultDockerImage = "mcp/duckduckgo"

// Options describes the server endpoint for every supported transport kind.
// Command and Args apply to stdio, URL to sse and http, Image to docker.
type Options struct {
	Kind    Kind
	Command string
	Args    []string
	URL     string
	Image   string
	Timeout time.Duration
}

// ParseKind validates a transport name from the command line.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindStdio:
		return KindStdio, nil
	case KindSSE:
		return KindSSE, nil
	case KindHTTP:
		return KindHTTP, nil
	case KindDocker:
		return KindDocker, nil
	default:
		return "", fmt.Errorf("unsupported transport: %s", s)
	}
}

// Build constructs the SDK transport for the given options.
func Build(ctx context.Context, opts Options) (mcp.Transport, error) {
	switch opts.Kind {
	case KindStdio:
		if opts.Command == "" {
			return nil, fmt.Errorf("stdio transport requires a server command")
		}
		return &mcp.CommandTransport{
			Command: exec.CommandContext(ctx, opts.Command, opts.Args...),
		}, nil

	case KindSSE:
		return &mcp.SSEClientTransport{
			Endpoint: SSEEndpoint(opts.URL),
		}, nil

	case KindHTTP:
		return &mcp.StreamableClientTransport{
			Endpoint: strings.TrimRight(opts.URL, "/"),
		}, nil

	case KindDocker:
		image := opts.Image
		if image == "" {
			image = DefaultDockerImage
		}
		return &mcp.CommandTransport{
			Command: exec.CommandContext(ctx, "docker", "run", "-i", "--rm", image),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported transport: %s", opts.Kind)
	}
}

// Connect builds the transport and opens a client session on it. The context
// must stay alive for the lifetime of the session; Options.Timeout is meant
// for individual requests, not the connection.
func Connect(ctx context.Context, client *mcp.Client, opts Options) (*mcp.ClientSession, error) {
	t, err := Build(ctx, opts)
	if err != nil {
		return nil, err
	}

	session, err := client.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect via %s transport: %w", opts.Kind, err)
	}
	return session, nil
}

// SSEEndpoint normalizes a server URL into its SSE endpoint, appending the
// conventional /sse path when missing.
func SSEEndpoint(url string) string {
	url = strings.TrimRight(url, "/")
	if strings.HasSuffix(url, "/sse") {
		return url
	}
	return url + "/sse"
}
