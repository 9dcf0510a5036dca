// Package proxy re-exports the tools and resources of an upstream MCP server
// through a local one, so a server reachable only as a subprocess can be
// served over SSE or HTTP.
package proxy

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// Proxy owns the client session to the upstream server and the local server
// that mirrors it.
type Proxy struct {
	logger   zerolog.Logger
	upstream *mcp.ClientSession
	server   *mcp.Server
}

// New connects to the upstream server over the given transport and registers
// passthrough handlers for everything it exposes.
func New(ctx context.Context, logger zerolog.Logger, upstreamTransport mcp.Transport) (*Proxy, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "mcp-proxy-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, upstreamTransport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to upstream server: %w", err)
	}

	p := &Proxy{
		logger:   logger.With().Str("component", "proxy").Logger(),
		upstream: session,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "mcp-proxy-server",
			Version: "1.0.0",
		}, &mcp.ServerOptions{HasTools: true, HasResources: true}),
	}

	if err := p.mirrorTools(ctx); err != nil {
		session.Close()
		return nil, err
	}
	p.mirrorResources(ctx)

	return p, nil
}

// MCP exposes the local mirror server for HTTP handlers.
func (p *Proxy) MCP() *mcp.Server {
	return p.server
}

// Run serves the mirror on the given transport.
func (p *Proxy) Run(ctx context.Context, t mcp.Transport) error {
	return p.server.Run(ctx, t)
}

// Close shuts down the upstream session.
func (p *Proxy) Close() error {
	return p.upstream.Close()
}

// mirrorTools registers a passthrough for every upstream tool. Arguments are
// forwarded untouched; the upstream schema is advertised as-is.
func (p *Proxy) mirrorTools(ctx context.Context) error {
	res, err := p.upstream.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return fmt.Errorf("failed to list upstream tools: %w", err)
	}

	for _, t := range res.Tools {
		name := t.Name
		p.logger.Info().Str("tool", name).Msg("Mirroring upstream tool")

		p.server.AddTool(&mcp.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return p.upstream.CallTool(ctx, &mcp.CallToolParams{
				Name:      name,
				Arguments: req.Params.Arguments,
			})
		})
	}

	p.logger.Info().Int("tools", len(res.Tools)).Msg("Upstream tools mirrored")
	return nil
}

// mirrorResources registers passthroughs for upstream resources. Servers
// without resource support are left alone.
func (p *Proxy) mirrorResources(ctx context.Context) {
	res, err := p.upstream.ListResources(ctx, &mcp.ListResourcesParams{})
	if err != nil {
		p.logger.Debug().Err(err).Msg("Upstream does not expose resources")
		return
	}

	for _, r := range res.Resources {
		uri := r.URI
		p.logger.Info().Str("resource", uri).Msg("Mirroring upstream resource")

		p.server.AddResource(&mcp.Resource{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MIMEType:    r.MIMEType,
		}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return p.upstream.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
		})
	}
}
