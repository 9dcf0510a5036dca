// Package agent runs an LLM chat session whose tool calls are executed
// through an MCP client session.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/mcplab/mcpcli/internal/config"
)

const systemPrompt = "You are a helpful assistant with access to MCP tools. " +
	"Use the available tools to help users accomplish their tasks."

// defaultMaxToolRounds bounds how many completion/tool-execution rounds a
// single query may take.
const defaultMaxToolRounds = 20

// Agent bridges an OpenAI-compatible chat model and an MCP tool session.
type Agent struct {
	client  *openai.Client
	session *mcp.ClientSession
	config  config.LLM
	logger  zerolog.Logger

	tools   []openai.Tool
	history []openai.ChatCompletionMessage

	maxToolRounds int
}

// ToolCall records a single tool invocation made while answering a query.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	Result    string         `json:"result"`
	IsError   bool           `json:"is_error"`
}

// Response is the agent's answer to one user query.
type Response struct {
	Response  string     `json:"response"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// NewAgent creates an agent bound to the given MCP session.
func NewAgent(logger zerolog.Logger, session *mcp.ClientSession, cfg config.LLM) *Agent {
	clientConfig := openai.DefaultConfig(cfg.APIKey)

	// Support custom OpenAI-compatible endpoints
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Agent{
		client:        openai.NewClientWithConfig(clientConfig),
		session:       session,
		config:        cfg,
		logger:        logger.With().Str("component", "agent").Logger(),
		maxToolRounds: defaultMaxToolRounds,
	}
}

// RefreshTools fetches the server's tool list and rebuilds the function
// definitions advertised to the model.
func (a *Agent) RefreshTools(ctx context.Context) error {
	res, err := a.session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return fmt.Errorf("failed to list MCP tools: %w", err)
	}

	tools := make([]openai.Tool, 0, len(res.Tools))
	for _, t := range res.Tools {
		params, err := schemaToJSON(t.InputSchema)
		if err != nil {
			return fmt.Errorf("invalid schema for tool %s: %w", t.Name, err)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}

	a.tools = tools
	a.logger.Info().Int("tools", len(tools)).Msg("Tool definitions refreshed")
	return nil
}

// Tools returns the number of tools currently advertised to the model.
func (a *Agent) Tools() int {
	return len(a.tools)
}

// Reset discards the conversation history.
func (a *Agent) Reset() {
	a.history = nil
}

// ProcessQuery sends one user message through the chat loop. Tool calls
// requested by the model are executed via the MCP session and their results
// fed back until the model produces a plain answer.
func (a *Agent) ProcessQuery(ctx context.Context, userInput string) (*Response, error) {
	a.logger.Info().Str("input", userInput).Msg("Processing user query")

	a.history = append(a.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userInput,
	})

	var calls []ToolCall

	for round := 0; round < a.maxToolRounds; round++ {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       a.config.Model,
			Messages:    a.messages(),
			Tools:       a.tools,
			MaxTokens:   a.config.MaxTokens,
			Temperature: a.config.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no response choices returned")
		}

		msg := resp.Choices[0].Message
		a.history = append(a.history, msg)

		if len(msg.ToolCalls) == 0 {
			a.logger.Info().
				Int("tool_calls", len(calls)).
				Int("rounds", round+1).
				Msg("Query complete")
			return &Response{
				Response:  strings.TrimSpace(msg.Content),
				ToolCalls: calls,
			}, nil
		}

		for _, tc := range msg.ToolCalls {
			call := a.executeToolCall(ctx, tc)
			calls = append(calls, call)

			a.history = append(a.history, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    call.Result,
				Name:       tc.Function.Name,
				ToolCallID: tc.ID,
			})
		}
	}

	return nil, fmt.Errorf("tool call limit reached after %d rounds", a.maxToolRounds)
}

// executeToolCall routes one model-requested call through the MCP session.
// Failures become tool results rather than errors so the model can react.
func (a *Agent) executeToolCall(ctx context.Context, tc openai.ToolCall) ToolCall {
	args := map[string]any{}
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			a.logger.Warn().Err(err).Str("tool", tc.Function.Name).Msg("Failed to parse tool arguments")
			return ToolCall{
				Name:    tc.Function.Name,
				Result:  fmt.Sprintf("invalid tool arguments: %v", err),
				IsError: true,
			}
		}
	}

	a.logger.Info().Str("tool", tc.Function.Name).Interface("arguments", args).Msg("Calling MCP tool")

	res, err := a.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      tc.Function.Name,
		Arguments: args,
	})
	if err != nil {
		a.logger.Error().Err(err).Str("tool", tc.Function.Name).Msg("Tool call failed")
		return ToolCall{
			Name:      tc.Function.Name,
			Arguments: args,
			Result:    fmt.Sprintf("tool call failed: %v", err),
			IsError:   true,
		}
	}

	return ToolCall{
		Name:      tc.Function.Name,
		Arguments: args,
		Result:    ContentText(res),
		IsError:   res.IsError,
	}
}

// messages prepends the system prompt to the running history.
func (a *Agent) messages() []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(a.history)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	return append(msgs, a.history...)
}

// ContentText flattens a tool result into plain text for the model.
func ContentText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	if len(parts) == 0 && res.StructuredContent != nil {
		if data, err := json.Marshal(res.StructuredContent); err == nil {
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, "\n")
}

// schemaToJSON converts the SDK's JSON schema into the loosely-typed value
// the OpenAI API expects for function parameters.
func schemaToJSON(schema any) (json.RawMessage, error) {
	if schema == nil {
		return json.RawMessage(`{"type":"object"}`), nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}
