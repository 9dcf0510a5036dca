// Command mcp-cli connects to an MCP server over a selectable transport and
// lists tools, invokes them, or runs an interactive LLM chat session backed
// by them.
//
// Usage:
//
//	mcp-cli [flags] tools
//	mcp-cli [flags] call <tool> [-a key=value ...]
//	mcp-cli [flags] chat
//	mcp-cli [flags] info
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/shlex"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/mcplab/mcpcli/internal/agent"
	"github.com/mcplab/mcpcli/internal/config"
	"github.com/mcplab/mcpcli/internal/transport"
)

const (
	clientName       = "mcp-cli"
	clientVersion    = "1.0.0"
	defaultServerURL = "http://localhost:8000"
	defaultPort      = 8000
)

func main() {
	config.LoadEnv()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		transportName string
		command       string
		commandArgs   string
		serverURL     string
		port          int
		image         string
		timeout       time.Duration
	)

	flags := flag.NewFlagSet(clientName, flag.ExitOnError)
	flags.StringVar(&transportName, "transport", "stdio", "MCP transport type (stdio, sse, http, docker)")
	flags.StringVar(&transportName, "t", "stdio", "shorthand for -transport")
	flags.StringVar(&command, "command", "./mcp-server", "server command for the stdio transport")
	flags.StringVar(&command, "c", "./mcp-server", "shorthand for -command")
	flags.StringVar(&commandArgs, "args", "", "additional arguments for the server command (shell-style quoting)")
	flags.StringVar(&serverURL, "url", defaultServerURL, "server URL for sse/http transports")
	flags.StringVar(&serverURL, "u", defaultServerURL, "shorthand for -url")
	flags.IntVar(&port, "port", defaultPort, "server port for sse/http transports")
	flags.IntVar(&port, "p", defaultPort, "shorthand for -port")
	flags.StringVar(&image, "image", transport.DefaultDockerImage, "image for the docker transport")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	flags.Usage = func() { printUsage(flags) }

	_ = flags.Parse(os.Args[1:]) // ExitOnError
	rest := flags.Args()
	if len(rest) == 0 {
		printUsage(flags)
		os.Exit(2)
	}

	kind, err := transport.ParseKind(transportName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(2)
	}

	// A non-default port with the default URL rewrites the URL.
	if serverURL == defaultServerURL && port != defaultPort {
		serverURL = fmt.Sprintf("http://localhost:%d", port)
	}

	serverArgs, err := parseCommandArgs(commandArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(2)
	}

	opts := transport.Options{
		Kind:    kind,
		Command: command,
		Args:    serverArgs,
		URL:     serverURL,
		Image:   image,
		Timeout: timeout,
	}

	ctx := context.Background()

	switch rest[0] {
	case "tools":
		err = runTools(ctx, opts)
	case "call":
		err = runCall(ctx, opts, rest[1:])
	case "chat":
		err = runChat(ctx, logger, opts)
	case "info":
		runInfo(opts)
	default:
		fmt.Fprintf(os.Stderr, "❌ Unknown command: %s\n\n", rest[0])
		printUsage(flags)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// connect opens a client session using the configured transport.
func connect(ctx context.Context, opts transport.Options) (*gomcp.ClientSession, error) {
	client := gomcp.NewClient(&gomcp.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}, nil)
	return transport.Connect(ctx, client, opts)
}

// runTools lists the server's tools with their parameter names.
func runTools(ctx context.Context, opts transport.Options) error {
	session, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	res, err := session.ListTools(reqCtx, &gomcp.ListToolsParams{})
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	fmt.Printf("MCP Tools (%d) via %s transport\n", len(res.Tools), strings.ToUpper(string(opts.Kind)))
	for _, t := range res.Tools {
		fmt.Printf("- %s: %s\n", t.Name, t.Description)
		params := schemaParams(t.InputSchema)
		if len(params) == 0 {
			fmt.Println("    parameters: none")
		} else {
			fmt.Printf("    parameters: %s\n", strings.Join(params, ", "))
		}
	}
	return nil
}

// runCall invokes a single tool with key=value arguments.
func runCall(ctx context.Context, opts transport.Options, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s call <tool> [-a key=value ...]", clientName)
	}
	toolName := args[0]

	var pairs argList
	callFlags := flag.NewFlagSet("call", flag.ExitOnError)
	callFlags.Var(&pairs, "a", "tool argument as key=value (repeatable)")
	callFlags.Var(&pairs, "arg", "tool argument as key=value (repeatable)")
	_ = callFlags.Parse(args[1:])

	arguments, err := parseToolArgs(pairs)
	if err != nil {
		return err
	}

	session, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	res, err := session.CallTool(reqCtx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: arguments,
	})
	if err != nil {
		return fmt.Errorf("failed to call tool %q: %w", toolName, err)
	}

	fmt.Printf("🔧 %s\n", toolName)
	if len(arguments) > 0 {
		fmt.Println("Parameters:")
		for _, pair := range pairs {
			fmt.Printf("  • %s\n", pair)
		}
	}
	fmt.Println("Result:")
	if res.IsError {
		fmt.Printf("❌ %s\n", agent.ContentText(res))
	} else {
		fmt.Println(agent.ContentText(res))
	}
	return nil
}

// runChat drives the interactive chat session.
func runChat(ctx context.Context, logger zerolog.Logger, opts transport.Options) error {
	llmConfig, err := config.LoadLLM()
	if err != nil {
		fmt.Println("❌ No OPENAI_API_KEY found in environment")
		fmt.Println("   Set it with: export OPENAI_API_KEY=your_key")
		return err
	}

	session, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	chatAgent := agent.NewAgent(logger, session, llmConfig)
	if err := chatAgent.RefreshTools(ctx); err != nil {
		return err
	}

	fmt.Printf("✅ Connected via %s: %d tools\n", strings.ToUpper(string(opts.Kind)), chatAgent.Tools())
	fmt.Println()
	fmt.Println("MCP Chat Session Started")
	fmt.Println("Type 'quit', 'exit', or 'stop' to end the session")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		userInput := strings.TrimSpace(scanner.Text())
		if userInput == "" {
			continue
		}
		switch strings.ToLower(userInput) {
		case "quit", "exit", "stop":
			fmt.Println("\n👋 Chat session ended")
			return scanner.Err()
		}

		response, err := chatAgent.ProcessQuery(ctx, userInput)
		if err != nil {
			fmt.Printf("❌ Error: %v\n\n", err)
			continue
		}

		for _, call := range response.ToolCalls {
			marker := "✅"
			if call.IsError {
				marker = "❌"
			}
			fmt.Printf("🔧 %s %s\n", marker, call.Name)
		}
		fmt.Printf("Assistant: %s\n\n", response.Response)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// runInfo prints the effective configuration and usage examples.
func runInfo(opts transport.Options) {
	apiKeyStatus := "Not found"
	if os.Getenv("OPENAI_API_KEY") != "" {
		apiKeyStatus = "Found"
	}

	var server string
	switch opts.Kind {
	case transport.KindStdio:
		server = fmt.Sprintf("Command: %s", strings.Join(append([]string{opts.Command}, opts.Args...), " "))
	case transport.KindDocker:
		server = fmt.Sprintf("Image: %s", opts.Image)
	case transport.KindSSE:
		server = fmt.Sprintf("URL: %s", transport.SSEEndpoint(opts.URL))
	default:
		server = fmt.Sprintf("URL: %s", opts.URL)
	}

	fmt.Println("MCP CLI")
	fmt.Println("=======")
	fmt.Printf("Transport: %s\n", strings.ToUpper(string(opts.Kind)))
	fmt.Printf("Server:    %s\n", server)
	fmt.Printf("Timeout:   %s\n", opts.Timeout)
	fmt.Printf("API Key:   %s\n", apiKeyStatus)
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  tools  - List available MCP tools")
	fmt.Println("  call   - Call a specific tool")
	fmt.Println("  chat   - Interactive chat session")
	fmt.Println("  info   - Show this information")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  mcp-cli -c ./my-server tools")
	fmt.Println("  mcp-cli -args \"-v\" tools")
	fmt.Println("  mcp-cli -t sse -p 9000 tools")
	fmt.Println("  mcp-cli -t sse -u http://remote:8080/sse tools")
	fmt.Println("  mcp-cli call echo -a text=hello")
	fmt.Println("  mcp-cli -timeout 60s chat")
}

func printUsage(flags *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <tools|call|chat|info> [args]\n\nFlags:\n", clientName)
	flags.PrintDefaults()
}

// argList collects repeated -a flags.
type argList []string

func (a *argList) String() string { return strings.Join(*a, ",") }

func (a *argList) Set(value string) error {
	*a = append(*a, value)
	return nil
}

// parseCommandArgs splits the -args flag shell-style, so quoted arguments
// may contain spaces.
func parseCommandArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	args, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("invalid -args value %q: %w", s, err)
	}
	return args, nil
}

// parseToolArgs turns key=value pairs into tool arguments. Values remain
// strings; the server's schema coercion handles the rest.
func parseToolArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument format %q, use -a key=value", pair)
		}
		args[key] = value
	}
	return args, nil
}

// schemaParams extracts the property names of a tool's input schema.
func schemaParams(schema any) []string {
	if schema == nil {
		return nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil
	}

	var parsed struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil
	}

	params := make([]string, 0, len(parsed.Properties))
	for name := range parsed.Properties {
		params = append(params, name)
	}
	sort.Strings(params)
	return params
}
