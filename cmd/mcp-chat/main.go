// Command mcp-chat is the minimal chat client: it launches an MCP server as
// a subprocess over stdio, hands its tools to the LLM, and runs a plain
// read-eval loop. For transport selection and one-off tool calls use mcp-cli.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/mcplab/mcpcli/internal/agent"
	"github.com/mcplab/mcpcli/internal/config"
)

func main() {
	config.LoadEnv()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	llmConfig, err := config.LoadLLM()
	if err != nil {
		fmt.Println("❌ No OPENAI_API_KEY found in environment")
		fmt.Println("   Set it with: export OPENAI_API_KEY=your_key")
		os.Exit(1)
	}
	fmt.Printf("✅ OpenAI client ready (%s)\n", llmConfig.Model)

	// The server command is the single optional argument.
	serverCommand := "./mcp-server"
	var serverArgs []string
	if len(os.Args) > 1 {
		serverCommand = os.Args[1]
		serverArgs = os.Args[2:]
	}

	client := gomcp.NewClient(&gomcp.Implementation{
		Name:    "mcp-chat",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &gomcp.CommandTransport{
		Command: exec.CommandContext(ctx, serverCommand, serverArgs...),
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to MCP server: %v", err)
	}
	defer session.Close()

	chatAgent := agent.NewAgent(logger, session, llmConfig)
	if err := chatAgent.RefreshTools(ctx); err != nil {
		log.Fatalf("Failed to load tools: %v", err)
	}
	fmt.Printf("✅ Connected to MCP server: %d tools available\n", chatAgent.Tools())

	fmt.Println()
	fmt.Println("🤖 MCP Chat Session Started")
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
			return
		}

		response, err := chatAgent.ProcessQuery(ctx, userInput)
		if err != nil {
			fmt.Printf("❌ Error: %v\n\n", err)
			continue
		}

		if len(response.ToolCalls) > 0 {
			names := make([]string, 0, len(response.ToolCalls))
			for _, call := range response.ToolCalls {
				names = append(names, call.Name)
			}
			fmt.Printf("🔧 Used tools: %s\n", strings.Join(names, ", "))
		}
		fmt.Printf("Assistant: %s\n\n", response.Response)
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("scanner error: %v", err)
	}
}
