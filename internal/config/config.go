package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LLM holds settings for the OpenAI-compatible chat backend.
type LLM struct {
	APIKey      string
	BaseURL     string // For custom OpenAI-compatible endpoints
	Model       string
	MaxTokens   int
	Temperature float32
}

// Server is the demo MCP server configuration.
type Server struct {
	Name    string  `yaml:"name"`
	Version string  `yaml:"version"`
	Fetcher Fetcher `yaml:"fetcher"`
}

// Fetcher configures the fetch_page tool.
type Fetcher struct {
	UserAgent   string   `yaml:"userAgent"`
	Timeout     Duration `yaml:"timeout"`
	MaxBodySize int64    `yaml:"maxBodySize"`
}

// Duration wraps time.Duration so YAML configs can use values like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

const (
	DefaultModel       = "gpt-4o-mini"
	defaultMaxTokens   = 1000
	defaultTemperature = 0.2
)

// LoadEnv loads a .env file when present. Missing files are not an error;
// the environment may already carry everything we need.
func LoadEnv() {
	_ = godotenv.Load()
}

// LoadLLM builds the LLM configuration from the environment. The API key is
// required; everything else has a default.
func LoadLLM() (LLM, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return LLM{}, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	return LLM{
		APIKey:      apiKey,
		BaseURL:     os.Getenv("OPENAI_BASE_URL"),
		Model:       GetEnvDefault("OPENAI_MODEL", DefaultModel),
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}, nil
}

// LoadServer reads the demo server configuration from a YAML file. An empty
// path returns the defaults.
func LoadServer(path string) (*Server, error) {
	cfg := defaultServer()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	setServerDefaults(cfg)

	return cfg, nil
}

func defaultServer() *Server {
	cfg := &Server{}
	setServerDefaults(cfg)
	return cfg
}

func setServerDefaults(cfg *Server) {
	if cfg.Name == "" {
		cfg.Name = "demo-mcp-server"
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.Fetcher.UserAgent == "" {
		cfg.Fetcher.UserAgent = "mcpcli/1.0"
	}
	if cfg.Fetcher.Timeout == 0 {
		cfg.Fetcher.Timeout = Duration(30 * time.Second)
	}
	if cfg.Fetcher.MaxBodySize == 0 {
		cfg.Fetcher.MaxBodySize = 10 * 1024 * 1024 // 10MB
	}
}

// expandEnvVars replaces ${VAR_NAME} with the value of the environment variable
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// GetEnvDefault retrieves an environment variable or returns a default value
func GetEnvDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
