package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

// Service retrieves pages for the fetch_page demo tool.
type Service struct {
	config Config
	logger zerolog.Logger
}

// Config represents fetcher configuration
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int64
}

// Result represents a fetched page
type Result struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
}

// NewService creates a new fetch service
func NewService(config Config, logger zerolog.Logger) *Service {
	return &Service{
		config: config,
		logger: logger.With().Str("component", "fetch").Logger(),
	}
}

// Page fetches a single URL and extracts its title and visible text.
func (s *Service) Page(ctx context.Context, url string) (*Result, error) {
	s.logger.Info().Str("url", url).Msg("Fetching page")

	c := colly.NewCollector(
		colly.UserAgent(s.config.UserAgent),
		colly.MaxBodySize(int(s.config.MaxBodySize)),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.config.Timeout)

	result := &Result{URL: url}
	var fetchErr error

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			result.StatusCode = r.StatusCode
		}
	})

	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.ContentType = r.Headers.Get("Content-Type")
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		result.Title = strings.TrimSpace(e.ChildText("title"))

		body := e.DOM.Find("body").Clone()
		for _, excluded := range []string{"script", "style", "noscript", "nav", "header", "footer"} {
			body.Find(excluded).Remove()
		}
		result.Text = cleanText(body.Text())
	})

	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, fetchErr)
	}

	s.logger.Info().
		Str("url", url).
		Int("status", result.StatusCode).
		Int("text_length", len(result.Text)).
		Msg("Fetch completed")

	return result, nil
}

// cleanText collapses blank lines and trims each remaining one.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	var cleanLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanLines = append(cleanLines, line)
		}
	}

	return strings.Join(cleanLines, "\n")
}
