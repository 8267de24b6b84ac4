package repository

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/pkg/httpclient"
	"stock-insight/pkg/logger"
)

type ScraperRepository interface {
	Scrape(ctx context.Context, pageURL string) (*dto.ScrapedPage, error)
}

type scraperRepository struct {
	cfg    *config.Config
	log    *logger.Logger
	client httpclient.HTTPClient
}

func NewScraperRepository(cfg *config.Config, log *logger.Logger) ScraperRepository {
	return &scraperRepository{
		cfg:    cfg,
		log:    log,
		client: httpclient.New("", cfg.Scraper.BaseTimeout),
	}
}

// Scrape fetches a page and extracts its title and readable text, truncated
// to the configured page length.
func (r *scraperRepository) Scrape(ctx context.Context, pageURL string) (*dto.ScrapedPage, error) {
	headers := map[string]string{
		"User-Agent": browserUserAgent,
		"Accept":     "text/html,application/xhtml+xml",
	}

	resp, err := r.client.Get(ctx, pageURL, nil, headers, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	title, content := extractReadableText(resp.Body)
	content = truncateRunes(content, r.cfg.Scraper.MaxPageLength)

	r.log.InfoContext(ctx, "scraped page",
		logger.StringField("url", pageURL),
		logger.IntField("content_length", len(content)))

	return &dto.ScrapedPage{
		URL:     pageURL,
		Title:   title,
		Content: content,
	}, nil
}

var textTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"li": true, "blockquote": true, "td": true,
}

// extractReadableText walks the DOM collecting the title and text from
// paragraph-like elements, skipping script and style subtrees.
func extractReadableText(body []byte) (string, string) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", ""
	}

	var title string
	var blocks []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if title == "" {
					title = strings.TrimSpace(nodeText(n))
				}
				return
			}
			if textTags[n.Data] {
				if text := strings.TrimSpace(nodeText(n)); text != "" {
					blocks = append(blocks, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title, strings.Join(blocks, "\n")
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
