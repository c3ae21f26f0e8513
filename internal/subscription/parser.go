package subscription

import (
	"context"
	"fmt"
	"strings"
)

// Fetcher retrieves the raw body of a subscription URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchFunc adapts a plain function to Fetcher.
type FetchFunc func(ctx context.Context, url string) (string, error)

func (f FetchFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

type ParserLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type Parser struct {
	fetcher Fetcher
	decoder *Decoder
	logger  ParserLogger
}

func NewParser(fetcher Fetcher, decoder *Decoder, logger ParserLogger) *Parser {
	return &Parser{
		fetcher: fetcher,
		decoder: decoder,
		logger:  logger,
	}
}

// ParseURL fetches url and decodes its body. HTML pages are never fetched
// and yield no nodes. A fetch failure is returned; decoding never fails.
func (p *Parser) ParseURL(ctx context.Context, url string) ([]string, error) {
	if IsHTMLPage(url) {
		p.logger.Debug("skipping html page", "url", url)
		return nil, nil
	}

	content, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch subscription: %w", err)
	}

	outcome := p.decoder.DecodeOutcome(content)
	p.logger.Info("subscription decoded",
		"url", url,
		"strategy", outcome.Strategy.String(),
		"nodes", len(outcome.Nodes),
	)

	return outcome.Nodes, nil
}

var htmlSuffixes = []string{".htm", ".html", ".htm/", ".html/"}

func IsHTMLPage(url string) bool {
	lower := strings.ToLower(strings.TrimSpace(url))
	for _, suffix := range htmlSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
