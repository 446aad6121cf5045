package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Stylesheet is a source of style rules attached to a surface. A sheet
// whose rules cannot be read returns an error; callers skip it.
type Stylesheet interface {
	Href() string
	Rules(ctx context.Context) ([]string, error)
}

// InlineStylesheet is CSS text compiled into the binary.
type InlineStylesheet struct {
	Name string
	CSS  string
}

func (s InlineStylesheet) Href() string { return "inline:" + s.Name }

func (s InlineStylesheet) Rules(context.Context) ([]string, error) {
	return SplitRules(s.CSS), nil
}

const maxStylesheetSize = 1 << 20

// RemoteStylesheet is fetched over HTTP each time its rules are read.
type RemoteStylesheet struct {
	URL    string
	Client *http.Client
}

func NewRemoteStylesheet(url string) RemoteStylesheet {
	return RemoteStylesheet{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s RemoteStylesheet) Href() string { return s.URL }

func (s RemoteStylesheet) Rules(ctx context.Context) ([]string, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching stylesheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for stylesheet %s", resp.StatusCode, s.URL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStylesheetSize))
	if err != nil {
		return nil, fmt.Errorf("reading stylesheet: %w", err)
	}

	return SplitRules(string(body)), nil
}

// SplitRules breaks CSS text into its top-level rules. Comments are
// dropped and at-rule blocks such as @media stay whole.
func SplitRules(css string) []string {
	css = stripComments(css)

	var (
		rules []string
		depth int
		start int
	)

	for i, c := range css {
		switch c {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				start = i + 1
				continue
			}

			depth--
			if depth == 0 {
				if rule := strings.TrimSpace(css[start : i+1]); rule != "" {
					rules = append(rules, rule)
				}

				start = i + 1
			}
		case ';':
			// Statement at-rules such as @import end without a block.
			if depth == 0 {
				if rule := strings.TrimSpace(css[start : i+1]); strings.HasPrefix(rule, "@") {
					rules = append(rules, rule)
				}

				start = i + 1
			}
		}
	}

	return rules
}

func stripComments(css string) string {
	var b strings.Builder

	for {
		open := strings.Index(css, "/*")
		if open < 0 {
			b.WriteString(css)
			return b.String()
		}

		b.WriteString(css[:open])

		end := strings.Index(css[open+2:], "*/")
		if end < 0 {
			return b.String()
		}

		css = css[open+2+end+2:]
	}
}
