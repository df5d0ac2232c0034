package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/mvoronin/jobscout/internal/model"
)

const (
	linkedInSourceName = "LinkedIn"
	linkedInGuestPath  = "/jobs-guest/jobs/api/seeMoreJobPostings/search"

	// A browser-like UA; the guest endpoint rejects default Go clients.
	linkedInUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// LinkedInProvider scrapes LinkedIn's public guest search endpoint, which
// serves job cards as an HTML fragment. This is best-effort: markup changes
// or anti-bot responses surface as errors (or empty results) and are
// contained by the caller.
type LinkedInProvider struct {
	baseURL string
	client  *http.Client
}

// NewLinkedInProvider creates a provider pointed at baseURL
// (https://www.linkedin.com in production).
func NewLinkedInProvider(baseURL string, client *http.Client) *LinkedInProvider {
	return &LinkedInProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (p *LinkedInProvider) Name() string { return linkedInSourceName }

// Search fetches one page of guest results for the user's keywords and first
// location. LinkedIn takes a single location per query.
func (p *LinkedInProvider) Search(ctx context.Context, settings model.Settings) ([]model.Posting, error) {
	location := "Remote"
	if len(settings.Locations) > 0 {
		location = settings.Locations[0]
	}

	q := url.Values{}
	q.Set("keywords", strings.Join(settings.Keywords, " "))
	q.Set("location", location)
	q.Set("start", "0")

	reqURL := p.baseURL + linkedInGuestPath + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("linkedin search: %w", err)
	}
	req.Header.Set("User-Agent", linkedInUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("linkedin search"),
		}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("linkedin search: parsing response: %w", err)
	}

	return parseGuestCards(doc), nil
}

// parseGuestCards walks the fragment and extracts one posting per
// base-search-card node.
func parseGuestCards(doc *html.Node) []model.Posting {
	var postings []model.Posting

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "base-search-card") {
			if p, ok := parseCard(n); ok {
				postings = append(postings, p)
			}
			return // cards do not nest
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return postings
}

func parseCard(card *html.Node) (model.Posting, bool) {
	p := model.Posting{
		Salary: model.SalaryNotSpecified,
		Source: linkedInSourceName,
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "h3" && hasClass(n, "base-search-card__title"):
				p.Title = nodeText(n)
			case n.Data == "h4" && hasClass(n, "base-search-card__subtitle"):
				p.Company = nodeText(n)
			case n.Data == "span" && hasClass(n, "job-search-card__salary-info"):
				p.Salary = nodeText(n)
			case n.Data == "a" && hasClass(n, "base-card__full-link") && p.URL == "":
				p.URL = attrValue(n, "href")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(card)

	if p.Title == "" || p.URL == "" {
		return model.Posting{}, false
	}
	return p, true
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
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
