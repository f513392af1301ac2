// Package search talks to the outside web: Brave or DuckDuckGo for
// search, plus a page fetcher. Failures never propagate - a failed
// search is an empty result list and a failed fetch is an error string,
// so the chat flow degrades instead of aborting.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/markdave123-py/parley/internal/models"
)

const (
	braveEndpoint      = "https://api.search.brave.com/res/v1/web/search"
	duckduckgoEndpoint = "https://html.duckduckgo.com/html/"
	userAgent          = "Mozilla/5.0 (compatible; Parley Chat App)"

	// Visible page text is capped so a fetched article can't blow up
	// the prompt.
	fetchContentCap = 5000
)

// WebSearcher queries Brave when an API key is configured and falls
// back to scraping DuckDuckGo's HTML endpoint otherwise.
type WebSearcher struct {
	braveAPIKey string
	braveURL    string
	ddgURL      string
	httpClient  *http.Client
}

// NewWebSearcher builds a searcher with the given Brave key (may be
// empty) and a bounded outbound timeout.
func NewWebSearcher(braveAPIKey string, timeout time.Duration) *WebSearcher {
	return &WebSearcher{
		braveAPIKey: braveAPIKey,
		braveURL:    braveEndpoint,
		ddgURL:      duckduckgoEndpoint,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Search returns up to numResults hits. Any provider failure is logged
// and swallowed; callers always get a usable (possibly empty) slice.
func (ws *WebSearcher) Search(ctx context.Context, query string, numResults int) []models.SearchResult {
	if ws.braveAPIKey != "" {
		results, err := ws.searchBrave(ctx, query, numResults)
		if err != nil {
			log.Printf("brave search failed: %v", err)
			return []models.SearchResult{}
		}
		return results
	}

	results, err := ws.searchDuckDuckGo(ctx, query, numResults)
	if err != nil {
		log.Printf("duckduckgo search failed: %v", err)
		return []models.SearchResult{}
	}
	return results
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (ws *WebSearcher) searchBrave(ctx context.Context, query string, numResults int) ([]models.SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ws.braveURL, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", numResults))
	q.Set("search_lang", "en")
	q.Set("country", "us")
	q.Set("safesearch", "moderate")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("X-Subscription-Token", ws.braveAPIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := ws.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave returned status %d", resp.StatusCode)
	}

	var body braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(body.Web.Results))
	for _, item := range body.Web.Results {
		results = append(results, models.SearchResult{
			Title:   item.Title,
			URL:     item.URL,
			Snippet: item.Description,
			Source:  "brave",
		})
	}
	return results, nil
}

func (ws *WebSearcher) searchDuckDuckGo(ctx context.Context, query string, numResults int) ([]models.SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ws.ddgURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := ws.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var results []models.SearchResult
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := sel.Find("a.result__a").First()
		if title.Length() == 0 {
			return true
		}
		href, _ := title.Attr("href")
		results = append(results, models.SearchResult{
			Title:   strings.TrimSpace(title.Text()),
			URL:     href,
			Snippet: strings.TrimSpace(sel.Find("a.result__snippet").First().Text()),
			Source:  "duckduckgo",
		})
		return len(results) < numResults
	})
	return results, nil
}

// FetchPage downloads url and returns its visible text with script and
// style content stripped, capped at 5,000 characters. On any failure it
// returns a description of the error in place of content.
func (ws *WebSearcher) FetchPage(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Sprintf("Error fetching content: %v", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := ws.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("Error fetching content: %v", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Sprintf("Error fetching content: %v", err)
	}

	doc.Find("script, style").Remove()
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if len(text) > fetchContentCap {
		text = text[:fetchContentCap]
	}
	return text
}
