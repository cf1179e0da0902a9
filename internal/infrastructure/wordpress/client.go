// Package wordpress reads published articles over the WordPress REST API.
// Full article content sits behind the paywall, so FetchPost authenticates
// with an application password; the index listing works unauthenticated.
package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/emilyparentdata/StagingTools/internal/domain"
	"github.com/emilyparentdata/StagingTools/internal/ports"
)

const userAgent = "ParentData-StagingTool/1.0"

// Client talks to one WordPress site.
type Client struct {
	baseURL  string
	siteURL  string
	username string
	password string
	pageSize int
	http     *http.Client
	logger   *slog.Logger
}

var _ ports.CMS = (*Client)(nil)

// NewClient builds a REST client. baseURL points at the wp/v2 namespace.
func NewClient(baseURL, siteURL, username, password string, pageSize int, logger *slog.Logger) *Client {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		siteURL:  strings.TrimRight(siteURL, "/"),
		username: username,
		password: password,
		pageSize: pageSize,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

// post mirrors the fields of a wp/v2 post record that the tool consumes.
type post struct {
	Title    rendered `json:"title"`
	Content  rendered `json:"content"`
	Excerpt  rendered `json:"excerpt"`
	Link     string   `json:"link"`
	Embedded struct {
		Author []struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		} `json:"author"`
		FeaturedMedia []struct {
			SourceURL    string `json:"source_url"`
			AltText      string `json:"alt_text"`
			MediaDetails struct {
				Sizes map[string]struct {
					SourceURL string `json:"source_url"`
				} `json:"sizes"`
			} `json:"media_details"`
		} `json:"wp:featuredmedia"`
		Terms [][]struct {
			Name     string `json:"name"`
			Taxonomy string `json:"taxonomy"`
		} `json:"wp:term"`
	} `json:"_embedded"`
}

type rendered struct {
	Rendered string `json:"rendered"`
}

// FetchPost resolves an article URL to its full post record. The slug is
// the last path segment of the URL.
func (c *Client) FetchPost(ctx context.Context, articleURL string) (ports.PublishedPost, error) {
	slug := slugFromURL(articleURL)
	if slug == "" {
		return ports.PublishedPost{}, fmt.Errorf("no slug in URL %q", articleURL)
	}
	if c.username == "" || c.password == "" {
		return ports.PublishedPost{}, fmt.Errorf("CMS credentials are not configured; full article content requires an application password")
	}

	params := url.Values{
		"slug":   {slug},
		"_embed": {"wp:featuredmedia,wp:term,author"},
		"status": {"publish"},
	}
	var posts []post
	if err := c.getJSON(ctx, c.baseURL+"/posts?"+params.Encode(), true, &posts); err != nil {
		return ports.PublishedPost{}, err
	}
	if len(posts) == 0 {
		return ports.PublishedPost{}, fmt.Errorf("no published post found for slug %q", slug)
	}

	p := posts[0]
	result := ports.PublishedPost{
		Title:       stripTags(p.Title.Rendered),
		URL:         articleURL,
		ExcerptText: strings.TrimSpace(stripTags(p.Excerpt.Rendered)),
		ContentHTML: p.Content.Rendered,
	}
	if len(p.Embedded.Author) > 0 {
		result.AuthorName = p.Embedded.Author[0].Name
		if slug := p.Embedded.Author[0].Slug; slug != "" && c.siteURL != "" {
			result.AuthorURL = c.siteURL + "/author/" + slug + "/"
		}
	}
	if len(p.Embedded.FeaturedMedia) > 0 {
		m := p.Embedded.FeaturedMedia[0]
		result.FeaturedImageURL = m.SourceURL
		result.FeaturedImageAlt = m.AltText
		if result.FeaturedImageAlt == "" {
			result.FeaturedImageAlt = result.Title
		}
	}
	for _, taxonomy := range p.Embedded.Terms {
		for _, term := range taxonomy {
			if term.Taxonomy == "post_tag" {
				result.TopicTags = append(result.TopicTags, term.Name)
			}
		}
	}
	c.debug("fetched post", "slug", slug, "tags", len(result.TopicTags))
	return result, nil
}

// ListArticles pages through every published post for the index cache.
func (c *Client) ListArticles(ctx context.Context) ([]domain.IndexArticle, error) {
	var articles []domain.IndexArticle
	for page := 1; ; page++ {
		params := url.Values{
			"per_page": {strconv.Itoa(c.pageSize)},
			"page":     {strconv.Itoa(page)},
			"_embed":   {"wp:featuredmedia,wp:term"},
			"status":   {"publish"},
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/posts?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("list posts page %d: %w", page, err)
		}
		// WordPress answers 400 once page exceeds the total page count.
		if resp.StatusCode == http.StatusBadRequest {
			resp.Body.Close()
			break
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("list posts page %d: status %d", page, resp.StatusCode)
		}

		var posts []post
		err = json.NewDecoder(resp.Body).Decode(&posts)
		totalPages, _ := strconv.Atoi(resp.Header.Get("X-WP-TotalPages"))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode posts page %d: %w", page, err)
		}
		if len(posts) == 0 {
			break
		}

		for _, p := range posts {
			articles = append(articles, indexArticle(p))
		}
		c.debug("indexed page", "page", page, "totalPages", totalPages, "articles", len(articles))
		if totalPages > 0 && page >= totalPages {
			break
		}
	}
	return articles, nil
}

func indexArticle(p post) domain.IndexArticle {
	a := domain.IndexArticle{
		Title:   stripTags(p.Title.Rendered),
		URL:     p.Link,
		Tagline: shortTagline(strings.TrimSpace(stripTags(p.Excerpt.Rendered))),
	}
	if len(p.Embedded.FeaturedMedia) > 0 {
		m := p.Embedded.FeaturedMedia[0]
		// Prefer a medium-sized rendition to keep URLs lightweight.
		for _, size := range []string{"medium_large", "large", "full"} {
			if s, ok := m.MediaDetails.Sizes[size]; ok && s.SourceURL != "" {
				a.ImageURL = s.SourceURL
				break
			}
		}
		if a.ImageURL == "" {
			a.ImageURL = m.SourceURL
		}
	}
	for _, taxonomy := range p.Embedded.Terms {
		for _, term := range taxonomy {
			if term.Taxonomy == "post_tag" {
				a.TopicTags = append(a.TopicTags, term.Name)
			}
		}
	}
	return a
}

func (c *Client) getJSON(ctx context.Context, rawURL string, auth bool, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	if auth {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func slugFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

var (
	tagExpr         = regexp.MustCompile(`<[^>]+>`)
	sentenceEndExpr = regexp.MustCompile(`[.!?]`)
)

func stripTags(s string) string {
	return strings.TrimSpace(tagExpr.ReplaceAllString(s, ""))
}

// shortTagline trims to the first sentence and caps the length so related
// article cards stay one to two lines.
func shortTagline(text string) string {
	const maxLen = 70
	if text == "" {
		return ""
	}
	if loc := sentenceEndExpr.FindStringIndex(text); loc != nil && loc[0] < maxLen {
		text = text[:loc[1]]
	}
	if len(text) > maxLen {
		cut := text[:maxLen]
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
		text = strings.TrimRight(cut, ".,;:") + "…"
	}
	return strings.TrimSpace(text)
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
