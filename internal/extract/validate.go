package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

var graphPlaceholderExpr = regexp.MustCompile(`\[\[GRAPH_(\d+)\]\]`)

// buildFieldSet validates the oracle payload for the requested layout and
// merges in detected fallbacks and staging hints. Any schema violation is
// reported with the offending field name, never silently repaired.
func (o *Orchestrator) buildFieldSet(doc *domain.Document, template domain.Template, payload oraclePayload) (*domain.FieldSet, error) {
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		title = doc.Detected.Title
	}
	if title == "" {
		return nil, &domain.ExtractionMalformedError{Field: "title", Reason: "missing or empty"}
	}

	body := payload.ArticleBodyHTML
	if strings.TrimSpace(body) == "" {
		return nil, &domain.ExtractionMalformedError{Field: "article_body_html", Reason: "missing or empty"}
	}
	if err := checkBalanced("article_body_html", body); err != nil {
		return nil, err
	}

	authorName := strings.TrimSpace(payload.AuthorName)
	if authorName == "" {
		authorName = doc.Detected.AuthorName
	}
	if authorName == "" && template != domain.TemplateQA {
		return nil, &domain.ExtractionMalformedError{Field: "author_name", Reason: "missing or empty"}
	}

	authorTitle := strings.TrimSpace(payload.AuthorTitle)
	if authorTitle == "" {
		authorTitle = doc.Detected.AuthorTitle
	}

	subtitles := trimLines(payload.SubtitleLines)
	if len(subtitles) == 0 && doc.Detected.Subtitle != "" {
		subtitles = []string{doc.Detected.Subtitle}
	}

	tags := dedupeStrings(payload.TopicTags)
	if len(tags) == 0 {
		tags = dedupeStrings(doc.Detected.TopicTags)
	}

	if err := checkGraphPlaceholders(body, doc.GraphCount()); err != nil {
		return nil, err
	}

	authorURL := doc.Detected.AuthorURL
	if authorURL == "" {
		authorURL = o.defaultAuthorURL
	}

	fs := &domain.FieldSet{
		Template:         template,
		Title:            title,
		SubtitleLines:    subtitles,
		AuthorName:       authorName,
		AuthorTitle:      authorTitle,
		AuthorURL:        authorURL,
		TopicTags:        tags,
		BodyHTML:         body,
		GraphSlots:       graphSlots(doc),
		FeaturedImageURL: doc.Hints.FeaturedImageURL,
		FeaturedImageAlt: doc.Hints.FeaturedImageAlt,
	}
	if fs.FeaturedImageAlt == "" && fs.FeaturedImageURL != "" {
		fs.FeaturedImageAlt = title
	}
	if doc.Origin.Kind == domain.OriginPublished {
		fs.ArticleURL = doc.Origin.Reference
	}

	switch template {
	case domain.TemplateStandard:
		if payload.WelcomeHTML != "" {
			if err := checkBalanced("welcome_html", payload.WelcomeHTML); err != nil {
				return nil, err
			}
			fs.WelcomeHTML = payload.WelcomeHTML
		}
	case domain.TemplateFertility:
		// Fertility articles never carry a welcome section.
		if payload.BottomLineHTML != "" {
			if err := checkBalanced("bottom_line_html", payload.BottomLineHTML); err != nil {
				return nil, err
			}
			fs.BottomLineHTML = payload.BottomLineHTML
		}
	case domain.TemplateMarketing:
		// Banner, intro variant, plan, and discount fields are review-time
		// inputs; extraction only supplies the article fields.
	}

	return fs, nil
}

// graphSlots builds one ordered slot per document image placeholder,
// pre-filled from staging hints where available.
func graphSlots(doc *domain.Document) []domain.GraphSlot {
	count := doc.GraphCount()
	if count == 0 {
		return nil
	}
	slots := make([]domain.GraphSlot, count)
	for i := range slots {
		slots[i].Index = i + 1
		if i < len(doc.Hints.Graphs) {
			slots[i].URL = doc.Hints.Graphs[i].URL
			slots[i].Alt = doc.Hints.Graphs[i].Label
		}
	}
	return slots
}

// checkGraphPlaceholders verifies the oracle preserved every [[GRAPH_N]]
// marker: the marker count must equal the document's image count and indices
// must stay within 1..count.
func checkGraphPlaceholders(body string, want int) error {
	matches := graphPlaceholderExpr.FindAllStringSubmatch(body, -1)
	if len(matches) != want {
		return &domain.ExtractionMalformedError{
			Field:  "article_body_html",
			Reason: fmt.Sprintf("expected %d graph placeholders, found %d", want, len(matches)),
		}
	}
	seen := map[string]struct{}{}
	for _, m := range matches {
		if _, dup := seen[m[1]]; dup {
			return &domain.ExtractionMalformedError{
				Field:  "article_body_html",
				Reason: "duplicate graph placeholder [[GRAPH_" + m[1] + "]]",
			}
		}
		seen[m[1]] = struct{}{}
		if n, err := strconv.Atoi(m[1]); err != nil || n < 1 || n > want {
			return &domain.ExtractionMalformedError{
				Field:  "article_body_html",
				Reason: fmt.Sprintf("graph placeholder [[GRAPH_%s]] is outside 1..%d", m[1], want),
			}
		}
	}
	return nil
}

// voidElements never take a closing tag in HTML.
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

// checkBalanced verifies an HTML fragment has matched open/close tags so it
// can be embedded inline without breaking the surrounding layout.
func checkBalanced(field, fragment string) error {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var stack []string
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if len(stack) > 0 {
				return &domain.ExtractionMalformedError{
					Field:  field,
					Reason: "unclosed <" + stack[len(stack)-1] + "> tag",
				}
			}
			return nil
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if _, void := voidElements[tag]; !void {
				stack = append(stack, tag)
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if len(stack) == 0 || stack[len(stack)-1] != tag {
				return &domain.ExtractionMalformedError{
					Field:  field,
					Reason: "unexpected closing </" + tag + "> tag",
				}
			}
			stack = stack[:len(stack)-1]
		}
	}
}

func trimLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
