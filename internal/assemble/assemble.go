// Package assemble turns a committed Field Set into a finished email HTML
// document. Assembly is a pure function of its inputs: identical fields and
// fill-ins always produce byte-identical output, so the only injected
// dependency is the clock used for the footer year.
package assemble

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

// Engine builds email documents for the four layout variants.
type Engine struct {
	siteName string
	now      func() time.Time
}

// New builds an engine. now may be nil, in which case time.Now is used.
func New(siteName string, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{siteName: siteName, now: now}
}

// Assemble validates the required fields for the variant, builds the layout,
// substitutes inline graph slots, and applies the email compatibility fixes.
// Fields the reviewer left blank are emitted blank; only unassigned graph
// slots are dropped from the output entirely.
func (e *Engine) Assemble(fs *domain.FieldSet, related []domain.RelatedArticle) (string, error) {
	if err := checkRequired(fs); err != nil {
		return "", err
	}

	var html string
	switch fs.Template {
	case domain.TemplateStandard:
		html = e.buildStandard(fs, related)
	case domain.TemplateFertility:
		html = e.buildFertility(fs)
	case domain.TemplateQA:
		html = e.buildQA(fs)
	case domain.TemplateMarketing:
		html = e.buildMarketing(fs)
	default:
		return "", fmt.Errorf("unknown template %q", fs.Template)
	}

	html = substituteGraphs(html, fs.GraphSlots)
	return applyEmailFixes(html), nil
}

// checkRequired reports the first required field the review never filled.
// Missing fields surface here, before any HTML is produced.
func checkRequired(fs *domain.FieldSet) error {
	switch fs.Template {
	case domain.TemplateStandard:
		for _, f := range []struct{ name, value string }{
			{"title", fs.Title}, {"body_html", fs.BodyHTML}, {"author_name", fs.AuthorName},
		} {
			if strings.TrimSpace(f.value) == "" {
				return &domain.FieldMissingError{Field: f.name}
			}
		}
	case domain.TemplateFertility:
		for _, f := range []struct{ name, value string }{
			{"title", fs.Title}, {"body_html", fs.BodyHTML}, {"bottom_line_html", fs.BottomLineHTML},
		} {
			if strings.TrimSpace(f.value) == "" {
				return &domain.FieldMissingError{Field: f.name}
			}
		}
	case domain.TemplateQA:
		if len(fs.QAPairs) == 0 {
			return &domain.FieldMissingError{Field: "qa_pairs"}
		}
		for _, pair := range fs.QAPairs {
			if strings.TrimSpace(pair.QuestionText) == "" {
				return &domain.FieldMissingError{Field: "question_text"}
			}
			if strings.TrimSpace(pair.AnswerHTML) == "" {
				return &domain.FieldMissingError{Field: "answer_html"}
			}
		}
	case domain.TemplateMarketing:
		for _, f := range []struct{ name, value string }{
			{"title", fs.Title}, {"body_html", fs.BodyHTML},
			{"intro_option_text", fs.IntroOptionText},
			{"discount_price", fs.DiscountPrice}, {"discount_url", fs.DiscountURL},
		} {
			if strings.TrimSpace(f.value) == "" {
				return &domain.FieldMissingError{Field: f.name}
			}
		}
	}
	return nil
}

var graphPlaceholderExpr = regexp.MustCompile(`\[\[GRAPH_(\d+)\]\]`)

// substituteGraphs replaces [[GRAPH_N]] markers with inline image blocks.
// A slot with no assigned URL is removed from the output; a visible marker
// or a broken image reference must never reach a subscriber inbox.
func substituteGraphs(html string, slots []domain.GraphSlot) string {
	byIndex := make(map[int]domain.GraphSlot, len(slots))
	for _, s := range slots {
		byIndex[s.Index] = s
	}
	return graphPlaceholderExpr.ReplaceAllStringFunc(html, func(marker string) string {
		n := 0
		fmt.Sscanf(marker, "[[GRAPH_%d]]", &n)
		slot, ok := byIndex[n]
		if !ok || slot.URL == "" {
			return ""
		}
		alt := slot.Alt
		if alt == "" {
			alt = fmt.Sprintf("Graph %d", n)
		}
		return fmt.Sprintf(graphImageDiv, escapeAttr(alt), escapeAttr(slot.URL))
	})
}

var firstHeadingExpr = regexp.MustCompile(`(?i)<h[12][\s>]`)

// splitAtFirstHeading divides body HTML into the part before the first
// h1/h2 and the part from that heading onward.
func splitAtFirstHeading(html string) (intro, main string) {
	loc := firstHeadingExpr.FindStringIndex(html)
	if loc == nil {
		return html, ""
	}
	return html[:loc[0]], html[loc[0]:]
}

var closingPExpr = regexp.MustCompile(`(?i)</p>`)

// splitAfterParagraphs splits immediately after the nth closing </p>, so a
// heading-free body still gets a natural image position.
func splitAfterParagraphs(html string, n int) (string, string) {
	pos := 0
	for i := 0; i < n; i++ {
		loc := closingPExpr.FindStringIndex(html[pos:])
		if loc == nil {
			return html, ""
		}
		pos += loc[1]
	}
	return html[:pos], html[pos:]
}

var (
	fontSize22Expr = regexp.MustCompile(`\bfont-size:\s*22px`)
	fontSize16Expr = regexp.MustCompile(`\bfont-size:\s*16px`)
)

// scaleMarketingFonts shrinks the body text so the article reads as a
// preview inside the marketing frame rather than a full newsletter.
func scaleMarketingFonts(html string) string {
	html = fontSize22Expr.ReplaceAllString(html, "font-size:18px")
	return fontSize16Expr.ReplaceAllString(html, "font-size:14px")
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

func escapeAttr(v string) string { return attrEscaper.Replace(v) }

var textEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")

func escapeText(v string) string { return textEscaper.Replace(v) }
