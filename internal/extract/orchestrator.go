// Package extract turns a normalized Document into a validated Field Set by
// way of a single oracle call per document. The validation layer here is the
// boundary that converts an unreliable external call into a well-typed,
// checkable record; it must not be weakened even when the oracle is trusted.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/emilyparentdata/StagingTools/internal/domain"
	"github.com/emilyparentdata/StagingTools/internal/ports"
)

// Orchestrator drives field extraction against the oracle.
type Orchestrator struct {
	oracle           ports.Oracle
	defaultAuthorURL string
	logger           *slog.Logger
}

// NewOrchestrator wires the oracle boundary and site defaults.
func NewOrchestrator(oracle ports.Oracle, defaultAuthorURL string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{oracle: oracle, defaultAuthorURL: defaultAuthorURL, logger: logger}
}

// oraclePayload is the superset of JSON keys across all layout schemas.
type oraclePayload struct {
	Title           string   `json:"title"`
	SubtitleLines   []string `json:"subtitle_lines"`
	AuthorName      string   `json:"author_name"`
	AuthorTitle     string   `json:"author_title"`
	TopicTags       []string `json:"topic_tags"`
	WelcomeHTML     string   `json:"welcome_html"`
	ArticleBodyHTML string   `json:"article_body_html"`
	BottomLineHTML  string   `json:"bottom_line_html"`
	QuestionText    string   `json:"question_text"`
	QuestionAuthor  string   `json:"question_author"`
	AnswerHTML      string   `json:"answer_html"`
}

// Extract runs one oracle call for the document and validates the response
// into a Field Set for the requested layout. The Q&A layout uses ExtractPair.
func (o *Orchestrator) Extract(ctx context.Context, doc *domain.Document, template domain.Template) (*domain.FieldSet, error) {
	if template == domain.TemplateQA {
		return nil, errors.New("fertility-qa field sets are produced by ExtractPair")
	}

	payload, err := o.invoke(ctx, instruction(doc, template))
	if err != nil {
		return nil, err
	}

	fs, err := o.buildFieldSet(doc, template, payload)
	if err != nil {
		return nil, err
	}

	o.debug("extraction complete", "template", string(template), "origin", doc.Origin.Reference, "graphs", len(fs.GraphSlots))
	return fs, nil
}

// ExtractPair runs one extraction per source article and merges the halves
// into a single Q&A Field Set. A failure in either half fails the pairing;
// no partial pair is ever surfaced to review.
func (o *Orchestrator) ExtractPair(ctx context.Context, first, second *domain.Document) (*domain.FieldSet, error) {
	pair1, err := o.extractQA(ctx, first)
	if err != nil {
		return nil, err
	}
	pair2, err := o.extractQA(ctx, second)
	if err != nil {
		return nil, err
	}

	authors := dedupeStrings([]string{
		stripNameCredentials(first.Detected.AuthorName),
		stripNameCredentials(second.Detected.AuthorName),
	})

	fs := &domain.FieldSet{
		Template:        domain.TemplateQA,
		QAPairs:         []domain.QAPair{pair1, pair2},
		AttributionLine: strings.Join(authors, " and "),
		TopicTags:       dedupeStrings(append(append([]string(nil), first.Detected.TopicTags...), second.Detected.TopicTags...)),
	}
	return fs, nil
}

func (o *Orchestrator) extractQA(ctx context.Context, doc *domain.Document) (domain.QAPair, error) {
	payload, err := o.invoke(ctx, qaInstruction(doc))
	if err != nil {
		return domain.QAPair{}, err
	}

	if strings.TrimSpace(payload.QuestionText) == "" {
		return domain.QAPair{}, &domain.ExtractionMalformedError{Field: "question_text", Reason: "missing or empty"}
	}
	if strings.TrimSpace(payload.AnswerHTML) == "" {
		return domain.QAPair{}, &domain.ExtractionMalformedError{Field: "answer_html", Reason: "missing or empty"}
	}
	if err := checkBalanced("answer_html", payload.AnswerHTML); err != nil {
		return domain.QAPair{}, err
	}

	return domain.QAPair{
		QuestionText:   payload.QuestionText,
		QuestionAuthor: payload.QuestionAuthor,
		AnswerHTML:     payload.AnswerHTML,
	}, nil
}

func (o *Orchestrator) invoke(ctx context.Context, prompt string) (oraclePayload, error) {
	raw, err := o.oracle.Complete(ctx, prompt)
	if err != nil {
		var unavailable *domain.ExtractionUnavailableError
		if errors.As(err, &unavailable) {
			return oraclePayload{}, err
		}
		return oraclePayload{}, &domain.ExtractionUnavailableError{Retryable: true, Err: err}
	}

	var payload oraclePayload
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &payload); err != nil {
		return oraclePayload{}, &domain.ExtractionMalformedError{Field: "response", Reason: "not a JSON object: " + err.Error()}
	}
	return payload, nil
}

// cleanJSONResponse strips markdown code fences and surrounding prose the
// oracle occasionally wraps around its JSON output.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

var namePrefixExpr = regexp.MustCompile(`(?i)^(Dr|Prof|Professor|Mr|Ms|Mrs|Mx)\.?\s+`)
var nameSuffixExpr = regexp.MustCompile(`\s*,.*$`)

// stripNameCredentials reduces "Dr. Jane Roe, MD" to "Jane Roe".
func stripNameCredentials(name string) string {
	name = namePrefixExpr.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.TrimSpace(nameSuffixExpr.ReplaceAllString(name, ""))
}

func dedupeStrings(values []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (o *Orchestrator) debug(msg string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}
