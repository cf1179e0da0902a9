package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

// fakeOracle replays canned completions in order.
type fakeOracle struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeOracle) Complete(context.Context, string) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no canned response")
}

func articleDoc(graphs int) *domain.Document {
	doc := &domain.Document{
		Origin: domain.Origin{Kind: domain.OriginUpload, Reference: "draft.docx"},
		Detected: domain.DetectedMeta{
			Title:      "Detected Title",
			AuthorName: "Emily Oster",
			TopicTags:  []string{"Pregnancy"},
		},
	}
	doc.Blocks = append(doc.Blocks, domain.Block{Kind: domain.BlockParagraph, Text: "Intro."})
	for i := 0; i < graphs; i++ {
		doc.Blocks = append(doc.Blocks, domain.Block{Kind: domain.BlockImage, GraphIndex: i + 1})
	}
	return doc
}

func TestExtractStandard(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{responses: []string{`{
		"title": "Sleep Training, Revisited",
		"subtitle_lines": ["What the new data says", ""],
		"author_name": "Emily Oster",
		"author_title": "Professor of Economics",
		"topic_tags": ["Sleep", "Sleep", "Toddlers"],
		"welcome_html": "<p>Hi friends.</p>",
		"article_body_html": "<p>Body with a chart.</p>[[GRAPH_1]]<p>More.</p>"
	}`}}
	o := NewOrchestrator(oracle, "https://parentdata.org/author/eoster/", nil)

	fs, err := o.Extract(context.Background(), articleDoc(1), domain.TemplateStandard)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if fs.Title != "Sleep Training, Revisited" {
		t.Fatalf("unexpected title: %q", fs.Title)
	}
	if len(fs.SubtitleLines) != 1 || fs.SubtitleLines[0] != "What the new data says" {
		t.Fatalf("unexpected subtitles: %v", fs.SubtitleLines)
	}
	if got := fs.TopicTags; len(got) != 2 || got[0] != "Sleep" || got[1] != "Toddlers" {
		t.Fatalf("tags not deduped: %v", got)
	}
	if fs.WelcomeHTML != "<p>Hi friends.</p>" {
		t.Fatalf("welcome not carried: %q", fs.WelcomeHTML)
	}
	if fs.AuthorURL != "https://parentdata.org/author/eoster/" {
		t.Fatalf("default author url not applied: %q", fs.AuthorURL)
	}
	if len(fs.GraphSlots) != 1 || fs.GraphSlots[0].Index != 1 {
		t.Fatalf("unexpected graph slots: %+v", fs.GraphSlots)
	}
}

func TestExtractFallsBackToDetectedMeta(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{responses: []string{`{"article_body_html": "<p>Only a body.</p>"}`}}
	o := NewOrchestrator(oracle, "", nil)

	fs, err := o.Extract(context.Background(), articleDoc(0), domain.TemplateStandard)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if fs.Title != "Detected Title" || fs.AuthorName != "Emily Oster" {
		t.Fatalf("detected fallbacks not applied: %+v", fs)
	}
	if len(fs.TopicTags) != 1 || fs.TopicTags[0] != "Pregnancy" {
		t.Fatalf("detected tags not applied: %v", fs.TopicTags)
	}
}

func TestExtractStripsCodeFences(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{responses: []string{
		"Here is the extraction:\n```json\n{\"article_body_html\": \"<p>Fenced.</p>\"}\n```",
	}}
	o := NewOrchestrator(oracle, "", nil)

	fs, err := o.Extract(context.Background(), articleDoc(0), domain.TemplateStandard)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if fs.BodyHTML != "<p>Fenced.</p>" {
		t.Fatalf("unexpected body: %q", fs.BodyHTML)
	}
}

func TestExtractMalformedJSON(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{responses: []string{"not json at all"}}
	o := NewOrchestrator(oracle, "", nil)

	_, err := o.Extract(context.Background(), articleDoc(0), domain.TemplateStandard)
	var malformed *domain.ExtractionMalformedError
	if !errors.As(err, &malformed) || malformed.Field != "response" {
		t.Fatalf("expected malformed response error, got %v", err)
	}
}

func TestExtractGraphPlaceholderMismatch(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{responses: []string{`{"article_body_html": "<p>No markers here.</p>"}`}}
	o := NewOrchestrator(oracle, "", nil)

	_, err := o.Extract(context.Background(), articleDoc(2), domain.TemplateStandard)
	var malformed *domain.ExtractionMalformedError
	if !errors.As(err, &malformed) || malformed.Field != "article_body_html" {
		t.Fatalf("expected placeholder count error, got %v", err)
	}
}

func TestExtractGraphPlaceholderOutOfRange(t *testing.T) {
	t.Parallel()

	// Right count, but one marker renumbered past the document's image
	// count. Letting it through would orphan the image assigned to the
	// missing index during review.
	oracle := &fakeOracle{responses: []string{`{"article_body_html": "[[GRAPH_1]][[GRAPH_7]]"}`}}
	o := NewOrchestrator(oracle, "", nil)

	_, err := o.Extract(context.Background(), articleDoc(2), domain.TemplateStandard)
	var malformed *domain.ExtractionMalformedError
	if !errors.As(err, &malformed) || malformed.Field != "article_body_html" {
		t.Fatalf("expected out-of-range placeholder error, got %v", err)
	}
}

func TestExtractDuplicateGraphPlaceholder(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{responses: []string{`{"article_body_html": "[[GRAPH_1]][[GRAPH_1]]"}`}}
	o := NewOrchestrator(oracle, "", nil)

	_, err := o.Extract(context.Background(), articleDoc(2), domain.TemplateStandard)
	var malformed *domain.ExtractionMalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected duplicate placeholder error, got %v", err)
	}
}

func TestExtractUnbalancedBody(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{responses: []string{`{"article_body_html": "<p><strong>Open.</p>"}`}}
	o := NewOrchestrator(oracle, "", nil)

	_, err := o.Extract(context.Background(), articleDoc(0), domain.TemplateStandard)
	var malformed *domain.ExtractionMalformedError
	if !errors.As(err, &malformed) || malformed.Field != "article_body_html" {
		t.Fatalf("expected unbalanced markup error, got %v", err)
	}
}

func TestExtractWrapsOracleFailure(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{errs: []error{errors.New("connection reset")}}
	o := NewOrchestrator(oracle, "", nil)

	_, err := o.Extract(context.Background(), articleDoc(0), domain.TemplateStandard)
	var unavailable *domain.ExtractionUnavailableError
	if !errors.As(err, &unavailable) || !unavailable.Retryable {
		t.Fatalf("expected retryable unavailable error, got %v", err)
	}
}

func TestExtractRejectsQATemplate(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&fakeOracle{}, "", nil)
	if _, err := o.Extract(context.Background(), articleDoc(0), domain.TemplateQA); err == nil {
		t.Fatal("expected an error for the paired layout")
	}
}

func TestExtractPair(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{responses: []string{
		`{"question_text": "Is caffeine safe?", "question_author": "Anxious in Austin", "answer_html": "<p>Mostly yes.</p>"}`,
		`{"question_text": "What about herbal tea?", "answer_html": "<p>Depends on the herb.</p>"}`,
	}}
	o := NewOrchestrator(oracle, "", nil)

	first := articleDoc(0)
	first.Detected.AuthorName = "Dr. Jane Roe, MD"
	second := articleDoc(0)
	second.Detected.AuthorName = "Emily Oster"
	second.Detected.TopicTags = []string{"Caffeine", "Pregnancy"}

	fs, err := o.ExtractPair(context.Background(), first, second)
	if err != nil {
		t.Fatalf("ExtractPair error: %v", err)
	}
	if fs.Template != domain.TemplateQA {
		t.Fatalf("unexpected template: %s", fs.Template)
	}
	if len(fs.QAPairs) != 2 {
		t.Fatalf("expected two pairs, got %d", len(fs.QAPairs))
	}
	if fs.QAPairs[0].QuestionAuthor != "Anxious in Austin" {
		t.Fatalf("unexpected question author: %q", fs.QAPairs[0].QuestionAuthor)
	}
	if fs.AttributionLine != "Jane Roe and Emily Oster" {
		t.Fatalf("unexpected attribution: %q", fs.AttributionLine)
	}
	if got := fs.TopicTags; len(got) != 2 || got[0] != "Pregnancy" || got[1] != "Caffeine" {
		t.Fatalf("unexpected merged tags: %v", got)
	}
}

func TestExtractPairFailsOnSecondHalf(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{responses: []string{
		`{"question_text": "Q1?", "answer_html": "<p>A1.</p>"}`,
		`{"question_text": "", "answer_html": "<p>A2.</p>"}`,
	}}
	o := NewOrchestrator(oracle, "", nil)

	_, err := o.ExtractPair(context.Background(), articleDoc(0), articleDoc(0))
	var malformed *domain.ExtractionMalformedError
	if !errors.As(err, &malformed) || malformed.Field != "question_text" {
		t.Fatalf("expected question_text error, got %v", err)
	}
}

func TestStripNameCredentials(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"Dr. Jane Roe, MD", "Jane Roe"},
		{"Prof Alan Grant", "Alan Grant"},
		{"Emily Oster", "Emily Oster"},
		{"  Ms. Ada Lovelace , FRS ", "Ada Lovelace"},
	}
	for _, tc := range cases {
		if got := stripNameCredentials(tc.in); got != tc.want {
			t.Fatalf("stripNameCredentials(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
