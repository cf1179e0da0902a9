package domain

import "fmt"

// Template enumerates the four supported email layouts.
type Template string

const (
	TemplateStandard  Template = "standard"
	TemplateFertility Template = "fertility-article"
	TemplateQA        Template = "fertility-qa"
	TemplateMarketing Template = "marketing"
)

// Templates lists every supported layout in a fixed order.
var Templates = []Template{TemplateStandard, TemplateFertility, TemplateQA, TemplateMarketing}

// ParseTemplate validates a template tag string.
func ParseTemplate(value string) (Template, error) {
	for _, t := range Templates {
		if string(t) == value {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown template %q", value)
}

// GraphSlot is one inline graph position. Index is 1-based and matches the
// source document order; URL stays empty until assigned during review.
type GraphSlot struct {
	Index int
	URL   string
	Alt   string
}

// QAPair is a single question/answer record for the Q&A layout.
type QAPair struct {
	QuestionText   string
	QuestionAuthor string // sign-off name under the question
	AnswerHTML     string
}

// RelatedArticle is a fully filled related-reading card, ready for assembly.
type RelatedArticle struct {
	Title       string
	URL         string
	ImageURL    string
	ImageAlt    string
	Description string
}

// FieldSet is the per-template structured record extracted from a Document.
// Mutable during the review session; read exactly once by assembly.
type FieldSet struct {
	Template Template // fixed at creation

	Title         string
	SubtitleLines []string
	AuthorName    string
	AuthorTitle   string
	AuthorURL     string
	TopicTags     []string
	BodyHTML      string
	GraphSlots    []GraphSlot

	FeaturedImageURL string
	FeaturedImageAlt string
	ArticleURL       string

	// standard only
	WelcomeHTML string

	// fertility-article only
	BottomLineHTML string

	// fertility-qa only
	IntroText       string
	QAPairs         []QAPair
	AttributionLine string

	// marketing only
	BannerText      string
	IntroOptionText string
	PlanName        string
	ListPrice       string
	DiscountPrice   string
	DiscountURL     string
}

// Clone returns a deep copy so sessions never share mutable state.
func (fs *FieldSet) Clone() *FieldSet {
	if fs == nil {
		return nil
	}
	out := *fs
	out.SubtitleLines = append([]string(nil), fs.SubtitleLines...)
	out.TopicTags = append([]string(nil), fs.TopicTags...)
	out.GraphSlots = append([]GraphSlot(nil), fs.GraphSlots...)
	out.QAPairs = append([]QAPair(nil), fs.QAPairs...)
	return &out
}
