package domain

// OriginKind identifies which ingestion path produced a Document.
type OriginKind string

const (
	OriginUpload    OriginKind = "upload"
	OriginSharedDoc OriginKind = "shared-doc"
	OriginPublished OriginKind = "published"
)

// Origin records where a Document came from.
type Origin struct {
	Kind      OriginKind
	Reference string // filename, shared-doc link, or article URL
}

// BlockKind enumerates the content block types a source can produce.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockList      BlockKind = "list"
	BlockImage     BlockKind = "image"
)

// Block is one ordered unit of source content. Image blocks carry no pixel
// data, only a stable 1-based graph index assigned in document order.
type Block struct {
	Kind       BlockKind
	Level      int      // heading level (1 or 2)
	Text       string   // heading text, or paragraph inner HTML
	Items      []string // list item inner HTML
	GraphIndex int      // image blocks only
}

// DetectedMeta holds labeled metadata lines found in the source document
// (e.g. "Title: ...", "Tags: ..."). Used as fallback values when the
// extraction output leaves a field empty.
type DetectedMeta struct {
	Title       string
	Subtitle    string
	AuthorName  string
	AuthorTitle string
	AuthorURL   string
	TopicTags   []string
}

// RelatedHint is a related-reading entry from the staging instructions.
type RelatedHint struct {
	ArticleURL string
	ImageURL   string
	Tagline    string
}

// GraphHint pre-fills an inline graph slot from the staging instructions.
type GraphHint struct {
	URL   string
	Label string
}

// StagingHints carries the optional "Additional Information for Staging"
// section of an uploaded document, parsed out of the article body.
type StagingHints struct {
	FeaturedImageURL string
	FeaturedImageAlt string
	Related          []RelatedHint
	Graphs           []GraphHint
}

// Document is the normalized, origin-agnostic representation of a source
// article. Immutable once produced by the source adapter.
type Document struct {
	Origin   Origin
	Blocks   []Block
	Detected DetectedMeta
	Hints    StagingHints
}

// GraphCount returns the number of inline image placeholders.
func (d *Document) GraphCount() int {
	count := 0
	for _, b := range d.Blocks {
		if b.Kind == BlockImage {
			count++
		}
	}
	return count
}
