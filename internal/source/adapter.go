// Package source normalizes the three ingestion paths (uploaded file bytes,
// shared online document, published CMS article) into one Document shape.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/emilyparentdata/StagingTools/internal/domain"
	"github.com/emilyparentdata/StagingTools/internal/ports"
	"github.com/emilyparentdata/StagingTools/internal/source/docx"
)

var sharedDocIDExpr = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)

// Adapter produces Documents from origin descriptors.
type Adapter struct {
	exporter ports.DocExporter
	cms      ports.CMS
	logger   *slog.Logger
}

// NewAdapter wires the external fetch boundaries.
func NewAdapter(exporter ports.DocExporter, cms ports.CMS, logger *slog.Logger) *Adapter {
	return &Adapter{exporter: exporter, cms: cms, logger: logger}
}

// Fetch dispatches on the origin kind. Payload is only consulted for uploads.
func (a *Adapter) Fetch(ctx context.Context, kind domain.OriginKind, reference string, payload []byte) (*domain.Document, error) {
	switch kind {
	case domain.OriginUpload:
		return a.FromUpload(reference, payload)
	case domain.OriginSharedDoc:
		return a.FromSharedDoc(ctx, reference)
	case domain.OriginPublished:
		return a.FromPublished(ctx, reference)
	default:
		return nil, &domain.SourceError{
			Kind:      domain.SourceFormatUnsupported,
			Reference: reference,
			Err:       fmt.Errorf("unknown origin kind %q", kind),
		}
	}
}

// FromUpload parses uploaded word-processor bytes.
func (a *Adapter) FromUpload(filename string, data []byte) (*domain.Document, error) {
	origin := domain.Origin{Kind: domain.OriginUpload, Reference: filename}

	parsed, err := docx.Parse(data)
	if err != nil {
		return nil, &domain.SourceError{
			Kind:      domain.SourceFormatUnsupported,
			Reference: filename,
			Err:       err,
		}
	}
	if len(parsed.Blocks) == 0 {
		return nil, &domain.SourceError{Kind: domain.SourceEmpty, Reference: filename}
	}

	a.debug("parsed upload", "file", filename, "blocks", len(parsed.Blocks), "graphs", countImages(parsed.Blocks))
	return &domain.Document{
		Origin:   origin,
		Blocks:   parsed.Blocks,
		Detected: parsed.Detected,
		Hints:    parsed.Hints,
	}, nil
}

// FromSharedDoc exports a shared document to word-processor bytes and reuses
// the upload parser. The reference may be a full share link or a bare ID.
func (a *Adapter) FromSharedDoc(ctx context.Context, reference string) (*domain.Document, error) {
	docID := reference
	if m := sharedDocIDExpr.FindStringSubmatch(reference); m != nil {
		docID = m[1]
	}

	data, err := a.exporter.Export(ctx, docID)
	if err != nil {
		return nil, &domain.SourceError{
			Kind:      domain.SourceUnavailable,
			Reference: reference,
			Hint:      "check that the document is shared with the fetching identity",
			Err:       err,
		}
	}

	doc, err := a.FromUpload(reference, data)
	if err != nil {
		return nil, err
	}
	doc.Origin = domain.Origin{Kind: domain.OriginSharedDoc, Reference: reference}
	return doc, nil
}

// FromPublished fetches a published article via the CMS and converts its block
// HTML into ordered content blocks. Post metadata rides along as detected
// fallbacks, and the featured image becomes a staging hint.
func (a *Adapter) FromPublished(ctx context.Context, articleURL string) (*domain.Document, error) {
	post, err := a.cms.FetchPost(ctx, articleURL)
	if err != nil {
		return nil, &domain.SourceError{
			Kind:      domain.SourceUnavailable,
			Reference: articleURL,
			Err:       err,
		}
	}

	content := strings.TrimSpace(post.ContentHTML)
	if strings.HasPrefix(content, "<!DOCTYPE") || strings.HasPrefix(content, "<html") {
		// Legacy imports store a whole HTML page as post content; the block
		// parser cannot recover article structure from that.
		return nil, &domain.SourceError{
			Kind:      domain.SourceFormatUnsupported,
			Reference: articleURL,
			Hint:      "this article is stored in a legacy format; use the file-upload path instead",
		}
	}

	blocks, err := blocksFromHTML(content, post.FeaturedImageURL)
	if err != nil {
		return nil, &domain.SourceError{
			Kind:      domain.SourceFormatUnsupported,
			Reference: articleURL,
			Err:       err,
		}
	}
	if len(blocks) == 0 {
		return nil, &domain.SourceError{Kind: domain.SourceEmpty, Reference: articleURL}
	}

	a.debug("parsed published article", "url", articleURL, "blocks", len(blocks))
	return &domain.Document{
		Origin: domain.Origin{Kind: domain.OriginPublished, Reference: articleURL},
		Blocks: blocks,
		Detected: domain.DetectedMeta{
			Title:      post.Title,
			Subtitle:   post.ExcerptText,
			AuthorName: post.AuthorName,
			AuthorURL:  post.AuthorURL,
			TopicTags:  append([]string(nil), post.TopicTags...),
		},
		Hints: domain.StagingHints{
			FeaturedImageURL: post.FeaturedImageURL,
			FeaturedImageAlt: post.FeaturedImageAlt,
		},
	}, nil
}

func countImages(blocks []domain.Block) int {
	n := 0
	for _, b := range blocks {
		if b.Kind == domain.BlockImage {
			n++
		}
	}
	return n
}

func (a *Adapter) debug(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
