package ports

import (
	"context"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

// Oracle sends an extraction instruction to the external AI service and
// returns its raw text output. Calls are blocking and may take tens of
// seconds; timeouts are the caller's responsibility via ctx.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PublishedPost is the CMS representation of a single published article.
type PublishedPost struct {
	Title            string
	URL              string
	ExcerptText      string
	AuthorName       string
	AuthorURL        string
	FeaturedImageURL string
	FeaturedImageAlt string
	TopicTags        []string
	ContentHTML      string
}

// CMS reads published articles from the content-management system.
type CMS interface {
	// FetchPost resolves an article URL to its full post record.
	FetchPost(ctx context.Context, articleURL string) (PublishedPost, error)
	// ListArticles pages through every published article for the index cache.
	ListArticles(ctx context.Context) ([]domain.IndexArticle, error)
}

// DocExporter downloads a shared online document as word-processor bytes.
type DocExporter interface {
	Export(ctx context.Context, docID string) ([]byte, error)
}
