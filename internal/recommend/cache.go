package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emilyparentdata/StagingTools/internal/domain"
	"github.com/emilyparentdata/StagingTools/internal/ports"
)

// snapshot is one immutable build of the article index. Lookups read the
// current snapshot through an atomic pointer, so a refresh never blocks or
// tears an in-flight recommendation.
type snapshot struct {
	articles []domain.IndexArticle
	byURL    map[string]int
	builtAt  time.Time
}

// staleAfter is the index age past which Info reports the snapshot stale.
// The index is only ever rebuilt on demand; staleness is a report, not a
// trigger.
const staleAfter = 24 * time.Hour

// IndexInfo describes the currently loaded index.
type IndexInfo struct {
	Articles int
	BuiltAt  time.Time
	Stale    bool
}

// IndexCache lazily loads the published-article index from the CMS and
// serves it until an explicit Refresh.
type IndexCache struct {
	cms    ports.CMS
	logger *slog.Logger

	current atomic.Pointer[snapshot]
	buildMu sync.Mutex
}

// NewIndexCache builds an empty cache; nothing is fetched until first use.
func NewIndexCache(cms ports.CMS, logger *slog.Logger) *IndexCache {
	return &IndexCache{cms: cms, logger: logger}
}

// load returns the current index, building it on first use.
func (c *IndexCache) load(ctx context.Context) (*snapshot, error) {
	if s := c.current.Load(); s != nil {
		return s, nil
	}
	return c.rebuild(ctx)
}

// Refresh discards the cached index and rebuilds it from the CMS. On
// failure the previous snapshot stays in place.
func (c *IndexCache) Refresh(ctx context.Context) error {
	_, err := c.rebuild(ctx)
	return err
}

// Info reports the size and build time of the loaded index, if any.
func (c *IndexCache) Info() (IndexInfo, bool) {
	s := c.current.Load()
	if s == nil {
		return IndexInfo{}, false
	}
	return IndexInfo{
		Articles: len(s.articles),
		BuiltAt:  s.builtAt,
		Stale:    time.Since(s.builtAt) > staleAfter,
	}, true
}

func (c *IndexCache) rebuild(ctx context.Context) (*snapshot, error) {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	articles, err := c.cms.ListArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	s := &snapshot{
		articles: articles,
		byURL:    make(map[string]int, len(articles)),
		builtAt:  time.Now(),
	}
	for i, a := range articles {
		s.byURL[a.URL] = i
	}
	c.current.Store(s)
	if c.logger != nil {
		c.logger.Debug("article index rebuilt", "articles", len(articles))
	}
	return s, nil
}
