// Package recommend ranks published articles against a staged article's
// topic tags to suggest further-reading links.
package recommend

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

// Candidate is one recommendation. Image fields stay empty; delivery-hosted
// image assets are assigned by the reviewer, not by the recommender.
type Candidate struct {
	Title   string
	URL     string
	Tagline string
	Score   int
}

// stopWords are too short or too common to contribute to relevance.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "was": {}, "has": {}, "had": {},
	"its": {}, "one": {}, "with": {}, "this": {}, "that": {}, "from": {},
	"they": {}, "have": {}, "will": {}, "your": {}, "what": {}, "how": {},
	"does": {}, "did": {}, "been": {}, "more": {}, "also": {}, "when": {},
	"than": {}, "into": {}, "each": {}, "our": {}, "may": {},
}

var wordSplitExpr = regexp.MustCompile(`\W+`)

// Recommender scores index articles by tag overlap.
type Recommender struct {
	cache *IndexCache
}

// New wraps an index cache in a recommender.
func New(cache *IndexCache) *Recommender {
	return &Recommender{cache: cache}
}

// Recommend returns up to count candidates ranked by descending overlap
// score. Ties keep the index insertion order, so repeated calls against the
// same snapshot return the same list. The article identified by excludeURL
// never appears in its own recommendations.
func (r *Recommender) Recommend(ctx context.Context, topicTags []string, excludeURL string, count int) ([]Candidate, error) {
	snap, err := r.cache.load(ctx)
	if err != nil {
		return nil, err
	}

	terms := searchTerms(topicTags)
	exclude := strings.TrimRight(excludeURL, "/")

	var scored []Candidate
	for _, a := range snap.articles {
		if exclude != "" && strings.TrimRight(a.URL, "/") == exclude {
			continue
		}
		combined := strings.ToLower(a.Title + " " + a.Tagline + " " + strings.Join(a.TopicTags, " "))
		score := 0
		for term := range terms {
			if strings.Contains(combined, term) {
				score++
			}
		}
		scored = append(scored, Candidate{
			Title:   a.Title,
			URL:     a.URL,
			Tagline: a.Tagline,
			Score:   score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if count >= 0 && len(scored) > count {
		scored = scored[:count]
	}
	return scored, nil
}

// FindByURL looks up an index article by exact URL, ignoring a trailing
// slash. Used to pre-fill related-reading entries named in staging hints.
func (r *Recommender) FindByURL(ctx context.Context, url string) (domain.IndexArticle, bool, error) {
	snap, err := r.cache.load(ctx)
	if err != nil {
		return domain.IndexArticle{}, false, err
	}
	want := strings.TrimRight(url, "/")
	if i, ok := snap.byURL[url]; ok {
		return snap.articles[i], true, nil
	}
	for _, a := range snap.articles {
		if strings.TrimRight(a.URL, "/") == want {
			return a, true, nil
		}
	}
	return domain.IndexArticle{}, false, nil
}

// searchTerms flattens tags into lowercase words worth matching on.
func searchTerms(tags []string) map[string]struct{} {
	terms := map[string]struct{}{}
	for _, tag := range tags {
		for _, word := range wordSplitExpr.Split(strings.ToLower(tag), -1) {
			if len(word) <= 3 {
				continue
			}
			if _, ok := stopWords[word]; ok {
				continue
			}
			terms[word] = struct{}{}
		}
	}
	return terms
}
