// Package usecase exposes the staging workflow as one request surface:
// fetch a source, extract fields, review edits, recommend related reading,
// and generate the final email variants.
package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/emilyparentdata/StagingTools/internal/assemble"
	"github.com/emilyparentdata/StagingTools/internal/domain"
	"github.com/emilyparentdata/StagingTools/internal/extract"
	"github.com/emilyparentdata/StagingTools/internal/recommend"
	"github.com/emilyparentdata/StagingTools/internal/render"
	"github.com/emilyparentdata/StagingTools/internal/review"
	"github.com/emilyparentdata/StagingTools/internal/source"
)

// Service is the staging workflow facade consumed by the presentation layer.
type Service struct {
	source      *source.Adapter
	extractor   *extract.Orchestrator
	sessions    *review.Manager
	recommender *recommend.Recommender
	cache       *recommend.IndexCache
	engine      *assemble.Engine

	introOptionsCSV string
	logger          *slog.Logger
}

// New wires the workflow components.
func New(
	src *source.Adapter,
	extractor *extract.Orchestrator,
	sessions *review.Manager,
	recommender *recommend.Recommender,
	cache *recommend.IndexCache,
	engine *assemble.Engine,
	introOptionsCSV string,
	logger *slog.Logger,
) *Service {
	return &Service{
		source:          src,
		extractor:       extractor,
		sessions:        sessions,
		recommender:     recommender,
		cache:           cache,
		engine:          engine,
		introOptionsCSV: introOptionsCSV,
		logger:          logger,
	}
}

// FetchSource normalizes one source reference into a Document.
func (s *Service) FetchSource(ctx context.Context, kind domain.OriginKind, reference string, payload []byte) (*domain.Document, error) {
	return s.source.Fetch(ctx, kind, reference, payload)
}

// Extract runs the oracle over a Document and opens a review session around
// the resulting Field Set. Staging hints named in the document pre-fill the
// session's related-reading suggestions.
func (s *Service) Extract(ctx context.Context, doc *domain.Document, template domain.Template) (*review.Session, error) {
	fs, err := s.extractor.Extract(ctx, doc, template)
	if err != nil {
		return nil, err
	}
	session := s.sessions.Create(fs, s.relatedFromHints(ctx, doc.Hints.Related))
	s.debug("session opened", "session", session.ID, "template", string(template))
	return session, nil
}

// ExtractPair runs the question-and-answer extraction over two source
// articles and opens a session for the merged pair.
func (s *Service) ExtractPair(ctx context.Context, first, second *domain.Document) (*review.Session, error) {
	fs, err := s.extractor.ExtractPair(ctx, first, second)
	if err != nil {
		return nil, err
	}
	session := s.sessions.Create(fs, nil)
	s.debug("session opened", "session", session.ID, "template", string(domain.TemplateQA))
	return session, nil
}

// Session resolves an open session by ID.
func (s *Service) Session(id string) (*review.Session, error) {
	return s.sessions.Resolve(id)
}

// Edit applies one field edit to a session.
func (s *Service) Edit(sessionID, field string, value interface{}) error {
	session, err := s.sessions.Resolve(sessionID)
	if err != nil {
		return err
	}
	return session.ApplyEdit(field, value)
}

// Recommend ranks index articles against the session's current topic tags.
// The article being staged never recommends itself.
func (s *Service) Recommend(ctx context.Context, sessionID string, count int) ([]recommend.Candidate, error) {
	session, err := s.sessions.Resolve(sessionID)
	if err != nil {
		return nil, err
	}
	fs := session.Get()
	return s.recommender.Recommend(ctx, fs.TopicTags, fs.ArticleURL, count)
}

// RefreshIndex rebuilds the article index from the CMS.
func (s *Service) RefreshIndex(ctx context.Context) error {
	return s.cache.Refresh(ctx)
}

// IndexInfo reports the state of the article index cache.
func (s *Service) IndexInfo() (recommend.IndexInfo, bool) {
	return s.cache.Info()
}

// Generate commits the session's Field Set and produces both output
// variants. fillIns are the related-reading cards chosen during review;
// when nil, the session's pre-filled suggestions are used.
func (s *Service) Generate(sessionID string, fillIns []domain.RelatedArticle) (render.Output, error) {
	session, err := s.sessions.Resolve(sessionID)
	if err != nil {
		return render.Output{}, err
	}
	if fillIns == nil {
		fillIns = session.Related()
	}

	fields := session.Commit()
	html, err := s.engine.Assemble(fields, fillIns)
	if err != nil {
		return render.Output{}, err
	}
	s.debug("generated output", "session", sessionID, "bytes", len(html))
	return render.Render(html), nil
}

// Close releases a finished session.
func (s *Service) Close(sessionID string) {
	s.sessions.Close(sessionID)
}

// relatedFromHints turns staging-hint entries into card pre-fills. Titles
// come from the article index when the URL is known there, otherwise from
// the URL slug. Index failures only cost the lookup, not the session.
func (s *Service) relatedFromHints(ctx context.Context, hints []domain.RelatedHint) []domain.RelatedArticle {
	var related []domain.RelatedArticle
	for _, hint := range hints {
		title := ""
		if found, ok, err := s.recommender.FindByURL(ctx, hint.ArticleURL); err != nil {
			s.debug("index lookup failed", "url", hint.ArticleURL, "error", err)
		} else if ok {
			title = found.Title
		}
		if title == "" {
			title = titleFromSlug(hint.ArticleURL)
		}
		related = append(related, domain.RelatedArticle{
			Title:       title,
			URL:         hint.ArticleURL,
			ImageURL:    hint.ImageURL,
			ImageAlt:    title,
			Description: hint.Tagline,
		})
	}
	return related
}

// titleFromSlug derives a readable title from the URL's last path segment.
func titleFromSlug(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	slug := parts[len(parts)-1]
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// IntroOption is one selectable marketing intro variant.
type IntroOption struct {
	Name string
	Text string
}

// IntroOptions loads the marketing intro variants from the configured CSV.
// Expected columns: Name, Intro Text. Rows missing either are skipped.
func (s *Service) IntroOptions() ([]IntroOption, error) {
	if s.introOptionsCSV == "" {
		return nil, nil
	}
	f, err := os.Open(s.introOptionsCSV)
	if err != nil {
		return nil, fmt.Errorf("open intro options: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read intro options: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	nameIdx, textIdx := -1, -1
	for i, col := range records[0] {
		switch strings.TrimPrefix(strings.TrimSpace(col), "\uFEFF") {
		case "Name":
			nameIdx = i
		case "Intro Text":
			textIdx = i
		}
	}
	if nameIdx < 0 || textIdx < 0 {
		return nil, fmt.Errorf("intro options CSV is missing Name or Intro Text columns")
	}

	var options []IntroOption
	for _, row := range records[1:] {
		if len(row) <= nameIdx || len(row) <= textIdx {
			continue
		}
		name := strings.TrimSpace(row[nameIdx])
		text := strings.TrimSpace(row[textIdx])
		if name == "" || text == "" {
			continue
		}
		options = append(options, IntroOption{Name: name, Text: text})
	}
	return options, nil
}

func (s *Service) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
