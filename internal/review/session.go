// Package review holds per-session Field Set state between extraction and
// generation. Each session owns its Field Set exclusively; the registry map
// is the only shared structure, so edits need no locking of their own.
package review

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

// Session is one in-progress staging run.
type Session struct {
	ID      string
	fields  *domain.FieldSet
	related []domain.RelatedArticle // pre-fill suggestions from staging hints

	committed *domain.FieldSet
	dirty     bool
}

// Manager issues and resolves review sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager builds an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

// Create registers a new session around an extracted Field Set. The Field
// Set is cloned so the caller's copy can never alias session state.
func (m *Manager) Create(fs *domain.FieldSet, related []domain.RelatedArticle) *Session {
	session := &Session{
		ID:      uuid.NewString(),
		fields:  fs.Clone(),
		related: append([]domain.RelatedArticle(nil), related...),
		dirty:   true,
	}
	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()
	return session
}

// Resolve returns the session for an ID.
func (m *Manager) Resolve(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("unknown session %q", id)
}

// Close drops a finished session from the registry.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Get returns a read-only snapshot of the current fields.
func (s *Session) Get() *domain.FieldSet {
	return s.fields.Clone()
}

// Related returns the pre-filled related-reading suggestions.
func (s *Session) Related() []domain.RelatedArticle {
	return append([]domain.RelatedArticle(nil), s.related...)
}

// ApplyEdit updates one field. Only type shape is validated here; content
// correctness is the human reviewer's call. The template tag itself is not
// editable.
func (s *Session) ApplyEdit(field string, value interface{}) error {
	switch field {
	case "title":
		return setString(&s.fields.Title, field, value, &s.dirty)
	case "subtitle_lines":
		return setStrings(&s.fields.SubtitleLines, field, value, &s.dirty)
	case "author_name":
		return setString(&s.fields.AuthorName, field, value, &s.dirty)
	case "author_title":
		return setString(&s.fields.AuthorTitle, field, value, &s.dirty)
	case "author_url":
		return setString(&s.fields.AuthorURL, field, value, &s.dirty)
	case "topic_tags":
		if err := setStrings(&s.fields.TopicTags, field, value, &s.dirty); err != nil {
			return err
		}
		s.fields.TopicTags = dedupe(s.fields.TopicTags)
		return nil
	case "body_html":
		return setString(&s.fields.BodyHTML, field, value, &s.dirty)
	case "welcome_html":
		return setString(&s.fields.WelcomeHTML, field, value, &s.dirty)
	case "bottom_line_html":
		return setString(&s.fields.BottomLineHTML, field, value, &s.dirty)
	case "featured_image_url":
		return setString(&s.fields.FeaturedImageURL, field, value, &s.dirty)
	case "featured_image_alt":
		return setString(&s.fields.FeaturedImageAlt, field, value, &s.dirty)
	case "article_url":
		return setString(&s.fields.ArticleURL, field, value, &s.dirty)
	case "intro_text":
		return setString(&s.fields.IntroText, field, value, &s.dirty)
	case "attribution_line":
		return setString(&s.fields.AttributionLine, field, value, &s.dirty)
	case "banner_text":
		return setString(&s.fields.BannerText, field, value, &s.dirty)
	case "intro_option_text":
		return setString(&s.fields.IntroOptionText, field, value, &s.dirty)
	case "plan_name":
		return setString(&s.fields.PlanName, field, value, &s.dirty)
	case "list_price":
		return setString(&s.fields.ListPrice, field, value, &s.dirty)
	case "discount_price":
		return setString(&s.fields.DiscountPrice, field, value, &s.dirty)
	case "discount_url":
		return setString(&s.fields.DiscountURL, field, value, &s.dirty)
	case "graphs":
		slots, ok := value.([]domain.GraphSlot)
		if !ok {
			return fmt.Errorf("field %q expects []GraphSlot, got %T", field, value)
		}
		if len(slots) != len(s.fields.GraphSlots) {
			return fmt.Errorf("field %q expects %d slots, got %d", field, len(s.fields.GraphSlots), len(slots))
		}
		// Slot order is the document order; assignments fill URLs in place
		// and never reorder the slots themselves.
		for i := range slots {
			s.fields.GraphSlots[i].URL = slots[i].URL
			s.fields.GraphSlots[i].Alt = slots[i].Alt
		}
		s.dirty = true
		return nil
	case "qa_pairs":
		pairs, ok := value.([]domain.QAPair)
		if !ok {
			return fmt.Errorf("field %q expects []QAPair, got %T", field, value)
		}
		s.fields.QAPairs = append([]domain.QAPair(nil), pairs...)
		s.dirty = true
		return nil
	case "related":
		related, ok := value.([]domain.RelatedArticle)
		if !ok {
			return fmt.Errorf("field %q expects []RelatedArticle, got %T", field, value)
		}
		s.related = append([]domain.RelatedArticle(nil), related...)
		s.dirty = true
		return nil
	default:
		return fmt.Errorf("unknown field %q", field)
	}
}

// Commit freezes the current fields. Committing twice with no intervening
// edits returns the same snapshot, so downstream output is byte-identical.
func (s *Session) Commit() *domain.FieldSet {
	if !s.dirty && s.committed != nil {
		return s.committed
	}
	s.committed = s.fields.Clone()
	s.dirty = false
	return s.committed
}

func setString(target *string, field string, value interface{}, dirty *bool) error {
	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %q expects a string, got %T", field, value)
	}
	*target = v
	*dirty = true
	return nil
}

func setStrings(target *[]string, field string, value interface{}, dirty *bool) error {
	v, ok := value.([]string)
	if !ok {
		return fmt.Errorf("field %q expects []string, got %T", field, value)
	}
	*target = append([]string(nil), v...)
	*dirty = true
	return nil
}

func dedupe(values []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
