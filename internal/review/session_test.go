package review

import (
	"testing"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

func newFieldSet() *domain.FieldSet {
	return &domain.FieldSet{
		Template:   domain.TemplateStandard,
		Title:      "Original Title",
		AuthorName: "Emily Oster",
		BodyHTML:   "<p>Body.</p>[[GRAPH_1]][[GRAPH_2]]",
		GraphSlots: []domain.GraphSlot{{Index: 1}, {Index: 2}},
	}
}

func TestCreateClonesFields(t *testing.T) {
	t.Parallel()

	m := NewManager()
	fs := newFieldSet()
	session := m.Create(fs, nil)

	fs.Title = "Mutated After Create"
	if got := session.Get().Title; got != "Original Title" {
		t.Fatalf("session aliased caller state: %q", got)
	}
}

func TestResolveUnknownSession(t *testing.T) {
	t.Parallel()

	m := NewManager()
	if _, err := m.Resolve("nope"); err == nil {
		t.Fatal("expected an error for an unknown session id")
	}
}

func TestCloseRemovesSession(t *testing.T) {
	t.Parallel()

	m := NewManager()
	session := m.Create(newFieldSet(), nil)
	m.Close(session.ID)
	if _, err := m.Resolve(session.ID); err == nil {
		t.Fatal("closed session still resolvable")
	}
}

func TestApplyEditStringField(t *testing.T) {
	t.Parallel()

	session := NewManager().Create(newFieldSet(), nil)
	if err := session.ApplyEdit("title", "New Title"); err != nil {
		t.Fatalf("ApplyEdit error: %v", err)
	}
	if got := session.Get().Title; got != "New Title" {
		t.Fatalf("edit not applied: %q", got)
	}
}

func TestApplyEditTypeMismatch(t *testing.T) {
	t.Parallel()

	session := NewManager().Create(newFieldSet(), nil)
	if err := session.ApplyEdit("title", 42); err == nil {
		t.Fatal("expected a type error for non-string title")
	}
	if err := session.ApplyEdit("topic_tags", "not-a-slice"); err == nil {
		t.Fatal("expected a type error for non-slice tags")
	}
}

func TestApplyEditUnknownField(t *testing.T) {
	t.Parallel()

	session := NewManager().Create(newFieldSet(), nil)
	if err := session.ApplyEdit("template", "marketing"); err == nil {
		t.Fatal("the template tag must not be editable")
	}
}

func TestApplyEditDedupesTags(t *testing.T) {
	t.Parallel()

	session := NewManager().Create(newFieldSet(), nil)
	if err := session.ApplyEdit("topic_tags", []string{"Sleep", "Sleep", "Food"}); err != nil {
		t.Fatalf("ApplyEdit error: %v", err)
	}
	got := session.Get().TopicTags
	if len(got) != 2 || got[0] != "Sleep" || got[1] != "Food" {
		t.Fatalf("tags not deduped: %v", got)
	}
}

func TestApplyEditGraphs(t *testing.T) {
	t.Parallel()

	session := NewManager().Create(newFieldSet(), nil)

	err := session.ApplyEdit("graphs", []domain.GraphSlot{{Index: 1, URL: "https://cdn/one.png"}})
	if err == nil {
		t.Fatal("expected a slot count mismatch error")
	}

	slots := []domain.GraphSlot{
		{Index: 1, URL: "https://cdn/one.png", Alt: "One"},
		{Index: 2},
	}
	if err := session.ApplyEdit("graphs", slots); err != nil {
		t.Fatalf("ApplyEdit error: %v", err)
	}
	got := session.Get().GraphSlots
	if got[0].URL != "https://cdn/one.png" || got[0].Alt != "One" {
		t.Fatalf("slot assignment lost: %+v", got)
	}
	if got[1].Index != 2 || got[1].URL != "" {
		t.Fatalf("unassigned slot mutated: %+v", got[1])
	}
}

func TestCommitIdempotentWithoutEdits(t *testing.T) {
	t.Parallel()

	session := NewManager().Create(newFieldSet(), nil)
	first := session.Commit()
	second := session.Commit()
	if first != second {
		t.Fatal("repeated commit without edits produced a new snapshot")
	}

	if err := session.ApplyEdit("title", "Changed"); err != nil {
		t.Fatalf("ApplyEdit error: %v", err)
	}
	third := session.Commit()
	if third == first {
		t.Fatal("commit after an edit reused the stale snapshot")
	}
	if third.Title != "Changed" {
		t.Fatalf("commit missed the edit: %q", third.Title)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	m := NewManager()
	a := m.Create(newFieldSet(), nil)
	b := m.Create(newFieldSet(), nil)

	if err := a.ApplyEdit("title", "A Only"); err != nil {
		t.Fatalf("ApplyEdit error: %v", err)
	}
	if got := b.Get().Title; got != "Original Title" {
		t.Fatalf("edit leaked across sessions: %q", got)
	}
}

func TestRelatedCopiesSlice(t *testing.T) {
	t.Parallel()

	related := []domain.RelatedArticle{{Title: "First", URL: "https://parentdata.org/first/"}}
	session := NewManager().Create(newFieldSet(), related)

	got := session.Related()
	got[0].Title = "Mutated"
	if session.Related()[0].Title != "First" {
		t.Fatal("Related returned aliased storage")
	}
}
