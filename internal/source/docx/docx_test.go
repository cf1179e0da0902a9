package docx

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

func buildDocx(t *testing.T, documentXML string, rels string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}

	if rels != "" {
		f, err := w.Create("word/_rels/document.xml.rels")
		if err != nil {
			t.Fatalf("create rels: %v", err)
		}
		if _, err := f.Write([]byte(rels)); err != nil {
			t.Fatalf("write rels: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func para(inner string) string {
	return "<w:p>" + inner + "</w:p>"
}

func run(text string) string {
	return "<w:r><w:t>" + text + "</w:t></w:r>"
}

const docHeader = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
const docFooter = `</w:body></w:document>`

func TestParseBlocksAndMeta(t *testing.T) {
	t.Parallel()

	xml := docHeader +
		para(run("Title: Sleep Training Revisited")) +
		para(run("Author: Emily Oster")) +
		para(run("Tags: Sleep, Infants")) +
		para(`<w:pPr><w:pStyle w:val="Heading1"/></w:pPr>`+run("The Big Question")) +
		para(`<w:r><w:rPr><w:b/></w:rPr><w:t>Bold start</w:t></w:r><w:r><w:t> then plain.</w:t></w:r>`) +
		para(`<w:pPr><w:numPr/></w:pPr>`+run("first item")) +
		para(`<w:pPr><w:numPr/></w:pPr>`+run("second item")) +
		para(run("Closing thoughts.")) +
		docFooter

	result, err := Parse(buildDocx(t, xml, ""))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if result.Detected.Title != "Sleep Training Revisited" {
		t.Fatalf("unexpected detected title: %q", result.Detected.Title)
	}
	if result.Detected.AuthorName != "Emily Oster" {
		t.Fatalf("unexpected detected author: %q", result.Detected.AuthorName)
	}
	if len(result.Detected.TopicTags) != 2 || result.Detected.TopicTags[0] != "Sleep" {
		t.Fatalf("unexpected tags: %v", result.Detected.TopicTags)
	}

	kinds := make([]domain.BlockKind, 0, len(result.Blocks))
	for _, b := range result.Blocks {
		kinds = append(kinds, b.Kind)
	}
	want := []domain.BlockKind{
		domain.BlockParagraph, domain.BlockParagraph, domain.BlockParagraph,
		domain.BlockHeading, domain.BlockParagraph, domain.BlockList, domain.BlockParagraph,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("block %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}

	heading := result.Blocks[3]
	if heading.Level != 1 || heading.Text != "The Big Question" {
		t.Fatalf("unexpected heading: %+v", heading)
	}
	if got := result.Blocks[4].Text; got != "<strong>Bold start</strong> then plain." {
		t.Fatalf("unexpected formatted paragraph: %q", got)
	}
	list := result.Blocks[5]
	if len(list.Items) != 2 || list.Items[1] != "second item" {
		t.Fatalf("unexpected list items: %v", list.Items)
	}
}

func TestParseGraphOrdering(t *testing.T) {
	t.Parallel()

	xml := docHeader +
		para(run("Before the first graph.")+"<w:drawing/>"+run("Between graphs.")) +
		para("<w:drawing/>") +
		para(run("After everything.")) +
		docFooter

	result, err := Parse(buildDocx(t, xml, ""))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	var indices []int
	for _, b := range result.Blocks {
		if b.Kind == domain.BlockImage {
			indices = append(indices, b.GraphIndex)
		}
	}
	if len(indices) != 2 || indices[0] != 1 || indices[1] != 2 {
		t.Fatalf("unexpected graph indices: %v", indices)
	}

	// The split keeps text on both sides of an in-paragraph drawing.
	if result.Blocks[0].Text != "Before the first graph." {
		t.Fatalf("unexpected first segment: %q", result.Blocks[0].Text)
	}
	if result.Blocks[2].Text != "Between graphs." {
		t.Fatalf("unexpected second segment: %q", result.Blocks[2].Text)
	}
}

func TestParseHyperlinks(t *testing.T) {
	t.Parallel()

	rels := `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId7" Target="https://parentdata.org/article/"/>
</Relationships>`

	xml := docHeader +
		para(run("Read ")+`<w:hyperlink r:id="rId7">`+run("this piece")+"</w:hyperlink>"+run(" today.")) +
		docFooter

	result, err := Parse(buildDocx(t, xml, rels))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := `Read <a href="https://parentdata.org/article/">this piece</a> today.`
	if result.Blocks[0].Text != want {
		t.Fatalf("unexpected hyperlink html: %q", result.Blocks[0].Text)
	}
}

func TestParseStagingSection(t *testing.T) {
	t.Parallel()

	xml := docHeader +
		para(run("The article body.")) +
		para(`<w:pPr><w:pStyle w:val="Heading1"/></w:pPr>`+run("Additional Information for Staging")) +
		para(run("Featured Image:")) +
		para(run("Image:")) +
		para(run("https://cdn.example.com/hero.png")) +
		para(run("Tag: A parent and child")) +
		para(run("Related Reaading 1:")) +
		para(run("Link: https://parentdata.org/other-article/")) +
		para(run("Text: Why naps matter")) +
		para(run("Graph 1:")) +
		para(run("Image: https://cdn.example.com/graph1.png")) +
		para(run("Tag: Graph of wake windows")) +
		docFooter

	result, err := Parse(buildDocx(t, xml, ""))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	// Staging section must not leak into content blocks.
	if len(result.Blocks) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(result.Blocks))
	}

	hints := result.Hints
	if hints.FeaturedImageURL != "https://cdn.example.com/hero.png" {
		t.Fatalf("unexpected featured image: %q", hints.FeaturedImageURL)
	}
	if hints.FeaturedImageAlt != "A parent and child" {
		t.Fatalf("unexpected featured alt: %q", hints.FeaturedImageAlt)
	}
	if len(hints.Related) != 1 || hints.Related[0].ArticleURL != "https://parentdata.org/other-article/" {
		t.Fatalf("unexpected related hints: %+v", hints.Related)
	}
	if hints.Related[0].Tagline != "Why naps matter" {
		t.Fatalf("unexpected related tagline: %q", hints.Related[0].Tagline)
	}
	if len(hints.Graphs) != 1 || hints.Graphs[0].URL != "https://cdn.example.com/graph1.png" {
		t.Fatalf("unexpected graph hints: %+v", hints.Graphs)
	}
}

func TestParseRejectsNonArchive(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("not a zip at all")); err == nil {
		t.Fatal("expected an error for non-archive input")
	}
}
