// Package docx parses word-processor (OOXML) files into ordered content
// blocks without embedding binary image data: every embedded drawing becomes
// a placeholder block carrying only its document-order index.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

// Result carries everything a DOCX yields: content blocks (staging section
// excluded), labeled-metadata fallbacks, and parsed staging hints.
type Result struct {
	Blocks   []domain.Block
	Detected domain.DetectedMeta
	Hints    domain.StagingHints
}

var stagingHeadingExpr = regexp.MustCompile(`(?i)additional\s+information\s+for\s+staging|staging\s+instructions?`)

var labelExprs = []struct {
	field string
	expr  *regexp.Regexp
}{
	{"title", regexp.MustCompile(`(?i)^title\s*:\s*(.+)$`)},
	{"subtitle", regexp.MustCompile(`(?i)^subtitle\s*:\s*(.+)$`)},
	{"author_title", regexp.MustCompile(`(?i)^author\s+title\s*:\s*(.+)$`)},
	{"author_name", regexp.MustCompile(`(?i)^author(?:\s+name)?\s*:\s*(.+)$`)},
	{"topic_tags", regexp.MustCompile(`(?i)^(?:topic\s+)?tags?\s*:\s*(.+)$`)},
}

// Parse reads DOCX bytes and returns ordered blocks plus detected metadata.
func Parse(data []byte) (Result, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("open docx archive: %w", err)
	}

	links, err := readRelationships(archive)
	if err != nil {
		return Result{}, err
	}

	body, err := readEntry(archive, "word/document.xml")
	if err != nil {
		return Result{}, err
	}

	paras, err := parseBody(body, links)
	if err != nil {
		return Result{}, err
	}

	// Split off the staging instructions section before building blocks.
	articleParas := paras
	var stagingParas []paragraph
	for i, p := range paras {
		if p.heading > 0 && stagingHeadingExpr.MatchString(p.plain) {
			articleParas = paras[:i]
			stagingParas = paras[i:]
			break
		}
	}

	result := Result{
		Blocks:   buildBlocks(articleParas),
		Detected: detectMeta(articleParas),
		Hints:    parseStagingHints(stagingParas),
	}
	return result, nil
}

// paragraph is one parsed <w:p> with its structural classification.
type paragraph struct {
	heading int    // 0 for body text
	listed  bool   // part of a numbered/bulleted list
	inner   string // inner HTML (escaped text, strong/em/a preserved)
	plain   string
	images  int // drawings encountered inside this paragraph
}

func readEntry(archive *zip.Reader, name string) ([]byte, error) {
	for _, f := range archive.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("docx is missing %s", name)
}

func readRelationships(archive *zip.Reader) (map[string]string, error) {
	links := map[string]string{}
	data, err := readEntry(archive, "word/_rels/document.xml.rels")
	if err != nil {
		// Relationships are optional; a document without hyperlinks has none.
		return links, nil
	}

	var rels struct {
		Relationships []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("parse relationships: %w", err)
	}
	for _, r := range rels.Relationships {
		links[r.ID] = r.Target
	}
	return links, nil
}

func parseBody(data []byte, links map[string]string) ([]paragraph, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var (
		paras   []paragraph
		current *paragraph
		inProps bool
		bold    bool
		italic  bool
		href    string
	)

	flushRunStyle := func(text string) string {
		out := html.EscapeString(text)
		if bold {
			out = "<strong>" + out + "</strong>"
		}
		if italic {
			out = "<em>" + out + "</em>"
		}
		return out
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document body: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current = &paragraph{}
				inProps = false
			case "pPr":
				inProps = true
			case "pStyle":
				if current != nil && inProps {
					current.heading = headingLevel(attr(t, "val"))
				}
			case "numPr":
				if current != nil && inProps {
					current.listed = true
				}
			case "r":
				bold, italic = false, false
			case "b":
				bold = attr(t, "val") != "false" && attr(t, "val") != "0"
			case "i":
				italic = attr(t, "val") != "false" && attr(t, "val") != "0"
			case "hyperlink":
				href = links[attr(t, "id")]
			case "drawing", "pict":
				if current != nil {
					current.images++
					current.inner += graphMarker(current.images)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if current != nil {
					current.plain = strings.TrimSpace(plainText(graphMarkerExpr.ReplaceAllString(current.inner, "")))
					paras = append(paras, *current)
					current = nil
				}
			case "pPr":
				inProps = false
			case "hyperlink":
				href = ""
			}
		case xml.CharData:
			if current == nil || inProps {
				continue
			}
			text := string(t)
			if text == "" {
				continue
			}
			chunk := flushRunStyle(text)
			if href != "" {
				chunk = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), chunk)
			}
			current.inner += chunk
		}
	}

	return paras, nil
}

// graphMarker reserves a within-paragraph slot; buildBlocks renumbers
// markers document-wide so indices stay stable across paragraphs.
func graphMarker(n int) string {
	return fmt.Sprintf("\x00GRAPH:%d\x00", n)
}

var graphMarkerExpr = regexp.MustCompile("\x00GRAPH:\\d+\x00")

func buildBlocks(paras []paragraph) []domain.Block {
	var (
		blocks     []domain.Block
		list       []string
		graphIndex int
	)

	flushList := func() {
		if len(list) > 0 {
			blocks = append(blocks, domain.Block{Kind: domain.BlockList, Items: list})
			list = nil
		}
	}

	for _, p := range paras {
		if p.plain == "" && p.images == 0 {
			continue
		}

		if p.listed {
			list = append(list, graphMarkerExpr.ReplaceAllString(p.inner, ""))
			continue
		}
		flushList()

		if p.heading > 0 {
			blocks = append(blocks, domain.Block{
				Kind:  domain.BlockHeading,
				Level: p.heading,
				Text:  graphMarkerExpr.ReplaceAllString(p.inner, ""),
			})
			continue
		}

		// Split the paragraph at each embedded drawing so images keep their
		// position between text segments, in document order.
		segments := graphMarkerExpr.Split(p.inner, -1)
		for i, seg := range segments {
			if strings.TrimSpace(plainText(seg)) != "" {
				blocks = append(blocks, domain.Block{Kind: domain.BlockParagraph, Text: seg})
			}
			if i < len(segments)-1 {
				graphIndex++
				blocks = append(blocks, domain.Block{Kind: domain.BlockImage, GraphIndex: graphIndex})
			}
		}
	}
	flushList()

	return blocks
}

func detectMeta(paras []paragraph) domain.DetectedMeta {
	var meta domain.DetectedMeta
	for _, p := range paras {
		text := p.plain
		if text == "" {
			continue
		}
		for _, le := range labelExprs {
			m := le.expr.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			value := strings.TrimSpace(m[1])
			switch le.field {
			case "title":
				if meta.Title == "" {
					meta.Title = value
				}
			case "subtitle":
				if meta.Subtitle == "" {
					meta.Subtitle = value
				}
			case "author_name":
				if meta.AuthorName == "" {
					meta.AuthorName = value
				}
			case "author_title":
				if meta.AuthorTitle == "" {
					meta.AuthorTitle = value
				}
			case "topic_tags":
				if len(meta.TopicTags) == 0 {
					for _, tag := range strings.Split(value, ",") {
						if tag = strings.TrimSpace(tag); tag != "" {
							meta.TopicTags = append(meta.TopicTags, tag)
						}
					}
				}
			}
			break
		}
	}
	return meta
}

func headingLevel(style string) int {
	lower := strings.ToLower(style)
	if !strings.HasPrefix(lower, "heading") {
		return 0
	}
	level := 1
	if n := strings.TrimPrefix(lower, "heading"); n != "" {
		switch n[len(n)-1] {
		case '2':
			level = 2
		case '3':
			level = 3
		}
	}
	return level
}

var tagExpr = regexp.MustCompile(`<[^>]+>`)

func plainText(inner string) string {
	return html.UnescapeString(tagExpr.ReplaceAllString(inner, ""))
}
