package extract

import (
	"fmt"
	"strings"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

// styleGuide is the inline style reference the oracle must apply to every
// element of the email body HTML it produces.
const styleGuide = `EMAIL HTML INLINE STYLE REFERENCE
===================================
H1 heading:
  style="margin: 0 0 24px 0; font-family: 'Lora', Georgia, serif; font-weight: bold; font-size: 30px; line-height: 36px; letter-spacing: -1.2px; color: #000000;"

H2 heading:
  style="margin: 0 0 24px 0; font-family: 'Lora', Georgia, serif; font-weight: bold; font-size: 24px; line-height: 28px; letter-spacing: -1.2px; color: #000000;"

Regular paragraph (article body):
  style="margin: 0 0 24px 0; font-family: 'DM Sans', Arial, Helvetica, sans-serif; font-weight: 400; font-size: 16px; line-height: 24px; letter-spacing: -0.8px; color: #000000;"

Bold inline text within paragraph: use <strong> tag inside the <p>

Hyperlink inside article body:
  style="color: #054f8b; text-decoration: underline;"

List item <li>:
  style="font-family: 'DM Sans', Arial, Helvetica, sans-serif; font-weight: 400; font-size: 16px; line-height: 24px; letter-spacing: -0.8px; color: #000000;"

Welcome/intro section paragraphs (italicized intro text and newsletter announcements):
  style="padding-bottom: 24px; margin: 0; font-family: 'DM Sans', Arial, Helvetica, sans-serif; font-weight: 400; font-size: 16px; line-height: 24px; letter-spacing: -0.8px; color: #000000;"
  - Wrap italic text in <em>
  - Links within italic text: <a href="URL"><em>link text</em></a>

Bottom line list (fertility template only):
  <ul style="margin: 0; font-family: 'DM Sans', Arial, Helvetica, sans-serif; font-weight: normal; font-size: 16px; line-height: 26px; color: #000000; padding-left: 16px;">`

const graphRules = `GRAPH PLACEHOLDERS:
If the document HTML contains [[GRAPH_1]], [[GRAPH_2]], etc., these are embedded
chart or graph images from the source document. Keep each placeholder exactly
as-is in the article_body_html at its original position in the text; do not
move, rename, or remove them. They will be replaced with hosted image URLs
before the email is sent.`

const outputRules = `IMPORTANT:
- Return ONLY the raw JSON object. No markdown code fences, no explanation, no extra text.
- All HTML in the JSON values must be valid and properly escaped as a JSON string.
- Preserve special characters like em dashes, curly quotes, and non-breaking spaces correctly.`

// instruction builds the oracle prompt for one document and layout.
func instruction(doc *domain.Document, template domain.Template) string {
	var b strings.Builder
	b.WriteString("You are preparing a newsletter article for email staging.\n\n")
	b.WriteString("Below is the raw text and an HTML rendering of the source document.\n\n")
	b.WriteString("## RAW DOCUMENT TEXT:\n")
	b.WriteString(renderText(doc))
	b.WriteString("\n\n## DOCUMENT HTML:\n")
	b.WriteString(renderHTML(doc))
	b.WriteString("\n\n## STYLE GUIDE FOR EMAIL HTML:\n")
	b.WriteString(styleGuide)
	b.WriteString("\n\n## YOUR TASK:\nExtract all fields and produce properly formatted email HTML. Return a single JSON object with EXACTLY these keys:\n\n")
	b.WriteString(schemaFor(template))
	b.WriteString("\n\n")
	b.WriteString(graphRules)
	b.WriteString("\n\n")
	b.WriteString(outputRules)
	return b.String()
}

// qaInstruction builds the oracle prompt for one half of a Q&A pairing.
func qaInstruction(doc *domain.Document) string {
	var b strings.Builder
	b.WriteString("You are preparing one question/answer segment of a fertility Q&A email.\n\n")
	b.WriteString("Below is the full text of a published advice article.\n\n")
	b.WriteString("## ARTICLE TEXT:\n")
	b.WriteString(renderText(doc))
	b.WriteString("\n\n## ARTICLE HTML:\n")
	b.WriteString(renderHTML(doc))
	b.WriteString("\n\n## STYLE GUIDE FOR EMAIL HTML:\n")
	b.WriteString(styleGuide)
	b.WriteString(`

## YOUR TASK:
Return a single JSON object with EXACTLY these keys:

- "question_text": The reader's question, verbatim, as plain text (no HTML). Preserve line breaks.

- "question_author": The sign-off name under the question (e.g. "Anonymous", "Sarah"). Plain string; empty string if none.

- "answer_html": The complete answer as HTML with inline styles from the Style Guide. Use <p> with the regular paragraph style; bold inline text uses <strong>; preserve all hyperlinks with their original href values.

`)
	b.WriteString(outputRules)
	return b.String()
}

func schemaFor(template domain.Template) string {
	common := `- "title": The article title as a plain string.

- "subtitle_lines": Array of 1-2 short subtitle strings. Each line is a separate array element (no HTML).

- "author_name": The author's full name as a plain string.

- "author_title": The author's professional title/credentials as a plain string.

- "topic_tags": Array of topic tag strings (e.g. ["Hormones", "Health and Wellness"]).`

	body := `- "article_body_html": The complete article body as HTML with inline styles from the Style Guide. Use the heading styles for section headings, <p> with the regular paragraph style for body text, <strong> for bold inline text, <ul><li style="...">...</li></ul> for bullet lists, and the link style for hyperlinks. Preserve ALL hyperlinks with their original href values. Do NOT bold the first paragraph unless it was explicitly bold in the source.`

	switch template {
	case domain.TemplateStandard:
		return common + "\n\n" + `- "welcome_html": The editor's complete introductory section as HTML: any italic newsletter intro paragraphs, any plain-text author bio paragraph introducing a guest author, the editor's sign-off paragraph, and a <hr> tag at the very end. Apply the welcome paragraph styles from the Style Guide to every <p>. If there is no intro section, return an empty string "".` + "\n\n" + body + ` Do NOT include the editor's welcome section here; only the article content itself.`
	case domain.TemplateFertility:
		return common + "\n\n" + strings.Replace(body, "Use the heading styles", "Use <h2> (NOT <h1>) with the H2 style", 1) + ` Do NOT include the "The bottom line" section; that is extracted separately.` + "\n\n" + `- "bottom_line_html": The "The bottom line" section extracted as a single <ul> element using the bottom line list style from the Style Guide. Each bullet point becomes a <li>. If no such section exists, return "".`
	case domain.TemplateMarketing:
		return common + "\n\n" + body
	default:
		return common + "\n\n" + body
	}
}

// renderText flattens the document to plain text, one block per line.
func renderText(doc *domain.Document) string {
	var lines []string
	for _, block := range doc.Blocks {
		switch block.Kind {
		case domain.BlockHeading, domain.BlockParagraph:
			lines = append(lines, stripTags(block.Text))
		case domain.BlockList:
			for _, item := range block.Items {
				lines = append(lines, "- "+stripTags(item))
			}
		case domain.BlockImage:
			lines = append(lines, fmt.Sprintf("[[GRAPH_%d]]", block.GraphIndex))
		}
	}
	return strings.Join(lines, "\n")
}

// renderHTML produces a simplified HTML rendering with graph markers in
// place of images, so the oracle can reason about image positions without
// receiving binary payloads.
func renderHTML(doc *domain.Document) string {
	var b strings.Builder
	for _, block := range doc.Blocks {
		switch block.Kind {
		case domain.BlockHeading:
			tag := "h1"
			if block.Level >= 2 {
				tag = "h2"
			}
			fmt.Fprintf(&b, "<%s>%s</%s>\n", tag, block.Text, tag)
		case domain.BlockParagraph:
			fmt.Fprintf(&b, "<p>%s</p>\n", block.Text)
		case domain.BlockList:
			b.WriteString("<ul>")
			for _, item := range block.Items {
				fmt.Fprintf(&b, "<li>%s</li>", item)
			}
			b.WriteString("</ul>\n")
		case domain.BlockImage:
			fmt.Fprintf(&b, "[[GRAPH_%d]]\n", block.GraphIndex)
		}
	}
	return b.String()
}

func stripTags(inner string) string {
	var b strings.Builder
	depth := 0
	for _, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return strings.TrimSpace(b.String())
}
