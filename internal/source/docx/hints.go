package docx

import (
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

var (
	featuredExpr = regexp.MustCompile(`(?i)^featured\s+image\s*:?\s*$`)
	// Tolerates the "Reaading" typo that shows up in real staging docs.
	relatedExpr = regexp.MustCompile(`(?i)^related\s+rea+ding\s+\d+\s*:?\s*$`)
	graphExpr   = regexp.MustCompile(`(?i)^graph\s+\d+\s*:?\s*$`)
	keyValExpr  = regexp.MustCompile(`^(\w+)\s*:\s*(.*)$`)
	urlExpr     = regexp.MustCompile(`^https?://`)
)

// parseStagingHints reads the "Additional Information for Staging" section.
// Sub-sections (Featured Image, Related Reading N, Graph N) may appear in any
// order; a key line with an empty value consumes a following bare-URL line.
func parseStagingHints(paras []paragraph) domain.StagingHints {
	var hints domain.StagingHints

	var lines []string
	for _, p := range paras {
		if p.plain != "" && !stagingHeadingExpr.MatchString(p.plain) {
			lines = append(lines, p.plain)
		}
	}

	type section struct {
		kind string
		data map[string]string
	}

	var (
		sections []section
		current  *section
	)

	flush := func() {
		if current != nil {
			sections = append(sections, *current)
			current = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case featuredExpr.MatchString(line):
			flush()
			current = &section{kind: "featured", data: map[string]string{}}
		case relatedExpr.MatchString(line):
			flush()
			current = &section{kind: "related", data: map[string]string{}}
		case graphExpr.MatchString(line):
			flush()
			current = &section{kind: "graph", data: map[string]string{}}
		case current != nil:
			m := keyValExpr.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			key := strings.ToLower(m[1])
			val := strings.TrimSpace(m[2])
			if val == "" && i+1 < len(lines) && urlExpr.MatchString(lines[i+1]) {
				i++
				val = lines[i]
			}
			current.data[key] = val
		}
	}
	flush()

	for _, sec := range sections {
		switch sec.kind {
		case "featured":
			hints.FeaturedImageURL = sec.data["image"]
			hints.FeaturedImageAlt = sec.data["tag"]
		case "related":
			hints.Related = append(hints.Related, domain.RelatedHint{
				ArticleURL: sec.data["link"],
				ImageURL:   sec.data["image"],
				Tagline:    sec.data["text"],
			})
		case "graph":
			hints.Graphs = append(hints.Graphs, domain.GraphHint{
				URL:   sec.data["image"],
				Label: sec.data["tag"],
			})
		}
	}

	return hints
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
