package source

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

var sizeSuffixExpr = regexp.MustCompile(`(?i)-\d+x\d+(\.[a-z0-9]+)$`)
var extExpr = regexp.MustCompile(`(?i)\.[a-z0-9]+$`)

// blocksFromHTML converts CMS block HTML into ordered content blocks.
// The duplicated featured-image figure (the CMS embeds the featured image
// both as post metadata and as the first content block) is dropped so it
// cannot appear twice in the finished email.
func blocksFromHTML(content, featuredImageURL string) ([]domain.Block, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse content html: %w", err)
	}

	stem := imageStem(featuredImageURL)

	var blocks []domain.Block
	graphIndex := 0

	doc.Find("body").Children().Each(func(i int, sel *goquery.Selection) {
		node := goquery.NodeName(sel)
		switch node {
		case "h1", "h2", "h3", "h4":
			level := 1
			if node != "h1" {
				level = 2
			}
			blocks = append(blocks, domain.Block{
				Kind:  domain.BlockHeading,
				Level: level,
				Text:  strings.TrimSpace(sel.Text()),
			})
		case "p":
			inner, _ := sel.Html()
			if sel.Find("img").Length() > 0 {
				// An image inside a text paragraph still needs its own
				// graph slot; the surrounding text splits around it.
				blocks = append(blocks, splitInlineImages(inner, stem, &graphIndex)...)
				return
			}
			if strings.TrimSpace(sel.Text()) == "" {
				return
			}
			blocks = append(blocks, domain.Block{Kind: domain.BlockParagraph, Text: strings.TrimSpace(inner)})
		case "ul", "ol":
			var items []string
			sel.Find("li").Each(func(_ int, li *goquery.Selection) {
				inner, _ := li.Html()
				items = append(items, strings.TrimSpace(inner))
			})
			if len(items) > 0 {
				blocks = append(blocks, domain.Block{Kind: domain.BlockList, Items: items})
			}
		case "figure", "div":
			img := sel.Find("img").First()
			if img.Length() == 0 {
				if node == "div" && strings.TrimSpace(sel.Text()) != "" {
					inner, _ := sel.Html()
					blocks = append(blocks, domain.Block{Kind: domain.BlockParagraph, Text: strings.TrimSpace(inner)})
				}
				return
			}
			if stem != "" && strings.Contains(imgSources(img), stem) {
				return // duplicate of the featured image
			}
			graphIndex++
			blocks = append(blocks, domain.Block{Kind: domain.BlockImage, GraphIndex: graphIndex})
		}
	})

	return blocks, nil
}

var inlineImgExpr = regexp.MustCompile(`(?i)<img\b[^>]*>`)

// splitInlineImages turns a paragraph's inner HTML into alternating
// paragraph and image blocks, one image block per <img> in document order.
// Images matching the featured-image stem are dropped like their figure
// counterparts.
func splitInlineImages(inner, stem string, graphIndex *int) []domain.Block {
	var blocks []domain.Block
	last := 0
	for _, loc := range inlineImgExpr.FindAllStringIndex(inner, -1) {
		if text := strings.TrimSpace(inner[last:loc[0]]); text != "" {
			blocks = append(blocks, domain.Block{Kind: domain.BlockParagraph, Text: text})
		}
		last = loc[1]
		if stem != "" && strings.Contains(inner[loc[0]:loc[1]], stem) {
			continue
		}
		*graphIndex++
		blocks = append(blocks, domain.Block{Kind: domain.BlockImage, GraphIndex: *graphIndex})
	}
	if text := strings.TrimSpace(inner[last:]); text != "" {
		blocks = append(blocks, domain.Block{Kind: domain.BlockParagraph, Text: text})
	}
	return blocks
}

// imageStem derives the base filename without size suffix or extension, so
// resized variants (e.g. photo-800x600.jpg) still match photo.jpg.
func imageStem(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	trimmed := strings.TrimRight(imageURL, "/")
	filename := trimmed
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		filename = trimmed[idx+1:]
	}
	base := sizeSuffixExpr.ReplaceAllString(filename, "$1")
	return extExpr.ReplaceAllString(base, "")
}

func imgSources(img *goquery.Selection) string {
	src, _ := img.Attr("src")
	srcset, _ := img.Attr("srcset")
	return src + " " + srcset
}
