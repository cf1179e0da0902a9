package assemble

import (
	"fmt"
	"strings"

	"github.com/emilyparentdata/StagingTools/internal/domain"
)

// docStart opens the document frame: head, shared styles, and the outer
// email-container table every layout row nests inside.
func (e *Engine) docStart(b *strings.Builder, title string) {
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html lang="en">` + "\n<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	fmt.Fprintf(b, "<title>%s - %s</title>\n", escapeText(title), escapeText(e.siteName))
	b.WriteString("<style>" + baseCSS + "</style>\n</head>\n")
	b.WriteString(`<body style="margin: 0; padding: 0; background-color: #f6f3ec;">` + "\n")
	b.WriteString(`<table align="center" border="0" cellpadding="0" cellspacing="0" class="email-container" role="presentation" style="width: 600px; max-width: 600px; background-color: #fffcee;">` + "\n<tbody>\n")
}

// docEnd closes the frame and writes the footer with the copyright year.
func (e *Engine) docEnd(b *strings.Builder) {
	year := e.now().Year()
	b.WriteString(`<tr><td align="center" style="padding: 32px 40px;">`)
	fmt.Fprintf(b, `<p style="%s">Copyright &#169; %d %s, All rights reserved.</p>`, styleFooterP, year, escapeText(e.siteName))
	b.WriteString("</td></tr>\n</tbody>\n</table>\n</body>\n</html>\n")
}

// hero writes the title row. Each subtitle line becomes its own paragraph.
func heroRow(b *strings.Builder, title string, subtitleLines []string, subtitleStyle string) {
	b.WriteString(`<tr><td class="table-box-mobile" style="padding: 40px 40px 16px;">` + "\n")
	fmt.Fprintf(b, `<h1 class="headline-mobile" style="%s">%s</h1>`+"\n", styleH1, escapeText(title))
	for _, line := range subtitleLines {
		fmt.Fprintf(b, `<p class="sub-text" style="%s">%s</p>`+"\n", subtitleStyle, escapeText(line))
	}
	b.WriteString("</td></tr>\n")
}

func featuredImage(url, alt string) string {
	if url == "" {
		return ""
	}
	return fmt.Sprintf(featuredImageDiv, escapeAttr(alt), escapeAttr(url))
}

// buildStandard lays out the standard newsletter: hero, optional welcome
// block, body with the featured image after the opening paragraphs, author
// block, then two related-reading cards.
func (e *Engine) buildStandard(fs *domain.FieldSet, related []domain.RelatedArticle) string {
	var b strings.Builder
	e.docStart(&b, fs.Title)
	heroRow(&b, fs.Title, fs.SubtitleLines, stylePSub)

	intro, main := splitAtFirstHeading(fs.BodyHTML)

	b.WriteString(`<tr><td class="table-box-mobile no-pad-t-b" style="padding: 0px 40px 0px;">` + "\n")
	b.WriteString(`<table border="0" cellpadding="0" cellspacing="0" role="presentation" width="100%"><tbody>` + "\n")
	if fs.WelcomeHTML != "" {
		fmt.Fprintf(&b, `<tr><td style="padding-bottom: 8px; padding-top: 24px; width: 100%%;">%s</td></tr>`+"\n", fs.WelcomeHTML)
	}
	fmt.Fprintf(&b, `<tr><td class="tablebox" style="padding-bottom: 8px; width: 100%%;">%s%s</td></tr>`+"\n",
		intro, featuredImage(fs.FeaturedImageURL, fs.FeaturedImageAlt))
	b.WriteString("</tbody></table></td></tr>\n")

	b.WriteString(`<tr><td class="table-box-mobile no-pad-t-b" style="padding: 0px 40px 20px;">` + "\n")
	fmt.Fprintf(&b, `<table border="0" cellpadding="0" cellspacing="0" role="presentation" width="100%%"><tbody><tr><td class="tablebox" rowspan="3" style="padding-bottom: 8px; width: 100%%;">%s</td></tr></tbody></table>`+"\n", main)
	b.WriteString("</td></tr>\n")

	e.authorRow(&b, fs)
	e.relatedRows(&b, related)
	e.docEnd(&b)
	return b.String()
}

// authorRow writes the cream author box: name, title, and an About link.
func (e *Engine) authorRow(b *strings.Builder, fs *domain.FieldSet) {
	firstName := fs.AuthorName
	if i := strings.IndexByte(firstName, ' '); i > 0 {
		firstName = firstName[:i]
	}
	if firstName == "" {
		firstName = "Author"
	}
	authorURL := fs.AuthorURL
	if authorURL == "" {
		authorURL = "#"
	}
	b.WriteString(`<tr><td class="tablebox table-box-mobile" style="padding: 24px 40px; background-color: rgb(255, 252, 238);">` + "\n")
	fmt.Fprintf(b, `<p style="%s">%s</p>`+"\n", styleAuthorName, escapeText(fs.AuthorName))
	fmt.Fprintf(b, `<p style="%s">%s</p>`+"\n", styleAuthorTitle, escapeText(fs.AuthorTitle))
	fmt.Fprintf(b, `<p style="margin: 0;"><a href="%s" style="color: #000000; text-decoration: underline; font-size: 14px;">About %s</a></p>`+"\n",
		escapeAttr(authorURL), escapeText(firstName))
	b.WriteString("</td></tr>\n")
}

// relatedRows writes the "More from ..." heading and one card per fill-in.
func (e *Engine) relatedRows(b *strings.Builder, related []domain.RelatedArticle) {
	if len(related) == 0 {
		return
	}
	fmt.Fprintf(b, `<tr><td style="padding: 32px 40px 16px;"><h2 style="%s">More from %s</h2></td></tr>`+"\n",
		styleH1, escapeText(e.siteName))
	for i, article := range related {
		tdStyle := "padding: 0 40px 32px;"
		if i == len(related)-1 {
			tdStyle = "padding: 0 40px;"
		}
		url := article.URL
		if url == "" {
			url = "#"
		}
		alt := article.ImageAlt
		if alt == "" {
			alt = article.Title
		}
		fmt.Fprintf(b, `<tr><td style="%s">`+"\n", tdStyle)
		b.WriteString(`<table border="0" cellpadding="0" cellspacing="0" role="presentation" width="100%"><tbody>` + "\n")
		fmt.Fprintf(b, `<tr><td align="center" style="padding-bottom: 16px;"><a href="%s" style="display: block;"><img alt="%s" class="fluid" height="150" src="%s" style="width: 100%%; max-width: 330px; height: auto; display: block; border-radius: 12px;" width="330"></a></td></tr>`+"\n",
			escapeAttr(url), escapeAttr(alt), escapeAttr(article.ImageURL))
		b.WriteString(`<tr><td style="text-align: center;">` + "\n")
		fmt.Fprintf(b, `<h3 class="h3-heading" style="%s"><a href="%s" style="color: #000000; text-decoration: none;">%s</a></h3>`+"\n",
			styleCardTitle, escapeAttr(url), escapeText(article.Title))
		fmt.Fprintf(b, `<p style="%s">%s</p>`+"\n", styleCardDesc, escapeText(article.Description))
		b.WriteString("</td></tr>\n")
		fmt.Fprintf(b, `<tr><td align="center" style="padding: 15px 0; text-align: center;"><table align="center" border="0" cellpadding="0" cellspacing="0" role="presentation"><tbody><tr><td style="border: 2px solid #000000; border-radius: 3px;"><a href="%s" rel="noopener" style="display: inline-block; padding: 6px 14px; font-family: 'DM Sans', Arial, sans-serif; font-size: 12px; font-weight: 600; color: #000000; text-decoration: none;" target="_blank"> Read more </a></td></tr></tbody></table></td></tr>`+"\n",
			escapeAttr(url))
		b.WriteString("</tbody></table></td></tr>\n")
	}
}

// buildFertility lays out the fertility article: subtitle and author share
// the header, the body splits around the featured image, and the purple
// bottom-line box closes the article. No author box or related cards.
func (e *Engine) buildFertility(fs *domain.FieldSet) string {
	var b strings.Builder
	e.docStart(&b, fs.Title)

	subtitle := ""
	if len(fs.SubtitleLines) > 0 {
		subtitle = fs.SubtitleLines[0]
	}
	authorLine := fs.AuthorName
	if fs.AuthorTitle != "" {
		authorLine = fs.AuthorName + ", " + fs.AuthorTitle
	}

	b.WriteString(`<tr><td class="table-box-mobile top-box-header-m no-top-pad" style="padding: 40px 40px 16px;">` + "\n")
	fmt.Fprintf(&b, `<h1 class="headline-mobile" style="%s">%s</h1>`+"\n", styleH1, escapeText(fs.Title))
	fmt.Fprintf(&b, `<p class="sub-text" style="%s">%s</p>`+"\n", stylePSub, escapeText(subtitle))
	fmt.Fprintf(&b, `<p class="sub-text" style="%s">%s</p>`+"\n", stylePSubAuthor, escapeText(authorLine))
	b.WriteString("</td></tr>\n")

	intro, main := splitAtFirstHeading(fs.BodyHTML)
	if main == "" {
		// No section headings; split after two paragraphs so the featured
		// image still lands inside the article rather than at the end.
		intro, main = splitAfterParagraphs(fs.BodyHTML, 2)
	}

	fmt.Fprintf(&b, `<tr><td class="tablebox" style="padding: 0 40px 8px;">%s%s</td></tr>`+"\n",
		intro, featuredImage(fs.FeaturedImageURL, fs.FeaturedImageAlt))
	fmt.Fprintf(&b, `<tr><td class="tablebox table-box-mobile no-top-pad" style="padding: 0 40px 20px;">%s</td></tr>`+"\n", main)

	b.WriteString(`<tr><td style="padding: 16px 40px 32px;"><table border="0" cellpadding="0" cellspacing="0" role="presentation" width="100%"><tbody>` + "\n")
	fmt.Fprintf(&b, `<tr><td style="background-color: #a9b4ff; border-radius: 16px; padding: 24px 32px;"><h3 style="%s">The bottom line</h3>%s</td></tr>`+"\n",
		styleCardTitle, fs.BottomLineHTML)
	b.WriteString("</tbody></table></td></tr>\n")

	e.docEnd(&b)
	return b.String()
}

// buildQA lays out the question-and-answer issue: intro sentence, then each
// pair under its Question/Answer marker, then the attribution line verbatim.
func (e *Engine) buildQA(fs *domain.FieldSet) string {
	var b strings.Builder
	e.docStart(&b, fs.Title)

	b.WriteString(`<tr><td class="table-box-mobile" style="padding: 40px 40px 16px;">` + "\n")
	fmt.Fprintf(&b, `<p class="sub-text" style="%s"><span style="white-space: pre-wrap;">%s</span></p>`+"\n",
		stylePSub, escapeText(fs.IntroText))
	b.WriteString("</td></tr>\n")

	for _, pair := range fs.QAPairs {
		b.WriteString(`<tr><td class="table-box-mobile" style="padding: 16px 40px 0;">` + "\n")
		fmt.Fprintf(&b, `<p style="%s">Question</p>`+"\n", styleQAMarker)
		question := fmt.Sprintf(`<span style="white-space: pre-wrap;">%s</span>`, escapeText(pair.QuestionText))
		if pair.QuestionAuthor != "" {
			question += fmt.Sprintf(`<br><br><span style="white-space: pre-wrap;">&#8212;%s</span>`, escapeText(pair.QuestionAuthor))
		}
		fmt.Fprintf(&b, `<p style="%s">%s</p>`+"\n", stylePItalic, question)
		b.WriteString("</td></tr>\n")

		b.WriteString(`<tr><td class="tablebox table-box-mobile" style="padding: 0 40px 8px;">` + "\n")
		fmt.Fprintf(&b, `<p style="%s">Answer</p>`+"\n", styleQAMarker)
		fmt.Fprintf(&b, "<div>%s</div>\n", pair.AnswerHTML)
		b.WriteString("</td></tr>\n")
	}

	if fs.AttributionLine != "" {
		b.WriteString(`<tr><td class="tablebox table-box-mobile" style="padding: 0 40px 24px;">` + "\n")
		fmt.Fprintf(&b, `<p style="white-space-collapse: preserve; font-family: 'DM Sans', Arial, Helvetica, sans-serif; font-weight: normal; font-size: 16px; line-height: 24px; color: #000000;"><span class="g-italic-fnt" style="font-style: italic; font-size: 16px; font-family: 'DM Sans', Arial, Helvetica, sans-serif;">%s</span></p>`+"\n",
			escapeText(fs.AttributionLine))
		b.WriteString("</td></tr>\n")
	}

	e.docEnd(&b)
	return b.String()
}

// buildMarketing lays out the upgrade pitch: banner pill, hero, the chosen
// intro variant with its call-to-action rewritten to the discount link, the
// pricing block, then the article body as a scaled-down preview.
func (e *Engine) buildMarketing(fs *domain.FieldSet) string {
	var b strings.Builder
	e.docStart(&b, fs.Title)

	fmt.Fprintf(&b, `<tr><td align="center" style="padding: 16px 40px;"><table align="center" border="0" cellpadding="0" cellspacing="0" role="presentation"><tbody><tr><td style="background-color: #054f8b; border-radius: 24px; padding: 8px 24px;"><p class="welcome-message" style="%s">%s</p></td></tr></tbody></table></td></tr>`+"\n",
		styleBanner, escapeText(fs.BannerText))
	heroRow(&b, fs.Title, fs.SubtitleLines, stylePSub)

	// Intro variant: the pointer paragraph after the 👉 marker becomes the
	// discount call to action.
	para1, para2 := fs.IntroOptionText, ""
	if i := strings.Index(fs.IntroOptionText, "👉"); i >= 0 {
		para1 = strings.TrimSpace(fs.IntroOptionText[:i])
		para2 = "👉 " + strings.TrimSpace(fs.IntroOptionText[i+len("👉"):])
	}
	b.WriteString(`<tr><td class="tablebox table-box-mobile" style="padding: 0 48px 16px;">` + "\n")
	fmt.Fprintf(&b, `<p style="%s">%s</p>`+"\n", styleMktIntro, escapeText(para1))
	if para2 != "" {
		fmt.Fprintf(&b, `<p style="%s"><a href="%s" style="color:#054f8b;text-decoration:underline;">%s</a></p>`+"\n",
			styleMktIntro, escapeAttr(fs.DiscountURL), escapeText(para2))
	}
	b.WriteString("</td></tr>\n")

	// Pricing block for the chosen plan.
	b.WriteString(`<tr><td align="center" style="padding: 8px 48px 24px;"><table align="center" border="0" cellpadding="0" cellspacing="0" role="presentation"><tbody>` + "\n")
	if fs.PlanName != "" {
		fmt.Fprintf(&b, `<tr><td align="center" style="padding-bottom: 4px;"><p style="%s">%s</p></td></tr>`+"\n",
			styleAuthorTitle, escapeText(fs.PlanName))
	}
	fmt.Fprintf(&b, `<tr><td align="center" class="pricing-old"><p style="%s">%s</p></td></tr>`+"\n", stylePricingOld, escapeText(fs.ListPrice))
	fmt.Fprintf(&b, `<tr><td align="center" class="pricing-new"><p style="%s">%s</p></td></tr>`+"\n", stylePricingNew, escapeText(fs.DiscountPrice))
	fmt.Fprintf(&b, `<tr><td align="center" style="padding-top: 16px;"><div style="display:inline-block;border-radius:15px;background-color:#fceea9;border:2px solid #000;box-shadow:0 4px 4px rgba(0,0,0,0.25);"><a href="%s" rel="noopener" target="_blank" style="display:block;padding:16px 24px;font-family:'DM Sans',Arial,sans-serif;font-weight:800;font-size:20px;color:#000;text-decoration:none;text-transform:uppercase;">UPGRADE NOW</a></div></td></tr>`+"\n",
		escapeAttr(fs.DiscountURL))
	b.WriteString("</tbody></table></td></tr>\n")

	// Article body as a preview, featured image between the opening
	// paragraphs and the first section heading.
	body := scaleMarketingFonts(fs.BodyHTML)
	intro, main := splitAtFirstHeading(body)
	bodyRow := func(content string) {
		fmt.Fprintf(&b, `<tr><td class="table-box-mobile no-top-pad" style="background-color:#fff;padding:0 48px;"><table border="0" cellpadding="0" cellspacing="0" role="presentation" width="100%%"><tbody><tr><td class="tablebox" style="padding-bottom:0;">%s</td></tr></tbody></table></td></tr>`+"\n", content)
	}
	if intro != "" {
		bodyRow(intro)
	}
	if fs.FeaturedImageURL != "" {
		fmt.Fprintf(&b, `<tr><td class="table-box-mobile no-top-pad" style="background-color:#fff;padding:0 48px;"><table border="0" cellpadding="0" cellspacing="0" role="presentation" width="100%%"><tbody><tr><td style="text-align:center;"><img src="%s" alt="%s" style="display:block;width:100%%;max-width:520px;height:auto;border-radius:20px;margin:0 auto;" class="fluid"></td></tr></tbody></table></td></tr>`+"\n",
			escapeAttr(fs.FeaturedImageURL), escapeAttr(fs.FeaturedImageAlt))
	}
	bodyRow(main)

	articleURL := fs.ArticleURL
	if articleURL == "" {
		articleURL = "#"
	}
	fmt.Fprintf(&b, `<tr><td class="table-box-mobile no-top-pad" style="background-color:#fff;padding:0 48px 40px;"><table align="center" border="0" cellpadding="0" cellspacing="0" role="presentation" style="max-width:288px;width:100%%;"><tbody><tr><td align="center" style="padding:0;"><div style="display:inline-block;border-radius:15px;background-color:#fceea9;border:2px solid #000;box-shadow:0 4px 4px rgba(0,0,0,0.25);"><a href="%s" rel="noopener" target="_blank" style="display:block;padding:16px 24px;font-family:'DM Sans',Arial,sans-serif;font-weight:800;font-size:20px;color:#000;text-decoration:none;text-transform:uppercase;">LEAVE A COMMENT</a></div></td></tr></tbody></table></td></tr>`+"\n",
		escapeAttr(articleURL))

	e.authorRow(&b, fs)
	e.docEnd(&b)
	return b.String()
}
