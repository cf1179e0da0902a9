package assemble

import (
	"regexp"
	"strings"
)

// applyEmailFixes runs the email-client compatibility passes over assembled
// HTML. All passes are plain string transforms, so the output stays a pure
// function of the input:
//
//  1. <strong>/<b>, <em>/<i>, <u> become inline-styled spans.
//  2. <img> gains display:block and an alt attribute when missing.
//  3. <script> and <iframe> are removed.
//  4. Every <a href> gets inline link styles plus a styled <span> wrapper
//     (Gmail iOS strips styles from anchors but not from their children).
//  5. A "u + #body" stylesheet block is injected so the span fix holds even
//     when Gmail iOS fails to inherit font sizing through the wrapper.
//  6. Editor-injected heights on table/tr/td collapse to height:auto.
func applyEmailFixes(html string) string {
	html = replaceSemanticTags(html, "strong", "font-weight:bold;")
	html = replaceSemanticTags(html, "b", "font-weight:bold;")
	html = replaceSemanticTags(html, "em", "font-style:italic;")
	html = replaceSemanticTags(html, "i", "font-style:italic;")
	html = replaceSemanticTags(html, "u", "text-decoration:underline;")
	html = fixImages(html)
	html = stripScriptsAndFrames(html)
	html = fixLinks(html)
	html = injectGmailIOSCSS(html)
	html = fixInjectedHeights(html)
	return html
}

var styleAttrExpr = regexp.MustCompile(`(?i)\bstyle\s*=\s*"([^"]*)"`)

// replaceSemanticTags rewrites <tag> as <span> carrying styleDecl, merged in
// front of any existing inline style.
func replaceSemanticTags(html, tag, styleDecl string) string {
	openExpr := regexp.MustCompile(`(?i)<` + tag + `\b([^>]*)>`)
	closeExpr := regexp.MustCompile(`(?i)</` + tag + `>`)

	html = openExpr.ReplaceAllStringFunc(html, func(m string) string {
		attrs := openExpr.FindStringSubmatch(m)[1]
		if loc := styleAttrExpr.FindStringSubmatchIndex(attrs); loc != nil {
			existing := attrs[loc[2]:loc[3]]
			attrs = attrs[:loc[0]] + `style="` + styleDecl + existing + `"` + attrs[loc[1]:]
		} else {
			attrs = ` style="` + styleDecl + `"` + attrs
		}
		return "<span" + attrs + ">"
	})
	return closeExpr.ReplaceAllString(html, "</span>")
}

var (
	imgExpr     = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	altAttrExpr = regexp.MustCompile(`(?i)\balt\s*=`)
	displayExpr = regexp.MustCompile(`(?i)\bdisplay\s*:`)
)

func fixImages(html string) string {
	return imgExpr.ReplaceAllStringFunc(html, func(m string) string {
		if loc := styleAttrExpr.FindStringSubmatchIndex(m); loc != nil {
			style := m[loc[2]:loc[3]]
			if !displayExpr.MatchString(style) {
				m = m[:loc[2]] + "display:block;margin:0 auto;" + m[loc[2]:]
			}
		} else {
			m = m[:4] + ` style="display:block;margin:0 auto;"` + m[4:]
		}
		if !altAttrExpr.MatchString(m) {
			m = m[:4] + ` alt=""` + m[4:]
		}
		return m
	})
}

var (
	scriptExpr = regexp.MustCompile(`(?is)<script\b[\s\S]*?</script>`)
	iframeExpr = regexp.MustCompile(`(?is)<iframe\b[\s\S]*?</iframe>`)
)

func stripScriptsAndFrames(html string) string {
	html = scriptExpr.ReplaceAllString(html, "")
	return iframeExpr.ReplaceAllString(html, "")
}

var (
	anchorExpr       = regexp.MustCompile(`(?is)<a\b([^>]*)>(.*?)</a>`)
	hrefExpr         = regexp.MustCompile(`(?i)\bhref\s*=`)
	colorDeclExpr    = regexp.MustCompile(`(?i)\bcolor\s*:\s*([^;"]+)`)
	textDecDeclExpr  = regexp.MustCompile(`(?i)text-decoration\s*:\s*([^;"]+)`)
	fontSizeDeclExpr = regexp.MustCompile(`(?i)font-size\s*:\s*([^;"]+)`)
	parentFontExpr   = regexp.MustCompile(`(?i)font-size\s*:\s*(\d+px)`)
	leadSpanExpr     = regexp.MustCompile(`(?is)^\s*<span\b[^>]*\bstyle\s*=\s*"([^"]*)"`)
)

// fixLinks ensures every anchor carries color and text-decoration inline and
// wraps its content in a span carrying the same styles plus an explicit
// font-size. The span's size comes from the anchor itself when declared, the
// nearest preceding font-size otherwise, falling back to the body default.
// No font-size:inherit; older iOS Mail resolves it to the system default.
func fixLinks(html string) string {
	matches := anchorExpr.FindAllStringSubmatchIndex(html, -1)
	if matches == nil {
		return html
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(html[last:m[0]])
		last = m[1]
		attrs := html[m[2]:m[3]]
		content := html[m[4]:m[5]]

		if !hrefExpr.MatchString(attrs) {
			b.WriteString(html[m[0]:m[1]])
			continue
		}

		curStyle := ""
		styleLoc := styleAttrExpr.FindStringSubmatchIndex(attrs)
		if styleLoc != nil {
			curStyle = attrs[styleLoc[2]:styleLoc[3]]
		}
		hasColor := colorDeclExpr.MatchString(curStyle)
		hasTextDec := textDecDeclExpr.MatchString(curStyle)

		// A span already carrying color plus an explicit font-size is a
		// previous fix; formatting-only spans still need the wrapper.
		alreadyFixed := false
		if spanStyle := leadSpanExpr.FindStringSubmatch(content); spanStyle != nil {
			alreadyFixed = colorDeclExpr.MatchString(spanStyle[1]) && fontSizeDeclExpr.MatchString(spanStyle[1])
		}
		if hasColor && hasTextDec && alreadyFixed {
			b.WriteString(html[m[0]:m[1]])
			continue
		}

		var addParts []string
		if !hasColor {
			addParts = append(addParts, "color:#000000")
		}
		if !hasTextDec {
			addParts = append(addParts, "text-decoration:underline")
		}
		addStr := ""
		if len(addParts) > 0 {
			addStr = strings.Join(addParts, ";") + ";"
		}

		newAttrs := attrs
		if addStr != "" {
			if styleLoc != nil {
				newAttrs = attrs[:styleLoc[0]] + `style="` + addStr + curStyle + `"` + attrs[styleLoc[1]:]
			} else {
				newAttrs = ` style="` + addStr + `"` + attrs
			}
		}

		merged := addStr + curStyle
		spanSize := "16px"
		if fz := fontSizeDeclExpr.FindStringSubmatch(merged); fz != nil {
			spanSize = strings.TrimSpace(fz[1])
		} else if parents := parentFontExpr.FindAllStringSubmatch(html[:m[0]], -1); parents != nil {
			spanSize = parents[len(parents)-1][1]
		}
		spanColor := "#000000"
		if c := colorDeclExpr.FindStringSubmatch(merged); c != nil {
			spanColor = strings.TrimSpace(c[1])
		}
		spanDec := "underline"
		if d := textDecDeclExpr.FindStringSubmatch(merged); d != nil {
			spanDec = strings.TrimSpace(d[1])
		}

		newContent := content
		if !alreadyFixed {
			newContent = `<span style="font-size:` + spanSize + `;color:` + spanColor +
				`;text-decoration:` + spanDec + `;">` + content + `</span>`
		}
		b.WriteString("<a" + newAttrs + ">" + newContent + "</a>")
	}
	b.WriteString(html[last:])
	return b.String()
}

// gmailIOSCSS only matches in Gmail on iOS, which injects a bare <u>
// adjacent to the body element. Other clients never match the selector.
const gmailIOSCSS = "\n/* Gmail iOS: fix font-size/family on all .tablebox / .table-box spans */\n" +
	"u + #body .tablebox a," +
	"u + #body .table-box a{font-size:16px!important}\n" +
	"u + #body .tablebox li," +
	"u + #body .table-box li{font-size:16px!important}\n" +
	"u + #body .tablebox p span," +
	"u + #body .tablebox li span," +
	"u + #body .table-box p span," +
	"u + #body .table-box li span{" +
	"font-size:16px!important;" +
	"font-family:'DM Sans',Arial,Helvetica,sans-serif!important" +
	"}\n"

var (
	bodyTagExpr = regexp.MustCompile(`(?i)<body\b((?:[^>]*?))>`)
	idAttrExpr  = regexp.MustCompile(`(?i)\bid\s*=`)
)

func injectGmailIOSCSS(html string) string {
	done := false
	html = bodyTagExpr.ReplaceAllStringFunc(html, func(m string) string {
		if done {
			return m
		}
		done = true
		attrs := bodyTagExpr.FindStringSubmatch(m)[1]
		if idAttrExpr.MatchString(attrs) {
			return m
		}
		return `<body id="body"` + attrs + `>`
	})
	return strings.Replace(html, "</style>", gmailIOSCSS+"</style>", 1)
}

var (
	styledCellExpr = regexp.MustCompile(`(?i)(<(?:table|tr|td)\b[^>]*\bstyle\s*=\s*")([^"]*)(")`)
	badHeightExpr  = regexp.MustCompile(`(?i)\bheight\s*:\s*(?:\d+\.\d+|[3-9]\d{2}|\d{4,})px`)
)

// fixInjectedHeights collapses fractional or oversized pixel heights left
// behind by email editors. Small intentional heights stay untouched.
func fixInjectedHeights(html string) string {
	return styledCellExpr.ReplaceAllStringFunc(html, func(m string) string {
		parts := styledCellExpr.FindStringSubmatch(m)
		if !badHeightExpr.MatchString(parts[2]) {
			return m
		}
		return parts[1] + badHeightExpr.ReplaceAllString(parts[2], "height:auto") + parts[3]
	})
}
