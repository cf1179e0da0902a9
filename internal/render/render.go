// Package render derives the two output variants from assembled HTML. The
// delivery variant ships to the email platform untouched; the preview
// variant is a best-effort browser rendition with the email-client-only
// constructs neutralized.
package render

import "regexp"

// Output carries both variants of one assembled document.
type Output struct {
	Delivery string
	Preview  string
}

var (
	msoConditionalExpr = regexp.MustCompile(`(?is)<!--\[if[\s\S]*?<!\[endif\]-->`)
	msoNamespaceExpr   = regexp.MustCompile(`(?is)<o:p\b[^>]*>[\s\S]*?</o:p>|<o:p\b[^>]*/>`)
	msoStyleDeclExpr   = regexp.MustCompile(`(?i)\bmso-[a-z-]+\s*:\s*[^;"]+;?`)
)

// Render produces both variants from the same assembled HTML. A defect in
// assembly shows up identically in both; render never repairs content.
func Render(assembled string) Output {
	return Output{
		Delivery: assembled,
		Preview:  toPreview(assembled),
	}
}

// toPreview strips Outlook conditional comments, Office namespace elements,
// and mso-* style declarations so a plain browser renders the document
// without the raw markup showing through.
func toPreview(html string) string {
	html = msoConditionalExpr.ReplaceAllString(html, "")
	html = msoNamespaceExpr.ReplaceAllString(html, "")
	return msoStyleDeclExpr.ReplaceAllString(html, "")
}
