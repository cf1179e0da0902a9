package assemble

// Inline styles used across the email layouts. Email clients ignore most
// stylesheet rules, so every element carries its full style inline and the
// <style> block only covers clients that honor it.

const (
	styleH1 = "margin: 0 0 8px 0; font-family: 'Lora', Georgia, serif; font-weight: bold; " +
		"font-size: 32px; line-height: 40px; color: #000000;"

	stylePSub = "margin: 0; font-family: 'Lora', Georgia, serif; font-weight: 400; " +
		"font-size: 18px; line-height: 32px; letter-spacing: -0.8px; color: #000000;"

	stylePSubAuthor = "margin: 0; font-family: 'Lora', Georgia, serif; font-weight: 300; " +
		"font-size: 18px; line-height: 32px; letter-spacing: -0.8px; color: #000000;"

	stylePItalic = "padding-bottom: 16px; margin: 0; font-family: 'DM Sans', Arial, Helvetica, sans-serif; " +
		"font-weight: 400; font-style: italic; font-size: 16px; line-height: 24px; color: #000000;"

	styleAuthorName = "margin: 0; font-family: 'Lora', Georgia, serif; font-weight: bold; " +
		"font-size: 22px; line-height: 28px; color: #000000;"

	styleAuthorTitle = "margin: 0 0 8px 0; font-family: 'DM Sans', Arial, Helvetica, sans-serif; " +
		"font-weight: 400; font-size: 14px; line-height: 20px; color: #000000;"

	styleCardTitle = "margin: 0 0 8px 0; font-family: 'Lora', Georgia, serif; font-weight: bold; " +
		"font-size: 18px; line-height: 24px; letter-spacing: -0.8px; color: #000000;"

	styleCardDesc = "margin: 0; font-family: 'DM Sans', Arial, Helvetica, sans-serif; font-weight: 400; " +
		"font-size: 16px; line-height: 24px; letter-spacing: -0.8px; color: #000000;"

	styleFooterP = "margin: 0; font-family: 'DM Sans', Arial, Helvetica, sans-serif; font-weight: 400; " +
		"font-size: 12px; line-height: 18px; color: #666666;"

	styleBanner = "margin: 0; font-family: 'DM Sans', Arial, Helvetica, sans-serif; font-weight: 600; " +
		"font-size: 16px; line-height: 24px; color: #ffffff;"

	styleMktIntro = "font-family: 'DM Sans', Arial, Helvetica, sans-serif; font-weight: normal; " +
		"font-size: 16px; line-height: 24px; color: #000000; font-style: italic;"

	stylePricingOld = "margin: 0; font-family: 'DM Sans', Arial, Helvetica, sans-serif; font-weight: 400; " +
		"font-size: 20px; line-height: 28px; color: #666666; text-decoration: line-through;"

	stylePricingNew = "margin: 0; font-family: 'Lora', Georgia, serif; font-weight: bold; " +
		"font-size: 32px; line-height: 40px; color: #000000;"

	styleQAMarker = "margin: 0 0 16px 0; display: inline-block; padding: 6px 20px; border-radius: 20px; " +
		"background-color: #000000; font-family: 'DM Sans', Arial, Helvetica, sans-serif; " +
		"font-weight: 700; font-size: 14px; line-height: 20px; color: #ffffff; text-transform: uppercase;"

	featuredImageDiv = `<div style="position: relative; display: inline-block; width: 100%%; margin-bottom: 24px;">` +
		`<img alt="%s" class="fluid" src="%s" style="width: 100%%; max-width: 552px; height: auto; display: block; border-radius: 16px;"></div>`

	graphImageDiv = `<div style="position: relative; display: inline-block; width: 100%%; margin: 16px 0;">` +
		`<img alt="%s" class="fluid" src="%s" style="width: 100%%; max-width: 552px; height: auto; display: block; border-radius: 8px;"></div>`
)

// baseCSS is the shared <style> block. The .tablebox anchor rule is a
// backstop for Apple Mail; per-client fixes are appended by the fix pass.
const baseCSS = `
body { margin: 0; padding: 0; background-color: #f6f3ec; }
table { border-collapse: collapse; }
img.fluid { width: 100%; height: auto; }
.tablebox a { font-size: 16px !important; }
@media screen and (max-width: 600px) {
  .email-container { width: 100% !important; }
  .table-box-mobile { padding-left: 24px !important; padding-right: 24px !important; }
  .headline-mobile { font-size: 26px !important; line-height: 32px !important; }
  .stack-column { display: block !important; width: 100% !important; }
}
`
