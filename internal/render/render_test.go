package render

import (
	"strings"
	"testing"
)

const assembled = `<!DOCTYPE html>
<html><head><style>.a{mso-line-height-rule: exactly;color:#000;}</style></head>
<body>
<!--[if mso]><table><tr><td>outlook only</td></tr></table><![endif]-->
<p style="mso-padding-alt: 0; margin: 0;">Hello<o:p></o:p></p>
</body></html>`

func TestRenderDeliveryUntouched(t *testing.T) {
	t.Parallel()

	out := Render(assembled)
	if out.Delivery != assembled {
		t.Fatal("delivery variant was modified")
	}
}

func TestRenderPreviewStripsEmailOnlyMarkup(t *testing.T) {
	t.Parallel()

	out := Render(assembled)
	if strings.Contains(out.Preview, "outlook only") {
		t.Fatal("conditional comment survived")
	}
	if strings.Contains(out.Preview, "<o:p>") {
		t.Fatal("office namespace element survived")
	}
	if strings.Contains(out.Preview, "mso-") {
		t.Fatal("mso style declaration survived")
	}
	if !strings.Contains(out.Preview, "Hello") || !strings.Contains(out.Preview, "margin: 0;") {
		t.Fatal("regular content was stripped")
	}
	if !strings.Contains(out.Preview, "color:#000") {
		t.Fatal("regular css was stripped")
	}
}
