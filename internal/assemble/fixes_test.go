package assemble

import (
	"strings"
	"testing"
)

func TestReplaceSemanticTags(t *testing.T) {
	t.Parallel()

	got := applyEmailFixes("<p><strong>Bold</strong> and <em>slanted</em> and <u>lined</u>.</p>")
	if strings.Contains(got, "<strong>") || strings.Contains(got, "<em>") || strings.Contains(got, "<u>") {
		t.Fatalf("semantic tags survived: %s", got)
	}
	if !strings.Contains(got, `<span style="font-weight:bold;">Bold</span>`) {
		t.Fatalf("bold span missing: %s", got)
	}
	if !strings.Contains(got, `<span style="font-style:italic;">slanted</span>`) {
		t.Fatalf("italic span missing: %s", got)
	}
	if !strings.Contains(got, `<span style="text-decoration:underline;">lined</span>`) {
		t.Fatalf("underline span missing: %s", got)
	}
}

func TestReplaceSemanticTagsMergesExistingStyle(t *testing.T) {
	t.Parallel()

	got := replaceSemanticTags(`<strong style="color: red;">Hot</strong>`, "strong", "font-weight:bold;")
	if !strings.Contains(got, `style="font-weight:bold;color: red;"`) {
		t.Fatalf("existing style lost: %s", got)
	}
}

func TestFixImages(t *testing.T) {
	t.Parallel()

	got := fixImages(`<img src="https://cdn/x.png">`)
	if !strings.Contains(got, `alt=""`) {
		t.Fatalf("missing alt not added: %s", got)
	}
	if !strings.Contains(got, "display:block") {
		t.Fatalf("display not forced: %s", got)
	}

	keep := fixImages(`<img alt="chart" src="https://cdn/x.png" style="display:inline;">`)
	if strings.Contains(keep, `alt=""`) || !strings.Contains(keep, "display:inline") {
		t.Fatalf("existing attributes clobbered: %s", keep)
	}
}

func TestStripScriptsAndFrames(t *testing.T) {
	t.Parallel()

	got := stripScriptsAndFrames(`<p>Keep</p><script>alert(1)</script><iframe src="https://x"></iframe><p>me</p>`)
	if got != "<p>Keep</p><p>me</p>" {
		t.Fatalf("unexpected output: %s", got)
	}
}

func TestFixLinksPlainAnchor(t *testing.T) {
	t.Parallel()

	got := fixLinks(`<p style="font-size: 14px;">See <a href="https://x">this piece</a>.</p>`)
	if !strings.Contains(got, `color:#000000`) || !strings.Contains(got, `text-decoration:underline`) {
		t.Fatalf("anchor styles missing: %s", got)
	}
	// The wrapper takes its size from the nearest preceding font-size.
	if !strings.Contains(got, `<span style="font-size:14px;color:#000000;text-decoration:underline;">this piece</span>`) {
		t.Fatalf("span wrapper wrong: %s", got)
	}
}

func TestFixLinksRespectsAnchorFontSize(t *testing.T) {
	t.Parallel()

	got := fixLinks(`<a href="https://x" style="font-size: 12px;color: #054f8b;">tiny</a>`)
	if !strings.Contains(got, `font-size:12px`) {
		t.Fatalf("anchor font size ignored: %s", got)
	}
	if !strings.Contains(got, `color:#054f8b`) {
		t.Fatalf("anchor color lost: %s", got)
	}
	if strings.Contains(got, "font-size:inherit") {
		t.Fatal("inherit must never be emitted")
	}
}

func TestFixLinksIdempotent(t *testing.T) {
	t.Parallel()

	once := fixLinks(`<p>Read <a href="https://x">more</a>.</p>`)
	twice := fixLinks(once)
	if once != twice {
		t.Fatalf("second pass rewrote links:\nonce:  %s\ntwice: %s", once, twice)
	}
}

func TestFixLinksSkipsAnchorsWithoutHref(t *testing.T) {
	t.Parallel()

	in := `<a name="top">anchor point</a>`
	if got := fixLinks(in); got != in {
		t.Fatalf("href-free anchor modified: %s", got)
	}
}

func TestInjectGmailIOSCSS(t *testing.T) {
	t.Parallel()

	in := "<head><style>.a{}</style></head><body style=\"margin: 0;\"><p>x</p></body>"
	got := injectGmailIOSCSS(in)
	if !strings.Contains(got, `<body id="body"`) {
		t.Fatalf("body id missing: %s", got)
	}
	if strings.Count(got, "u + #body") == 0 {
		t.Fatal("stylesheet block missing")
	}
	if strings.Index(got, "u + #body") > strings.Index(got, "</style>") {
		t.Fatal("css landed outside the style block")
	}

	keep := injectGmailIOSCSS(`<style></style><body id="main">x</body>`)
	if !strings.Contains(keep, `<body id="main">`) {
		t.Fatalf("existing body id clobbered: %s", keep)
	}
}

func TestFixInjectedHeights(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{`<td style="height: 22.5px;">`, `<td style="height:auto;">`},
		{`<tr style="height: 450px;">`, `<tr style="height:auto;">`},
		{`<td style="height: 40px;">`, `<td style="height: 40px;">`},
		{`<div style="height: 450px;">`, `<div style="height: 450px;">`},
	}
	for _, tc := range cases {
		if got := fixInjectedHeights(tc.in); got != tc.want {
			t.Fatalf("fixInjectedHeights(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
