package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
)

var readableFallbacks = []string{
	"article",
	`[role="article"]`,
	".post-content",
	".article-content",
	".entry-content",
	"main",
}

// ExtractReadable is the variant used for pages rendered in a browser.
// Readability runs first; when it yields 200 characters or fewer the
// content selectors are tried and finally the whole body. There is no
// minimum length: an empty Text is returned as is.
func ExtractReadable(markup, pageURL string) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Result{}
	}
	res := Result{Title: Title(doc)}

	if text := readable(markup, pageURL); utf8.RuneCountInString(text) > candidateMinChars {
		res.Text = Cap(text)
		return res
	}

	stripNoise(doc)
	for _, sel := range readableFallbacks {
		found := doc.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		if t := Normalize(nodeText(found)); utf8.RuneCountInString(t) > candidateMinChars {
			res.Text = Cap(t)
			return res
		}
	}

	res.Text = Cap(Normalize(nodeText(doc.Find("body"))))
	return res
}

func readable(markup, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		u = &url.URL{}
	}

	article, err := readability.FromReader(strings.NewReader(markup), u)
	if err != nil {
		return ""
	}

	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return ""
	}
	return Normalize(builder.String())
}
