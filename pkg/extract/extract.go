package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// MaxChars caps every extracted text. Longer text is cut and TruncationMarker appended.
	MaxChars         = 50000
	TruncationMarker = "\n\n[Text truncated]"

	// DefaultMinLength is the shortest text Extract accepts.
	DefaultMinLength = 50

	candidateMinChars = 200
)

// ErrExtractionFailed is returned when a page yields too little text to analyze.
var ErrExtractionFailed = errors.New("could not extract meaningful text from this page")

// noise is removed before any text is read.
const noise = "script, style, noscript, nav, header, footer, aside, form, svg, iframe, button"

var candidates = []string{
	"article",
	`[role="article"]`,
	".article-content",
	".post-content",
	".entry-content",
	".article-body",
	".story-body",
	"main",
}

// Result is the outcome of an extraction.
type Result struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type options struct {
	minLength int
}

// Option configures Extract.
type Option func(*options)

// WithMinLength overrides DefaultMinLength. Values below zero are treated as zero.
func WithMinLength(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.minLength = n
	}
}

// Extract pulls the title and main article text out of an HTML document.
//
// Noise elements and comments are dropped first. The first content container
// holding more than 200 characters of text is used, otherwise the whole body.
// Text shorter than the minimum length fails with ErrExtractionFailed.
func Extract(markup string, opts ...Option) (Result, error) {
	o := options{minLength: DefaultMinLength}
	for _, opt := range opts {
		opt(&o)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	res := Result{Title: Title(doc)}
	stripNoise(doc)

	text := ""
	for _, sel := range candidates {
		found := doc.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		if t := Normalize(nodeText(found)); utf8.RuneCountInString(t) > candidateMinChars {
			text = t
			break
		}
	}
	if text == "" {
		text = Normalize(nodeText(doc.Find("body")))
	}
	res.Text = Cap(text)

	if utf8.RuneCountInString(res.Text) < o.minLength {
		return res, ErrExtractionFailed
	}
	return res, nil
}

// Title returns the document <title>, falling back to og:title.
func Title(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return ""
}

func stripNoise(doc *goquery.Document) {
	doc.Find(noise).Remove()

	var comments []*html.Node
	for _, root := range doc.Nodes {
		walk(root, func(n *html.Node) {
			if n.Type == html.CommentNode {
				comments = append(comments, n)
			}
		})
	}
	for _, c := range comments {
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
	}
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// nodeText renders the text of a selection. Block elements and <br> end a
// line so paragraphs do not run together.
func nodeText(sel *goquery.Selection) string {
	var b strings.Builder
	var render func(*html.Node)
	render = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			if n.DataAtom == atom.Br {
				b.WriteByte('\n')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			render(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			b.WriteByte('\n')
		}
	}
	for _, n := range sel.Nodes {
		render(n)
	}
	return b.String()
}

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Blockquote: true, atom.Dd: true,
	atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Figcaption: true,
	atom.Figure: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Hr: true,
	atom.Li: true, atom.Main: true, atom.Ol: true, atom.P: true,
	atom.Pre: true, atom.Section: true, atom.Table: true, atom.Td: true,
	atom.Th: true, atom.Tr: true, atom.Ul: true,
}

var (
	spaceRun   = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses horizontal whitespace, trims every line and squeezes
// runs of blank lines down to one. The input is expected to be decoded text,
// entities are already resolved by the HTML parser.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spaceRun.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = strings.Join(lines, "\n")
	text = newlineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Cap cuts text to MaxChars characters and appends TruncationMarker when it
// had to cut.
func Cap(text string) string {
	if utf8.RuneCountInString(text) <= MaxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxChars]) + TruncationMarker
}
