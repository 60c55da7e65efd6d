package extract

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paragraph = "Congestion pricing charges drivers for the road space they use at the busiest hours of the day, " +
	"and the evidence from several cities suggests that travel times fall once the charge is in place."

func TestExtract_StripsNoise(t *testing.T) {
	markup := `<html><head><title>Road pricing</title><script>var tracking = "SECRET";</script></head>
<body>
<nav>Home | World | SECRET menu</nav>
<header>Site header SECRET</header>
<!-- SECRET comment -->
<article>
  <h1>Why cities should price roads</h1>
  <p>` + paragraph + `</p>
  <p>` + paragraph + `</p>
  <form><button>SECRET subscribe</button></form>
</article>
<aside>SECRET related links</aside>
<footer>SECRET footer</footer>
</body></html>`

	res, err := Extract(markup)
	require.NoError(t, err)
	assert.Equal(t, "Road pricing", res.Title)
	assert.NotContains(t, res.Text, "SECRET")
	assert.Contains(t, res.Text, "Why cities should price roads")
	assert.Contains(t, res.Text, "travel times fall")
}

func TestExtract_OnlyContainerText(t *testing.T) {
	markup := `<html><body>
<div class="sidebar">Outside the container text that must not appear.</div>
<div class="post-content"><p>` + paragraph + `</p><p>` + paragraph + `</p></div>
<div class="comments">Reader comment that must not appear.</div>
</body></html>`

	res, err := Extract(markup)
	require.NoError(t, err)
	assert.NotContains(t, res.Text, "must not appear")
	assert.Equal(t, paragraph+"\n"+paragraph, res.Text)
}

func TestExtract_ShortContainerFallsBackToBody(t *testing.T) {
	markup := `<html><body><article>Too short.</article><div>` + paragraph + `</div></body></html>`

	res, err := Extract(markup)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Too short.")
	assert.Contains(t, res.Text, "travel times fall")
}

func TestExtract_CapsAtExactLength(t *testing.T) {
	body := strings.Repeat("a", MaxChars+1234)
	res, err := Extract("<html><body><p>" + body + "</p></body></html>")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(res.Text, TruncationMarker))
	assert.Equal(t, MaxChars, utf8.RuneCountInString(strings.TrimSuffix(res.Text, TruncationMarker)))
}

func TestExtract_DoesNotCapAtLimit(t *testing.T) {
	body := strings.Repeat("b", MaxChars)
	res, err := Extract("<html><body>" + body + "</body></html>")
	require.NoError(t, err)
	assert.Equal(t, body, res.Text)
}

func TestExtract_TooShort(t *testing.T) {
	_, err := Extract("<html><body><p>Nothing to see.</p></body></html>")
	assert.True(t, errors.Is(err, ErrExtractionFailed))

	res, err := Extract("<html><body><p>Nothing to see.</p></body></html>", WithMinLength(5))
	require.NoError(t, err)
	assert.Equal(t, "Nothing to see.", res.Text)
}

func TestExtract_DecodesEntitiesAndWhitespace(t *testing.T) {
	markup := "<html><body><p>Fish &amp; chips &mdash;\t\t tasty</p>\n\n\n\n<p>   second   line   </p>" +
		"<p>" + paragraph + "</p></body></html>"

	res, err := Extract(markup)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Text, "Fish & chips — tasty\n"), res.Text)
	assert.Contains(t, res.Text, "\nsecond line\n")
	assert.NotContains(t, res.Text, "\n\n\n")
}

func TestTitle_FallsBackToOpenGraph(t *testing.T) {
	markup := `<html><head><meta property="og:title" content=" Open Graph title "></head><body><p>` +
		paragraph + `</p></body></html>`

	res, err := Extract(markup)
	require.NoError(t, err)
	assert.Equal(t, "Open Graph title", res.Title)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  a \t b  ", "a b"},
		{"a\n\n\n\nb", "a\n\nb"},
		{"a  \n   \n   \n  b", "a\n\nb"},
		{"\r\na\r\nb\r\n", "a\nb"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Normalize(tc.in), "Normalize(%q)", tc.in)
	}
}

func TestExtractReadable_SelectorFallback(t *testing.T) {
	markup := `<html><head><title>Page</title></head><body><main><p>` + paragraph + `</p><p>` +
		paragraph + `</p></main></body></html>`

	res := ExtractReadable(markup, "https://example.com/a")
	assert.Equal(t, "Page", res.Title)
	assert.Contains(t, res.Text, "travel times fall")
}

func TestExtractReadable_DropsPageChrome(t *testing.T) {
	body := ""
	for i := range 6 {
		body += fmt.Sprintf(`<p>Point %d. When drivers pay for the road space they use, trips shift to quieter hours, `+
			`buses move faster, and the city collects revenue that can fund better transit for everyone.</p>`, i)
	}
	markup := `<html><head><title>Pricing roads</title></head><body>
<header><nav><a href="/">Home</a> <a href="/sub">Subscribe today</a></nav></header>
<aside class="sidebar"><h3>Trending elsewhere</h3><ul><li><a href="/x">Celebrity gossip roundup</a></li></ul></aside>
<article><h1>Pricing roads</h1>` + body + `</article>
<footer><p>Copyright notice and cookie settings</p></footer>
</body></html>`

	res := ExtractReadable(markup, "https://example.com/pricing")
	require.NotEmpty(t, res.Text)
	assert.Contains(t, res.Text, "Point 0. When drivers pay")
	assert.Contains(t, res.Text, "Point 5.")
	for _, noise := range []string{"Subscribe today", "Celebrity gossip", "Trending elsewhere", "Copyright notice"} {
		assert.NotContains(t, res.Text, noise)
	}
}

func TestExtractReadable_EmptyIsNotAnError(t *testing.T) {
	res := ExtractReadable("<html><body></body></html>", "")
	assert.Empty(t, res.Text)
}
