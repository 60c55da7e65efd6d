package analysis

import "regexp"

const removed = "[REMOVED]"

var (
	roleTags = regexp.MustCompile(`(?i)</?(?:system|user|assistant)>`)

	injections = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bignore\s+(?:all\s+)?previous\s+instructions?\b`),
		regexp.MustCompile(`(?i)\byou\s+are\s+now\b`),
		regexp.MustCompile(`(?i)\bact\s+as\b`),
		regexp.MustCompile(`(?i)\bforget\s+(?:all\s+)?(?:your\s+)?instructions?\b`),
		regexp.MustCompile(`(?i)\bsystem\s*:\s*`),
		regexp.MustCompile(`(?i)\bprompt\s*:\s*`),
	}
)

// Sanitize strips chat role tags and replaces phrases commonly used to
// steer a model away from its instructions with a marker.
func Sanitize(text string) string {
	text = roleTags.ReplaceAllString(text, "")
	for _, re := range injections {
		text = re.ReplaceAllString(text, removed)
	}
	return text
}
