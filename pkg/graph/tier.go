package graph

// Tier selects one of the two bound sets a graph is generated and validated
// against.
type Tier string

const (
	TierShort Tier = "short"
	TierLong  Tier = "long"
)

// LongTierThreshold is the character count above which an article uses the
// long tier. An article of exactly this length is still short.
const LongTierThreshold = 5000

// Bounds are the structural limits for one tier. The same value is rendered
// into the generation prompt and enforced by Validate.
type Bounds struct {
	Tier      Tier
	CharCount int

	MinNodes  int
	MaxNodes  int
	MinLevel1 int
	MaxLevel1 int
	MinLevel2 int
	MinPhases int
	MaxPhases int
}

var (
	shortBounds = Bounds{
		Tier:      TierShort,
		MinNodes:  6,
		MaxNodes:  15,
		MinLevel1: 3,
		MaxLevel1: 5,
		MinLevel2: 3,
		MinPhases: 2,
		MaxPhases: 4,
	}
	longBounds = Bounds{
		Tier:      TierLong,
		MinNodes:  15,
		MaxNodes:  25,
		MinLevel1: 5,
		MaxLevel1: 8,
		MinLevel2: 8,
		MinPhases: 3,
		MaxPhases: 6,
	}
)

// BuildConstraints returns the bounds for an article of charCount characters.
// There are exactly two bins; nothing is interpolated between them.
func BuildConstraints(charCount int) Bounds {
	b := shortBounds
	if charCount > LongTierThreshold {
		b = longBounds
	}
	b.CharCount = charCount
	return b
}

// KiloChars is the article length in thousands of characters, rounded, as
// quoted to the generator.
func (b Bounds) KiloChars() int {
	return (b.CharCount + 500) / 1000
}
