package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lumen-atj/lumen/backend/pkg/ai"
	"github.com/lumen-atj/lumen/backend/pkg/extract"
	"github.com/lumen-atj/lumen/backend/pkg/graph"
	"github.com/lumen-atj/lumen/backend/pkg/logger"
)

// OversizePolicy decides what happens to text longer than Config.MaxChars.
type OversizePolicy string

const (
	OversizeReject   OversizePolicy = "reject"
	OversizeTruncate OversizePolicy = "truncate"
)

const (
	DefaultMinChars = 100
	DefaultMaxChars = 50000
	DefaultTimeout  = 90 * time.Second

	quarantineTimeout = 10 * time.Second
)

type Config struct {
	MinChars int
	MaxChars int
	Oversize OversizePolicy
	// Timeout bounds the generator call.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MinChars: DefaultMinChars,
		MaxChars: DefaultMaxChars,
		Oversize: OversizeReject,
		Timeout:  DefaultTimeout,
	}
}

// ParseOversizePolicy accepts "reject" and "truncate", case-insensitive.
func ParseOversizePolicy(s string) (OversizePolicy, error) {
	switch p := OversizePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case OversizeReject, OversizeTruncate:
		return p, nil
	case "":
		return OversizeReject, nil
	default:
		return "", fmt.Errorf("unknown oversize policy %q", s)
	}
}

// Page is a document captured in a browser.
type Page struct {
	HTML  string
	URL   string
	Title string
}

// Analyzer turns article text into a validated argument graph with a
// single generator call.
type Analyzer struct {
	gen        ai.Generator
	cfg        Config
	quarantine Quarantine
}

type Option func(*Analyzer)

// WithQuarantine keeps generator output that failed parsing or validation.
func WithQuarantine(q Quarantine) Option {
	return func(a *Analyzer) {
		a.quarantine = q
	}
}

// NewAnalyzer creates an Analyzer. Zero values in cfg take their defaults.
func NewAnalyzer(gen ai.Generator, cfg Config, opts ...Option) *Analyzer {
	def := DefaultConfig()
	if cfg.MinChars <= 0 {
		cfg.MinChars = def.MinChars
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = def.MaxChars
	}
	if cfg.Oversize == "" {
		cfg.Oversize = def.Oversize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	a := &Analyzer{
		gen:        gen,
		cfg:        cfg,
		quarantine: NoopQuarantine{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// Ready reports ErrMissingConfiguration when no generator is configured.
func (a *Analyzer) Ready() error {
	if a.gen == nil {
		return fmt.Errorf("%w: no generator configured", ErrMissingConfiguration)
	}
	return nil
}

// Usage returns the generator's accumulated token usage. ok is false when
// the generator does not record metrics.
func (a *Analyzer) Usage() (m ai.ModelMetrics, ok bool) {
	r, ok := a.gen.(ai.MetricsReporter)
	if !ok {
		return ai.ModelMetrics{}, false
	}
	return r.GetMetrics(), true
}

// Analyze validates text against the input policy and returns its argument
// graph. It never returns a partially valid graph.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*graph.AnalysisGraph, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalidInput("text is required")
	}

	n := utf8.RuneCountInString(text)
	if n < a.cfg.MinChars {
		return nil, invalidInput(fmt.Sprintf("text is too short: at least %d characters are required", a.cfg.MinChars))
	}
	if n > a.cfg.MaxChars {
		if a.cfg.Oversize != OversizeTruncate {
			return nil, invalidInput(fmt.Sprintf("text is too long: at most %d characters are allowed", a.cfg.MaxChars))
		}
		logger.Debug("[Analyze] Truncating oversized text", "chars", n, "max", a.cfg.MaxChars)
		text = truncateRunes(text, a.cfg.MaxChars)
	}

	return a.run(ctx, text)
}

// AnalyzePage extracts the readable text of p and analyzes it. Any
// non-empty text is accepted; text over the maximum is truncated.
func (a *Analyzer) AnalyzePage(ctx context.Context, p Page) (*graph.AnalysisGraph, error) {
	res := extract.ExtractReadable(p.HTML, p.URL)
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return nil, extract.ErrExtractionFailed
	}
	if utf8.RuneCountInString(text) > a.cfg.MaxChars {
		text = truncateRunes(text, a.cfg.MaxChars)
	}

	title := p.Title
	if title == "" {
		title = res.Title
	}
	logger.Debug("[Analyze] Page extracted", "url", p.URL, "title", title, "chars", utf8.RuneCountInString(text))

	return a.run(ctx, text)
}

func (a *Analyzer) run(ctx context.Context, text string) (*graph.AnalysisGraph, error) {
	if err := a.Ready(); err != nil {
		return nil, err
	}

	clean := Sanitize(text)
	bounds := graph.BuildConstraints(utf8.RuneCountInString(clean))
	prompt := BuildPrompt(bounds, clean)

	log := logger.With("adapter", a.gen.Name(), "tier", bounds.Tier, "chars", bounds.CharCount)
	log.Debug("[Analyze] Requesting analysis")

	genCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := a.gen.GenerateCompletion(genCtx, prompt)
	if err != nil {
		err = ai.ClassifyError(genCtx, err)
		log.Warn("[Analyze] Generation failed", "err", err, "duration", time.Since(start))
		return nil, err
	}

	g, err := graph.Parse(raw)
	if err == nil {
		err = graph.Validate(g, bounds)
	}
	if err != nil {
		log.Warn("[Analyze] Rejected generator output", "err", err)
		a.reject(ctx, raw, err, bounds)
		return nil, err
	}

	log.Info("[Analyze] Analysis complete", "nodes", g.NodeCount(), "phases", len(g.Phases), "duration", time.Since(start))
	return g, nil
}

func (a *Analyzer) reject(ctx context.Context, raw string, cause error, b graph.Bounds) {
	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), quarantineTimeout)
	defer cancel()

	err := a.quarantine.Store(qctx, Rejected{
		Raw:       raw,
		Reason:    cause.Error(),
		Adapter:   a.gen.Name(),
		Tier:      string(b.Tier),
		CharCount: b.CharCount,
		At:        time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("[Analyze] Failed to quarantine output", "err", err)
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
