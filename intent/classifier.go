package intent

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	defaultCompositePredictionCeiling = 2.0
	defaultComprehensiveThreshold     = 1.0
	compositeConfidence               = 0.9
	wholeTokenBonus                   = 0.5
)

// Classifier labels user input with an intent.
type Classifier interface {
	// Classify returns the intent of text.
	Classify(text string) Intent
	// ScoreConfidence returns the intent of text and a confidence in [0,1].
	// A confidence of 0 means no keyword matched and the intent is the default.
	ScoreConfidence(text string) (Intent, float64)
}

// Scores holds the accumulated keyword score per intent. Intents that did
// not match are absent.
type Scores map[Intent]float64

// Total returns the sum of all scores.
func (s Scores) Total() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// Best returns the highest scoring intent, breaking ties by Priority.
func (s Scores) Best() (Intent, float64) {
	best, bestScore := PolicyInfo, 0.0
	for _, i := range Priority {
		if v := s[i]; v > bestScore {
			best, bestScore = i, v
		}
	}
	return best, bestScore
}

// KeywordClassifier scores input against weighted keyword sets.
// It is safe for concurrent use once constructed.
type KeywordClassifier struct {
	rules                      Rules
	keywords                   map[Intent][]keyword
	compositePredictionCeiling float64
	comprehensiveThreshold     float64
	logger                     *slog.Logger
}

var _ Classifier = (*KeywordClassifier)(nil)

// Option configures a KeywordClassifier.
type Option func(*KeywordClassifier) error

// WithRules replaces the keyword rules entirely.
func WithRules(rules Rules) Option {
	return func(c *KeywordClassifier) error {
		c.rules = rules
		return nil
	}
}

// WithExtraRules merges additional keywords and weight overrides into the
// current rules.
func WithExtraRules(extra Rules) Option {
	return func(c *KeywordClassifier) error {
		c.rules = c.rules.Merge(extra)
		return nil
	}
}

// WithCompositePredictionCeiling sets the largest prediction score that still
// lets a policy+prediction input be treated as comprehensive.
// Default is 2.
func WithCompositePredictionCeiling(ceiling float64) Option {
	return func(c *KeywordClassifier) error {
		if ceiling < 0 {
			return ErrInvalidThreshold
		}
		c.compositePredictionCeiling = ceiling
		return nil
	}
}

// WithComprehensiveThreshold sets the comprehensive score above which the
// input is always treated as comprehensive.
// Default is 1.
func WithComprehensiveThreshold(threshold float64) Option {
	return func(c *KeywordClassifier) error {
		if threshold < 0 {
			return ErrInvalidThreshold
		}
		c.comprehensiveThreshold = threshold
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *KeywordClassifier) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewKeywordClassifier creates a classifier with DefaultRules unless
// overridden by options.
func NewKeywordClassifier(opts ...Option) (*KeywordClassifier, error) {
	c := &KeywordClassifier{
		rules:                      DefaultRules(),
		compositePredictionCeiling: defaultCompositePredictionCeiling,
		comprehensiveThreshold:     defaultComprehensiveThreshold,
		logger:                     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	keywords, err := c.rules.compile()
	if err != nil {
		return nil, err
	}
	c.keywords = keywords

	return c, nil
}

// Classify returns the intent of text.
func (c *KeywordClassifier) Classify(text string) Intent {
	i, _ := c.ScoreConfidence(text)
	return i
}

// ScoreConfidence returns the intent of text with its confidence.
//
// Policy together with a weak prediction score, or a comprehensive score
// above the threshold, yields Comprehensive at 0.9. Otherwise the winner's
// share of the total score is the confidence. No matches yield PolicyInfo at 0.
func (c *KeywordClassifier) ScoreConfidence(text string) (Intent, float64) {
	scores := c.Scores(text)
	if len(scores) == 0 {
		return PolicyInfo, 0
	}

	if c.isComposite(scores) {
		c.logger.Debug("composite intent", "scores", scores)
		return Comprehensive, compositeConfidence
	}

	best, bestScore := scores.Best()
	return best, bestScore / scores.Total()
}

// Scores returns the per-intent keyword scores of text.
//
// Each keyword contained in the lowercased input adds its weight. A keyword
// that also occurs as a whole token, with no letter or digit directly on
// either side, adds half its weight again.
func (c *KeywordClassifier) Scores(text string) Scores {
	scores := make(Scores)
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return scores
	}

	for i, keywords := range c.keywords {
		var score float64
		for _, k := range keywords {
			if !strings.Contains(lowered, k.text) {
				continue
			}
			score += k.weight
			if containsWholeToken(lowered, k.text) {
				score += k.weight * wholeTokenBonus
			}
		}
		if score > 0 {
			scores[i] = score
		}
	}
	return scores
}

func (c *KeywordClassifier) isComposite(scores Scores) bool {
	policy, prediction := scores[PolicyInfo], scores[Prediction]
	if policy > 0 && prediction > 0 && prediction <= c.compositePredictionCeiling {
		return true
	}
	return scores[Comprehensive] > c.comprehensiveThreshold
}

// containsWholeToken reports whether needle occurs in s bounded on both
// sides by the string edge or a rune that is neither a letter nor a digit.
func containsWholeToken(s, needle string) bool {
	for offset := 0; offset <= len(s)-len(needle); {
		idx := strings.Index(s[offset:], needle)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(needle)
		if isBoundary(lastRune(s[:start])) && isBoundary(firstRune(s[end:])) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isBoundary(r rune) bool {
	return r == 0 || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

func firstRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
