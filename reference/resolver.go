package reference

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/energuide/core"
)

// DefaultFallbackAnchor replaces references when the previous question has
// no usable token.
const DefaultFallbackAnchor = "이 제도"

// Labels of the rewritten query.
const (
	PriorQuestionLabel = "이전 질문"
	PriorAnswerLabel   = "이전 답변"
	FollowUpLabel      = "후속 질문"
)

var (
	stems     = []string{"이", "그", "저"}
	referents = []string{"제도", "정책", "내용", "부분", "경우", "런", "것"}
	particles = []string{"은", "는", "이", "가", "을", "를", "의"}
)

// Resolution is the outcome of rewriting a follow-up question.
type Resolution struct {
	// Anchor is the keyword taken from the previous question.
	Anchor string
	// Replaced is the follow-up with every reference swapped for Anchor.
	Replaced string
	// Query combines the previous exchange with Replaced.
	Query string
}

// Resolver rewrites follow-up questions using the previous exchange.
type Resolver struct {
	fallbackAnchor string
	logger         *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFallbackAnchor sets the anchor used when the previous question yields
// no token.
func WithFallbackAnchor(anchor string) Option {
	return func(r *Resolver) {
		if anchor != "" {
			r.fallbackAnchor = anchor
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		fallbackAnchor: DefaultFallbackAnchor,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve rewrites utterance against the two most recent prior turns, which
// must be a user question followed by the assistant's answer. It returns
// false when no such exchange exists; callers then treat the utterance as a
// fresh question.
func (r *Resolver) Resolve(utterance string, prior []core.Turn) (Resolution, bool) {
	if len(prior) < 2 {
		return Resolution{}, false
	}
	question, answer := prior[len(prior)-2], prior[len(prior)-1]
	if question.Role != core.RoleUser || answer.Role != core.RoleAssistant {
		r.logger.Debug("previous exchange is not a question and answer", "question_role", question.Role, "answer_role", answer.Role)
		return Resolution{}, false
	}

	anchor := Anchor(question.Text)
	if anchor == "" {
		anchor = r.fallbackAnchor
	}
	replaced := Substitute(utterance, anchor)

	var b strings.Builder
	b.WriteString(PriorQuestionLabel + ": " + question.Text + "\n")
	b.WriteString(PriorAnswerLabel + ": " + answer.Text + "\n")
	b.WriteString(FollowUpLabel + ": " + replaced)

	return Resolution{Anchor: anchor, Replaced: replaced, Query: b.String()}, true
}

// Tokens splits text into maximal runs of letters and digits.
func Tokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
}

// Anchor returns the longest token of text, counted in characters. The
// first of equally long tokens wins. Returns "" when text has no token.
func Anchor(text string) string {
	var (
		best    string
		bestLen int
	)
	for _, tok := range Tokens(text) {
		if n := utf8.RuneCountInString(tok); n > bestLen {
			best, bestLen = tok, n
		}
	}
	return best
}

// Substitute replaces every demonstrative reference in utterance with anchor.
//
// A reference starts a token with 이, 그 or 저, optionally followed by a
// referent noun (제도, 정책, 내용, 부분, 경우, 런, 것; spaces allowed before
// the multi-character nouns) and a particle. A listed particle is replaced
// with the reference when a token boundary follows it; any other suffix after
// a noun stays attached to the anchor (그것에 becomes <anchor>에). A bare stem
// and 런 must end at a token boundary so words like 이용 or 그런데 are kept.
// Text without references is returned unchanged.
func Substitute(utterance, anchor string) string {
	var (
		b    strings.Builder
		prev rune
	)
	for i := 0; i < len(utterance); {
		if isBoundary(prev) {
			if n := matchReference(utterance[i:]); n > 0 {
				b.WriteString(anchor)
				i += n
				prev, _ = utf8.DecodeLastRuneInString(utterance[:i])
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(utterance[i:])
		b.WriteString(utterance[i : i+size])
		i += size
		prev = r
	}
	return b.String()
}

// matchReference returns the byte length of the longest reference at the
// start of s, or 0.
func matchReference(s string) int {
	stem := prefixOf(s, stems)
	if stem == "" {
		return 0
	}

	best := 0
	try := func(end int) {
		if end > best && isBoundary(firstRune(s[end:])) {
			best = end
		}
	}

	end := len(stem)
	try(end)
	if p := prefixOf(s[end:], particles); p != "" {
		try(end + len(p))
	}

	for _, skipSpaces := range []bool{false, true} {
		start := end
		if skipSpaces {
			rest := strings.TrimLeft(s[end:], " ")
			if len(rest) == len(s[end:]) {
				continue
			}
			start = len(s) - len(rest)
		}
		noun := prefixOf(s[start:], referents)
		if noun == "" || (skipSpaces && utf8.RuneCountInString(noun) < 2) {
			continue
		}
		afterNoun := start + len(noun)
		if noun == "런" {
			try(afterNoun)
		} else {
			best = max(best, afterNoun)
		}
		if p := prefixOf(s[afterNoun:], particles); p != "" {
			try(afterNoun + len(p))
		}
	}

	return best
}

func prefixOf(s string, candidates []string) string {
	for _, c := range candidates {
		if strings.HasPrefix(s, c) {
			return c
		}
	}
	return ""
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isBoundary treats the zero rune as the edge of the text.
func isBoundary(r rune) bool {
	return r == 0 || !isWordRune(r)
}

func firstRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
