package retrieval

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Markers the model sometimes echoes before a citation list of its own.
var referenceMarkers = []string{"📋 참고 문서:", "참고 문서:"}

var (
	excessNewlines   = regexp.MustCompile(`\n{3,}`)
	spaceBeforePunct = regexp.MustCompile(`\s+([.!?])`)
	boldMarkup       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicMarkup     = regexp.MustCompile(`\*(.*?)\*`)
	codeMarkup       = regexp.MustCompile("`(.*?)`")
)

// cleanPassage keeps the complete sentences of a passage. Sentences shorter
// than minLen characters or cut off with an ellipsis are dropped; the rest are
// rejoined with a period. Returns "" when nothing survives.
func cleanPassage(content string, minLen int) string {
	var kept []string
	for _, s := range splitSentences(strings.TrimSpace(content)) {
		if s.truncated || utf8.RuneCountInString(s.text) < minLen {
			continue
		}
		kept = append(kept, s.text)
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, ". ") + "."
}

type sentence struct {
	text      string
	truncated bool // ended in an ellipsis
}

// splitSentences splits at runs of '.', '!', '?' or '…'. A period only ends
// a sentence when followed by whitespace, another terminator or the end of
// the text, so decimals like 2.5kW stay intact. Terminators are not part of
// the returned text.
func splitSentences(text string) []sentence {
	var (
		out   []sentence
		start int
	)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isTerminator(r) || (r == '.' && !periodEnds(text[i+size:])) {
			i += size
			continue
		}

		end := i
		dots, ellipsis := 0, false
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if !isTerminator(r) {
				break
			}
			switch r {
			case '.':
				dots++
			case '…':
				ellipsis = true
			}
			i += size
		}

		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, sentence{text: s, truncated: ellipsis || dots >= 2})
		}
		start = i
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, sentence{text: s, truncated: endsWithEllipsis(s)})
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func periodEnds(rest string) bool {
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsSpace(r) || isTerminator(r)
}

func endsWithEllipsis(s string) bool {
	return strings.HasSuffix(s, "...") || strings.HasSuffix(s, "…")
}

// postProcess tidies a generated answer for display. The cut at an echoed
// citation list happens before the line filter because the marker line
// itself is short.
func postProcess(answer string, minLen int) string {
	for _, marker := range referenceMarkers {
		if idx := strings.Index(answer, marker); idx >= 0 {
			answer = answer[:idx]
		}
	}

	answer = strings.TrimSpace(answer)
	answer = excessNewlines.ReplaceAllString(answer, "\n\n")
	answer = spaceBeforePunct.ReplaceAllString(answer, "$1")
	answer = boldMarkup.ReplaceAllString(answer, "$1")
	answer = italicMarkup.ReplaceAllString(answer, "$1")
	answer = codeMarkup.ReplaceAllString(answer, "$1")

	lines := strings.Split(answer, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || endsWithEllipsis(line) || utf8.RuneCountInString(line) < minLen {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
