package tokenize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fragment is a contiguous piece of a text produced by Split.
type Fragment struct {
	Text   string // exact text, including whitespace and punctuation
	Offset int    // byte offset into the source text
	Word   bool   // true when the fragment is a run of word characters
}

// IsWordRune reports whether r belongs inside a word for boundary purposes.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Split breaks text on word boundaries. Word runs and non-word runs alternate,
// so concatenating every Fragment.Text yields text again.
func Split(text string) []Fragment {
	if text == "" {
		return nil
	}
	var out []Fragment
	start := 0
	first, _ := utf8.DecodeRuneInString(text)
	inWord := IsWordRune(first)

	for i, r := range text {
		w := IsWordRune(r)
		if w == inWord {
			continue
		}
		out = append(out, Fragment{Text: text[start:i], Offset: start, Word: inWord})
		start = i
		inWord = w
	}
	out = append(out, Fragment{Text: text[start:], Offset: start, Word: inWord})
	return out
}

// Join reassembles fragments.
func Join(frags []Fragment) string {
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.Text)
	}
	return b.String()
}

// Words returns only the word fragments of text, in order.
func Words(text string) []string {
	var out []string
	for _, f := range Split(text) {
		if f.Word {
			out = append(out, f.Text)
		}
	}
	return out
}

// ContainsWord reports whether word occurs in text as a whole word,
// compared case-insensitively.
func ContainsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for _, w := range Words(text) {
		if strings.EqualFold(w, word) {
			return true
		}
	}
	return false
}

// Sentences splits text on runs of '.', '!' and '?'. Sentences are trimmed and
// empty ones dropped.
func Sentences(text string) []string {
	var out []string
	for _, s := range reSentenceEnd.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

var (
	reSentenceEnd = regexp.MustCompile(`[.!?]+`)

	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses (<rp>...</rp>)
// from HTML content. Pages that already carry pinyin or furigana in ruby markup
// would otherwise feed the reading into the text walk next to the base text.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}
