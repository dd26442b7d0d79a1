package tokenize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitReconstructsText(t *testing.T) {
	inputs := []string{
		"",
		"house",
		"The house, the HOUSE!",
		"  leading and trailing  ",
		"café au lait — 中文 mixed_with snake_case 42x",
		"...",
	}
	for _, in := range inputs {
		frags := Split(in)
		assert.Equal(t, in, Join(frags), "input %q", in)
	}
}

func TestSplitAlternatesWordAndNonWord(t *testing.T) {
	frags := Split("Hi, you there.")
	var got []string
	for _, f := range frags {
		got = append(got, f.Text)
	}
	assert.Equal(t, []string{"Hi", ", ", "you", " ", "there", "."}, got)

	for i := 1; i < len(frags); i++ {
		assert.NotEqual(t, frags[i-1].Word, frags[i].Word)
	}
	assert.True(t, frags[0].Word)
	assert.Equal(t, 4, frags[2].Offset)
}

func TestContainsWord(t *testing.T) {
	assert.True(t, ContainsWord("We eat here.", "EAT"))
	assert.False(t, ContainsWord("Nobody is eating.", "eat"))
	assert.False(t, ContainsWord("anything", ""))
}

func TestSentences(t *testing.T) {
	got := Sentences("One. Two!! Three?  ... Four")
	assert.Equal(t, []string{"One", "Two", "Three", "Four"}, got)
	assert.Empty(t, Sentences(" ... !? "))
}

func TestSanitizeRuby(t *testing.T) {
	in := []byte(`<ruby>漢<rp>(</rp><rt>hàn</rt><rp>)</rp></ruby> and <RT class="x">zì</RT>`)
	out := string(SanitizeRuby(in))
	require.NotContains(t, out, "hàn")
	require.NotContains(t, strings.ToLower(out), "<rt")
	assert.Contains(t, out, "<ruby>漢</ruby>")
}
