package heuristics

import (
	"regexp"
	"strings"
	"unicode"
)

var sentencePattern = regexp.MustCompile(`\b[^.!?]+[.!?]*`)

// FleschReadingEase scores text readability. Higher is easier: 90+ is very easy,
// below 30 is very difficult. Text without words scores the formula's maximum.
func FleschReadingEase(text string) float64 {
	words := lexicon(text)
	if len(words) == 0 {
		return 206.835
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(countSentences(text))
	syllablesPerWord := float64(syllables) / float64(len(words))
	return 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
}

// lexicon splits text into words with punctuation removed.
func lexicon(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, unicode.IsPunct)
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// countSentences counts sentences of three or more words, with a minimum of one.
// Fragments such as "e.g." or list labels do not count as sentences.
func countSentences(text string) int {
	n := 0
	for _, s := range sentencePattern.FindAllString(text, -1) {
		if len(strings.Fields(s)) > 2 {
			n++
		}
	}
	return max(n, 1)
}

// countSyllables estimates English syllables by counting vowel groups.
func countSyllables(word string) int {
	w := strings.ToLower(word)

	count := 0
	prevVowel := false
	letters := 0
	for _, r := range w {
		if !unicode.IsLetter(r) {
			prevVowel = false
			continue
		}
		letters++
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}

	// Silent trailing "e" ("make"), but not "-le" ("table").
	if count > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		count--
	}
	if count == 0 && letters > 0 {
		count = 1
	}
	return count
}
