package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"resumebuilder/internal/types"
)

// Readability levels by Flesch Reading Ease band.
const (
	LevelVeryEasy      = "Very Easy"
	LevelEasy          = "Easy"
	LevelFairlyEasy    = "Fairly Easy"
	LevelStandard      = "Standard"
	LevelDifficult     = "Difficult"
	LevelVeryDifficult = "Very Difficult"
	LevelUnknown       = "Unknown"
)

var (
	sentenceSplitPattern = regexp.MustCompile(`[.!?]+(?:\s|$)|\n`)
	wordPattern          = regexp.MustCompile(`[\p{L}\p{N}']+`)
	vowelGroupPattern    = regexp.MustCompile(`[aeiouy]+`)
)

// Sentences splits text on terminal punctuation and line breaks, dropping
// pieces without words.
func Sentences(text string) []string {
	var sentences []string
	for _, piece := range sentenceSplitPattern.Split(text, -1) {
		piece = strings.TrimSpace(piece)
		if wordPattern.MatchString(piece) {
			sentences = append(sentences, piece)
		}
	}
	return sentences
}

// CountSyllables estimates syllables as vowel groups, ignoring a silent trailing e.
func CountSyllables(word string) int {
	w := strings.ToLower(word)
	count := len(vowelGroupPattern.FindAllString(w, -1))
	if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") && count > 1 {
		count--
	}
	return max(count, 1)
}

// AnalyzeReadability computes sentence statistics and the Flesch Reading Ease score.
func AnalyzeReadability(text string) (types.Readability, error) {
	words := wordPattern.FindAllString(text, -1)
	sentences := Sentences(text)
	if len(words) == 0 || len(sentences) == 0 {
		return types.Readability{Level: LevelUnknown}, errNoText
	}

	letters, syllables := 0, 0
	for _, w := range words {
		letters += utf8.RuneCountInString(w)
		syllables += CountSyllables(w)
	}

	asl := float64(len(words)) / float64(len(sentences))
	asw := float64(syllables) / float64(len(words))
	flesch := round2(206.835 - 1.015*asl - 84.6*asw)

	return types.Readability{
		SentenceCount:     len(sentences),
		WordCount:         len(words),
		AvgSentenceLength: round2(asl),
		AvgWordLength:     round2(float64(letters) / float64(len(words))),
		FleschScore:       flesch,
		Level:             ReadabilityLevel(flesch),
	}, nil
}

// ReadabilityLevel maps a Flesch score onto its qualitative band.
func ReadabilityLevel(score float64) string {
	switch {
	case score >= 90:
		return LevelVeryEasy
	case score >= 80:
		return LevelEasy
	case score >= 70:
		return LevelFairlyEasy
	case score >= 60:
		return LevelStandard
	case score >= 30:
		return LevelDifficult
	default:
		return LevelVeryDifficult
	}
}
