// Package signals holds the pure heuristic probes the classifier combines.
// Every function is deterministic and side-effect-free; unless noted, inputs
// are expected to be normalized already (see textnorm.Normalize).
package signals

import (
	"strings"
	"unicode"

	"github.com/neolimp/leadfilter/internal/textnorm"
)

const (
	gibberishMinLen   = 8
	vowelFreeMinLen   = 12
	consonantRunLen   = 7
	repeatRunLen      = 6
	spaceRatioFloor   = 0.03
	MinPhoneDigits    = 8
	botTemplateMinLen = 15
)

// IsGibberish flags keyboard-mashing and encoded junk. Real sentences have
// regular word breaks and vowel density; this does not.
func IsGibberish(t string) bool {
	total, spaces := 0, 0
	for _, r := range t {
		total++
		if unicode.IsSpace(r) {
			spaces++
		}
	}
	if total < gibberishMinLen {
		return true
	}

	spaceRatio := float64(spaces) / float64(total)
	if spaceRatio < spaceRatioFloor && (hasConsonantRun(t, consonantRunLen) || hasRepeatRun(t, repeatRunLen)) {
		return true
	}
	if total >= vowelFreeMinLen && countVowels(t) == 0 {
		return true
	}
	return false
}

func isConsonant(r rune) bool {
	return r >= 'a' && r <= 'z' && !strings.ContainsRune("aeiou", r)
}

func countVowels(t string) int {
	n := 0
	for _, r := range t {
		if strings.ContainsRune("aeiou", r) {
			n++
		}
	}
	return n
}

// hasConsonantRun reports a run of at least n consecutive consonant letters.
func hasConsonantRun(t string, n int) bool {
	run := 0
	for _, r := range t {
		if isConsonant(r) {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// hasRepeatRun reports any character repeated at least n times in a row.
// Go's RE2 has no backreferences, so this replaces the original's (.)\1{5,}.
func hasRepeatRun(t string, n int) bool {
	var prev rune
	run := 0
	for _, r := range t {
		if r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// ValidEmailShape is a cheap structural gate, not RFC validation: exactly one
// "@" with a dot somewhere after it.
func ValidEmailShape(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// PlausiblePhone requires a minimum digit count after stripping formatting.
func PlausiblePhone(phone string) bool {
	return textnorm.DigitCount(phone) >= MinPhoneDigits
}

// countHits returns the number of distinct terms contained in t.
func countHits(t string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(t, term) {
			n++
		}
	}
	return n
}

// CommercialHits counts distinct commercial-intent terms in t.
func CommercialHits(t string) int { return countHits(t, commercialTerms) }

// DetailHits counts distinct operational-detail terms in t.
func DetailHits(t string) int { return countHits(t, detailTerms) }

// SpamHits counts distinct spam/promotion terms in t.
func SpamHits(t string) int { return countHits(t, spamTerms) }

// JobIntent reports whether t reads as a job-seeker message: a job keyword, an
// anchored job phrase, or a CV mentioned together with a file format.
func JobIntent(t string) bool {
	if countHits(t, jobTerms) > 0 {
		return true
	}
	if cvFilePattern.MatchString(t) {
		return true
	}
	for _, p := range jobPhrasePatterns {
		if p.MatchString(t) {
			return true
		}
	}
	return false
}

// URLSignal describes link content found in raw (non-normalized) text.
type URLSignal struct {
	Count        int
	HasShortener bool
}

// DetectURLs scans raw text for URL prefixes and known link shorteners. Raw
// text is used on purpose: normalization can mangle punctuation around links.
func DetectURLs(raw string) URLSignal {
	lower := strings.ToLower(raw)
	var sig URLSignal
	for _, p := range urlPrefixes {
		sig.Count += strings.Count(lower, p)
	}
	for _, d := range shortenerDomains {
		if strings.Contains(lower, d) {
			sig.HasShortener = true
			break
		}
	}
	return sig
}

// HasURL reports any link signal at all.
func (s URLSignal) HasURL() bool { return s.Count > 0 || s.HasShortener }

// LooksLikeBotTemplate flags throwaway filler: very short messages, literal
// test strings, keyboard rows, and the same word repeated over and over.
func LooksLikeBotTemplate(t string) bool {
	if len(t) < botTemplateMinLen {
		return true
	}
	for _, p := range fillerPatterns {
		if p.MatchString(t) {
			return true
		}
	}
	if hasRepeatRun(t, 5) {
		return true
	}
	return isRepeatedWord(t)
}

// isRepeatedWord reports whether t is one word repeated three or more times
// ("hola hola hola hola").
func isRepeatedWord(t string) bool {
	fields := strings.FieldsFunc(t, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?' || r == '\n' || r == '\t'
	})
	if len(fields) < 3 {
		return false
	}
	first := fields[0]
	for _, f := range fields[1:] {
		if f != first {
			return false
		}
	}
	return true
}

// PlausibleName accepts names long enough to be real and not obvious filler.
func PlausibleName(name string) bool {
	if len(name) < 4 {
		return false
	}
	for _, p := range fillerPatterns {
		if p.MatchString(name) {
			return false
		}
	}
	return true
}
