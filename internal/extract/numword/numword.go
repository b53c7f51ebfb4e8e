// Package numword resolves Indonesian spelled-out numbers. Indonesian
// numerals compose multiplicatively below a thousand ("lima puluh" = 50,
// "dua ratus" = 200) and additively across the magnitude words
// ribu/juta/miliar/triliun ("satu juta dua ratus ribu" = 1,200,000).
// Speech recognition emits these as plain whitespace-separated tokens, so
// everything here operates on token slices.
//
// All tables are built once and never mutated; every function is pure and
// safe for concurrent use.
package numword

import (
	"strconv"
	"strings"
)

// ones are the single-digit words. "se" is the clitic form of "satu" used
// in sebelas/seratus/seribu; it shows up as a bare token when recognizers
// split those words.
var ones = map[string]int64{
	"nol":      0,
	"satu":     1,
	"dua":      2,
	"tiga":     3,
	"empat":    4,
	"lima":     5,
	"enam":     6,
	"tujuh":    7,
	"delapan":  8,
	"sembilan": 9,
}

// lexical are single tokens that carry a full value on their own.
var lexical = map[string]int64{
	"sepuluh": 10,
	"sebelas": 11,
	"seratus": 100,
	"seribu":  1000,
}

// magnitudes multiply a preceding scalar phrase.
var magnitudes = map[string]int64{
	"ribu":    1_000,
	"juta":    1_000_000,
	"miliar":  1_000_000_000,
	"triliun": 1_000_000_000_000,
}

// unit words that combine with a preceding ones-word.
const (
	unitPuluh = "puluh" // ×10
	unitBelas = "belas" // +10
	unitRatus = "ratus" // ×100
)

// IsMagnitude reports whether tok is one of ribu/juta/miliar/triliun.
func IsMagnitude(tok string) bool {
	_, ok := magnitudes[tok]
	return ok
}

// MagnitudeValue returns the multiplier for a magnitude word.
func MagnitudeValue(tok string) (int64, bool) {
	v, ok := magnitudes[tok]
	return v, ok
}

// IsNumberWord reports whether tok can participate in a spelled-out number
// run (magnitude words excluded; those delimit runs).
func IsNumberWord(tok string) bool {
	if _, ok := ones[tok]; ok {
		return true
	}
	if _, ok := lexical[tok]; ok {
		return true
	}
	switch tok {
	case "se", unitPuluh, unitBelas, unitRatus:
		return true
	}
	return false
}

// IsDigits reports whether tok consists solely of ASCII digits.
func IsDigits(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return false
		}
	}
	return true
}

// Evaluate resolves a run of number tokens to a single scalar. Components
// are summed left to right as they are matched: "tiga ratus lima puluh" is
// 300 + 50 = 350, "dua puluh lima" is 20 + 5 = 25. Unrecognized tokens are
// skipped so the function stays total over arbitrary input.
func Evaluate(tokens []string) int64 {
	var total int64
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		next := ""
		if i+1 < len(tokens) {
			next = tokens[i+1]
		}

		if IsDigits(tok) {
			n, err := strconv.ParseInt(tok, 10, 64)
			if err == nil {
				if v, consumed := combineUnit(n, next); consumed {
					total += v
					i += 2
					continue
				}
				total += n
			}
			i++
			continue
		}

		if tok == "se" {
			// Split forms of sepuluh/sebelas/seratus/seribu.
			if v, consumed := combineUnit(1, next); consumed {
				total += v
				i += 2
				continue
			}
			if v, ok := magnitudes[next]; ok {
				total += v
				i += 2
				continue
			}
			i++
			continue
		}

		if v, ok := ones[tok]; ok {
			if combined, consumed := combineUnit(v, next); consumed {
				total += combined
				i += 2
				continue
			}
			total += v
			i++
			continue
		}

		if v, ok := lexical[tok]; ok {
			total += v
			i++
			continue
		}

		switch tok {
		case unitPuluh, unitBelas:
			// A dangling unit word still means ten.
			total += 10
		case unitRatus:
			total += 100
		}
		i++
	}
	return total
}

// combineUnit applies a unit word to the scalar n.
func combineUnit(n int64, unit string) (int64, bool) {
	switch unit {
	case unitPuluh:
		return n * 10, true
	case unitBelas:
		return n + 10, true
	case unitRatus:
		return n * 100, true
	}
	return 0, false
}

// Scan resolves the full word-number amount of a token stream.
//
// Magnitude words are located in left-to-right order and then processed
// right to left, so a low-magnitude phrase late in the sentence is resolved
// before a higher-magnitude phrase that spans over it; the backward walk
// for each magnitude stops at any other magnitude word, which keeps runs
// disjoint. Within a walk, tokens for which skip returns true (transaction
// type keywords) are stepped over and the first other unrecognized token
// ends the run. A magnitude with no word run falls back to a single digit
// token immediately before it ("1 juta"). When the stream holds no
// magnitude words at all, every number word in the stream forms one run
// evaluated as a bare compositional number ("lima ratus" = 500); bare
// digit tokens are left to the caller's digit extraction.
//
// The returned phrases are the consumed spans in reading order, for removal
// from the synthesized description. A zero amount yields no phrases.
func Scan(tokens []string, skip func(string) bool) (int64, []string) {
	var positions []int
	for i, tok := range tokens {
		if IsMagnitude(tok) {
			positions = append(positions, i)
		}
	}

	if len(positions) == 0 {
		// Word tokens only. Bare digits are the digit path's evidence;
		// admitting them here would let "tahun 2020 lima" resolve as 2025.
		var run []string
		for _, tok := range tokens {
			if skip != nil && skip(tok) {
				continue
			}
			if IsNumberWord(tok) {
				run = append(run, tok)
			}
		}
		if len(run) == 0 {
			return 0, nil
		}
		n := Evaluate(run)
		if n <= 0 {
			return 0, nil
		}
		return n, []string{strings.Join(run, " ")}
	}

	var total int64
	var phrases []string
	for k := len(positions) - 1; k >= 0; k-- {
		pos := positions[k]
		mult := magnitudes[tokens[pos]]

		var run []string
		for j := pos - 1; j >= 0; j-- {
			tok := tokens[j]
			if IsMagnitude(tok) {
				break
			}
			if skip != nil && skip(tok) {
				continue
			}
			if IsDigits(tok) || IsNumberWord(tok) {
				run = append([]string{tok}, run...)
				continue
			}
			break
		}

		if len(run) > 0 {
			if n := Evaluate(run); n > 0 {
				total += n * mult
				phrases = append(phrases, strings.Join(run, " ")+" "+tokens[pos])
			}
			continue
		}
		if pos > 0 && IsDigits(tokens[pos-1]) {
			if n, err := strconv.ParseInt(tokens[pos-1], 10, 64); err == nil {
				total += n * mult
				phrases = append(phrases, tokens[pos-1]+" "+tokens[pos])
			}
		}
	}

	// Phrases were collected right to left; restore reading order.
	for l, r := 0, len(phrases)-1; l < r; l, r = l+1, r-1 {
		phrases[l], phrases[r] = phrases[r], phrases[l]
	}
	return total, phrases
}
