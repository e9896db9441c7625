// Package ats estimates how well a CV matches a job posting the way simple
// applicant tracking systems do: keyword coverage first, then structure.
package ats

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"
)

var ErrEmptyInput = errors.New("cv and job description are required")

const (
	maxKeywords   = 25
	keywordWeight = 80
	sectionWeight = 12
	lengthWeight  = 8

	minWords   = 250
	idealWords = 450
	maxWords   = 1100
)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a about above after all also an and any are as at be been being
		but by can could do does for from has have having he her here his how i if in into is it its
		just may me more most must my no not of on or our out over own per she should so some such than
		that the their them then there these they this those through to too under up very was we were
		what when where which while who will with within would you your yours
		ability able experience work working team teams role job position candidate candidates company
		required requirements preferred plus strong excellent good great skills skill years year
		responsibilities including include etc new using use well across help join looking`) {
		stopWords[w] = struct{}{}
	}
}

var sections = map[string][]string{
	"experience": {"experience", "employment", "work history"},
	"education":  {"education", "degree", "university"},
	"skills":     {"skills", "technologies", "tech stack"},
	"summary":    {"summary", "profile", "objective"},
}

type Result struct {
	Score           int      `json:"score"`
	KeywordScore    int      `json:"keyword_score"`
	SectionScore    int      `json:"section_score"`
	LengthScore     int      `json:"length_score"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
	MissingSections []string `json:"missing_sections,omitempty"`
	WordCount       int      `json:"word_count"`
}

type keyword struct {
	term   string
	weight int
}

// Score rates cv against jobDescription on a 0-100 scale. Keywords are the
// most frequent non-stopword terms of the posting; each counts in proportion
// to how often the posting repeats it.
func Score(cv, jobDescription string) (*Result, error) {
	if strings.TrimSpace(cv) == "" || strings.TrimSpace(jobDescription) == "" {
		return nil, ErrEmptyInput
	}

	keywords := extractKeywords(jobDescription)
	cvTerms := termSet(cv)

	res := &Result{
		MatchedKeywords: []string{},
		MissingKeywords: []string{},
		WordCount:       len(tokenize(cv)),
	}

	var total, matched int
	for _, k := range keywords {
		total += k.weight
		if _, ok := cvTerms[k.term]; ok {
			matched += k.weight
			res.MatchedKeywords = append(res.MatchedKeywords, k.term)
		} else {
			res.MissingKeywords = append(res.MissingKeywords, k.term)
		}
	}
	if total > 0 {
		res.KeywordScore = int(math.Round(float64(matched) / float64(total) * keywordWeight))
	}

	lower := strings.ToLower(cv)
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	found := 0
	for _, name := range names {
		if containsAny(lower, sections[name]) {
			found++
		} else {
			res.MissingSections = append(res.MissingSections, name)
		}
	}
	res.SectionScore = int(math.Round(float64(found) / float64(len(sections)) * sectionWeight))

	res.LengthScore = lengthScore(res.WordCount)
	res.Score = res.KeywordScore + res.SectionScore + res.LengthScore
	if res.Score > 100 {
		res.Score = 100
	}
	return res, nil
}

func extractKeywords(text string) []keyword {
	counts := map[string]int{}
	for _, tok := range tokenize(text) {
		if _, stop := stopWords[tok]; stop || len([]rune(tok)) < 2 || isNumber(tok) {
			continue
		}
		counts[tok]++
	}

	out := make([]keyword, 0, len(counts))
	for term, n := range counts {
		out = append(out, keyword{term: term, weight: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].weight != out[j].weight {
			return out[i].weight > out[j].weight
		}
		return out[i].term < out[j].term
	})
	if len(out) > maxKeywords {
		out = out[:maxKeywords]
	}
	return out
}

func lengthScore(words int) int {
	switch {
	case words >= idealWords && words <= maxWords:
		return lengthWeight
	case words >= minWords && words < idealWords:
		return lengthWeight / 2
	case words > maxWords:
		return lengthWeight / 2
	}
	return 0
}

// tokenize lowercases and splits on anything that is not a letter, digit or
// one of + # . so terms like c++, c# and node.js survive.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func termSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, tok := range tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
