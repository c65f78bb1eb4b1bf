package metadata

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"shelflog/models"
)

var firstNumberRe = regexp.MustCompile(`\d+`)

// sequelTokens are the literal substrings that mark a title as a sequel.
var sequelTokens = []string{"2", "3", "4", "5", "ii", "iii", "iv", "v"}

// sequelKeywords are subtitle words sequels commonly use instead of a number,
// e.g. "Doctor Strange in the Multiverse of Madness" for "Doctor Strange 2".
var sequelKeywords = []string{"multiverse", "madness", "sequel", "returns", "reborn", "awakening"}

// bestAVMatch returns the highest-scoring candidate, first-seen winning ties.
// Returns nil when the candidate list is empty.
func bestAVMatch(query, kind string, candidates []models.SearchCandidate) *models.SearchCandidate {
	if len(candidates) == 0 {
		return nil
	}

	best := 0
	bestScore := scoreAVCandidate(query, kind, candidates[0])
	for i := 1; i < len(candidates); i++ {
		if score := scoreAVCandidate(query, kind, candidates[i]); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return &candidates[best]
}

func scoreAVCandidate(query, kind string, cand models.SearchCandidate) int {
	q := strings.ToLower(strings.TrimSpace(query))
	title := strings.ToLower(strings.TrimSpace(cand.Title))

	score := 0

	if kind != "" && cand.Kind == kind {
		score += 100
	}
	if title == q {
		score += 1000
	}

	score += wordOverlapScore(q, title)

	// Same leading number in both, e.g. "Iron Man 2" vs "Iron Man 2".
	qNum := firstNumberRe.FindString(q)
	if qNum != "" && qNum == firstNumberRe.FindString(title) {
		score += 200
	}

	if containsAny(q, sequelTokens) && containsAny(title, sequelTokens) {
		score += 150
	}

	if strings.Contains(q, "2") || strings.Contains(q, "ii") {
		for _, kw := range sequelKeywords {
			if strings.Contains(title, kw) {
				score += 100
			}
		}
	}

	if year, err := strconv.Atoi(strings.TrimSpace(cand.Year)); err == nil {
		if now := time.Now().Year(); year >= now-20 && year <= now {
			score += 10
		}
	}

	return score
}

// wordOverlapScore awards 50 per query word that is a substring of some
// candidate word, or vice versa.
func wordOverlapScore(query, title string) int {
	titleWords := strings.Fields(title)
	score := 0
	for _, qw := range strings.Fields(query) {
		for _, tw := range titleWords {
			if strings.Contains(tw, qw) || strings.Contains(qw, tw) {
				score += 50
				break
			}
		}
	}
	return score
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

// bestBookMatch returns the index of the highest-scoring volume, or -1 when
// nothing scores above zero. First-seen wins ties.
func bestBookMatch(query, year string, volumes []bookVolume) int {
	best := -1
	bestScore := 0
	for i, vol := range volumes {
		if score := scoreBookCandidate(query, year, vol.VolumeInfo); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

func scoreBookCandidate(query, year string, info bookVolumeInfo) int {
	q := strings.ToLower(strings.TrimSpace(query))
	title := strings.ToLower(strings.TrimSpace(info.Title))

	score := 0

	if title == q {
		score += 1000
	}
	score += wordOverlapScore(q, title)

	if year != "" && strings.Contains(info.PublishedDate, year) {
		score += 200
	}
	if info.ImageLinks != nil {
		score += 20
	}
	if info.AverageRating != nil {
		score += 10
	}
	if info.Description != "" {
		score += 10
	}

	return score
}
