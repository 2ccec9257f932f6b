// file: internal/matcher/fuzzy.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package matcher

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultThreshold is the minimum edit-distance similarity for the fallback tier.
const DefaultThreshold = 0.3

// GeneralContractorKeyword marks general-contractor qualifications. A query
// containing it only matches names that contain the whole query.
const GeneralContractorKeyword = "总包"

// Tier scores
const (
	exactScore       = 1.0
	prefixScore      = 0.9
	keywordScore     = 0.8
	lengthWeight     = 0.6
	continuityWeight = 0.4
)

// FuzzyResult holds a scored search result.
type FuzzyResult struct {
	Index int     // index into the original slice
	Name  string  // candidate as given
	Score float64 // 0-1, higher is better
}

// LevenshteinDistance computes the edit distance between two strings, rune by rune.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	dp := make([][]int, la+1)
	for i := range dp {
		dp[i] = make([]int, lb+1)
		dp[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		dp[0][j] = j
	}
	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			dp[i][j] = min(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)
		}
	}
	return dp[la][lb]
}

// Similarity converts edit distance into a 0-1 score. Two empty strings are identical.
func Similarity(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}

// ScoreMatch scores how well query matches name. The second return value is
// false when the name should not appear in results at all.
func ScoreMatch(query, name string, threshold float64) (float64, bool) {
	if query == name {
		return exactScore, true
	}
	if strings.HasPrefix(name, query) {
		return prefixScore, true
	}
	if strings.Contains(query, GeneralContractorKeyword) {
		if strings.Contains(name, query) {
			return keywordScore, true
		}
		return 0, false
	}
	if fuzzy.Match(query, name) {
		return subsequenceScore(query, name), true
	}
	sim := Similarity(query, name)
	if sim >= threshold {
		return sim, true
	}
	return 0, false
}

// subsequenceScore rewards short names and tightly packed matches. query must
// be an ordered subsequence of name.
func subsequenceScore(query, name string) float64 {
	positions := matchPositions([]rune(query), []rune(name))
	lengthScore := float64(utf8.RuneCountInString(query)) / float64(utf8.RuneCountInString(name))

	avgGap := 0.0
	if len(positions) > 1 {
		gaps := 0
		for i := 1; i < len(positions); i++ {
			gaps += positions[i] - positions[i-1] - 1
		}
		avgGap = float64(gaps) / float64(len(positions)-1)
	}
	continuityScore := 1 / (1 + avgGap)

	return lengthWeight*lengthScore + continuityWeight*continuityScore
}

// matchPositions returns the leftmost position of each query rune in name,
// each search starting after the previous hit.
func matchPositions(query, name []rune) []int {
	positions := make([]int, 0, len(query))
	next := 0
	for _, r := range query {
		found := -1
		for i := next; i < len(name); i++ {
			if name[i] == r {
				found = i
				break
			}
		}
		if found < 0 {
			return positions
		}
		positions = append(positions, found)
		next = found + 1
	}
	return positions
}

// RankResults scores each candidate against the query and returns the accepted
// ones sorted by score descending. Equal scores keep candidate order.
func RankResults(query string, candidates []string, threshold float64) []FuzzyResult {
	results := make([]FuzzyResult, 0)
	for i, c := range candidates {
		if s, ok := ScoreMatch(query, c, threshold); ok {
			results = append(results, FuzzyResult{Index: i, Name: c, Score: s})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Rank returns the names matching query, best first. An empty query returns
// every name in its original order.
func Rank(query string, names []string, threshold float64) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]string, len(names))
		copy(out, names)
		return out
	}
	results := RankResults(query, names, threshold)
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name
	}
	return out
}

// BestMatch returns the top-ranked name for query.
func BestMatch(query string, names []string, threshold float64) (string, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false
	}
	results := RankResults(query, names, threshold)
	if len(results) == 0 {
		return "", false
	}
	return results[0].Name, true
}
