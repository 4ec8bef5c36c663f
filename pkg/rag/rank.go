package rag

import (
	"sort"
	"strings"
	"time"

	"troubleshoot-agent-be/pkg/store"
	"troubleshoot-agent-be/pkg/utils"
)

const (
	officialSourceBoost = 0.15
	freshnessBoost      = 0.10
	shortChunkPenalty   = 0.05

	freshnessWindow = 180 * 24 * time.Hour
	minChunkTokens  = 50
)

// Rerank adjusts raw similarity scores with domain heuristics and returns
// the documents ordered best-first. Scores stay clamped to [0, 1].
//
// Boosts: official Apple support sources rank above community content, and
// recently updated articles above stale ones. Very short chunks carry too
// little context to ground an answer, so they are pushed down.
func Rerank(documents []store.Document, now time.Time) []store.Document {
	ranked := make([]store.Document, len(documents))
	copy(ranked, documents)

	for i := range ranked {
		score := ranked[i].Score

		if isOfficialSource(ranked[i]) {
			score += officialSourceBoost
		}
		if updatedWithin(ranked[i], freshnessWindow, now) {
			score += freshnessBoost
		}
		if utils.ApproxTokens(ranked[i].Content) < minChunkTokens {
			score -= shortChunkPenalty
		}

		if score > 1 {
			score = 1
		}
		if score < 0 {
			score = 0
		}
		ranked[i].Score = score
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})

	return ranked
}

// FilterByThreshold drops documents whose adjusted score falls below the
// relevance cutoff.
func FilterByThreshold(documents []store.Document, threshold float32) []store.Document {
	kept := make([]store.Document, 0, len(documents))
	for _, doc := range documents {
		if doc.Score >= threshold {
			kept = append(kept, doc)
		}
	}
	return kept
}

func isOfficialSource(doc store.Document) bool {
	source, _ := doc.Metadata["source_url"].(string)
	return strings.Contains(source, "support.apple.com")
}

func updatedWithin(doc store.Document, window time.Duration, now time.Time) bool {
	switch v := doc.Metadata["updated"].(type) {
	case time.Time:
		return now.Sub(v) <= window
	case *time.Time:
		return v != nil && now.Sub(*v) <= window
	default:
		return false
	}
}
