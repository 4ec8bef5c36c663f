package rag

import (
	"strings"
	"testing"
	"time"

	"troubleshoot-agent-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func longContent() string {
	return strings.Repeat("restart your iphone and check the battery health screen ", 10)
}

func TestRerank_OfficialSourceBoost(t *testing.T) {
	now := time.Now()
	docs := []store.Document{
		{ID: "community", Score: 0.80, Content: longContent(), Metadata: map[string]interface{}{
			"source_url": "https://discussions.apple.com/thread/1",
		}},
		{ID: "official", Score: 0.78, Content: longContent(), Metadata: map[string]interface{}{
			"source_url": "https://support.apple.com/en-us/HT201295",
		}},
	}

	ranked := Rerank(docs, now)

	assert.Equal(t, "official", ranked[0].ID)
	assert.InDelta(t, 0.93, float64(ranked[0].Score), 0.001)
	assert.InDelta(t, 0.80, float64(ranked[1].Score), 0.001)
}

func TestRerank_FreshnessBoost(t *testing.T) {
	now := time.Now()
	recent := now.Add(-30 * 24 * time.Hour)
	stale := now.Add(-400 * 24 * time.Hour)

	docs := []store.Document{
		{ID: "stale", Score: 0.70, Content: longContent(), Metadata: map[string]interface{}{"updated": stale}},
		{ID: "recent", Score: 0.70, Content: longContent(), Metadata: map[string]interface{}{"updated": recent}},
	}

	ranked := Rerank(docs, now)

	assert.Equal(t, "recent", ranked[0].ID)
	assert.InDelta(t, 0.80, float64(ranked[0].Score), 0.001)
	assert.InDelta(t, 0.70, float64(ranked[1].Score), 0.001)
}

func TestRerank_ShortChunkPenalty(t *testing.T) {
	docs := []store.Document{
		{ID: "short", Score: 0.75, Content: "Restart the phone.", Metadata: map[string]interface{}{}},
	}

	ranked := Rerank(docs, time.Now())

	assert.InDelta(t, 0.70, float64(ranked[0].Score), 0.001)
}

func TestRerank_ClampsToUnitInterval(t *testing.T) {
	now := time.Now()
	docs := []store.Document{
		{ID: "max", Score: 0.95, Content: longContent(), Metadata: map[string]interface{}{
			"source_url": "https://support.apple.com/x",
			"updated":    now,
		}},
	}

	ranked := Rerank(docs, now)

	assert.Equal(t, float32(1), ranked[0].Score)
}

func TestFilterByThreshold(t *testing.T) {
	docs := []store.Document{
		{ID: "keep", Score: 0.80},
		{ID: "drop", Score: 0.60},
	}

	kept := FilterByThreshold(docs, 0.75)

	assert.Len(t, kept, 1)
	assert.Equal(t, "keep", kept[0].ID)
}
