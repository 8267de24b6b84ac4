package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-insight/internal/dto"
	"stock-insight/pkg/utils"
)

func mkSources(relevances ...float64) []dto.NewsSource {
	sources := make([]dto.NewsSource, len(relevances))
	for i, r := range relevances {
		sources[i] = dto.NewsSource{
			URL:            fmt.Sprintf("https://news.example.com/%d", i),
			Title:          fmt.Sprintf("Article %d", i),
			RelevanceScore: utils.ToPointer(r),
		}
	}
	return sources
}

func TestSourcesFromSearchRelevanceByPosition(t *testing.T) {
	results := []dto.SearchResult{
		{Link: "https://a.example.com", Title: "A", Position: 1},
		{Link: "https://b.example.com", Title: "B", Position: 3},
		{Link: "https://c.example.com", Title: "C", Position: 4},
		{Link: "https://d.example.com", Title: "D", Position: 9},
		{Link: "https://e.example.com", Title: "E", Position: 30},
	}

	sources := sourcesFromSearch(results, 10)
	require.Len(t, sources, 5)
	assert.InDelta(t, 0.9, *sources[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.86, *sources[1].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.8, *sources[2].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.68, *sources[3].RelevanceScore, 1e-9)
	// position penalty is capped
	assert.InDelta(t, 0.6, *sources[4].RelevanceScore, 1e-9)
}

func TestSourcesFromSearchDeduplicatesAndCaps(t *testing.T) {
	results := []dto.SearchResult{
		{Link: "https://a.example.com", Position: 1},
		{Link: "https://a.example.com", Position: 2},
		{Link: "", Position: 3},
		{Link: "https://b.example.com", Position: 4},
		{Link: "https://c.example.com", Position: 5},
	}

	sources := sourcesFromSearch(results, 2)
	require.Len(t, sources, 2)
	assert.Equal(t, "https://a.example.com", sources[0].URL)
	assert.Equal(t, "https://b.example.com", sources[1].URL)
}

func TestTraceConfidenceSourceCountCurve(t *testing.T) {
	assert.Zero(t, traceConfidence(nil))

	// All relevance 1.0 isolates the base curve: base*0.7 + 0.3
	expected := map[int]float64{
		1: 0.3*0.7 + 0.3,
		2: 0.4*0.7 + 0.3,
		3: 0.5*0.7 + 0.3,
		4: 0.55*0.7 + 0.3,
		5: 0.6*0.7 + 0.3,
		6: 0.617*0.7 + 0.3,
		8: 0.651*0.7 + 0.3,
		9: 0.7*0.7 + 0.3,
	}
	for n, want := range expected {
		relevances := make([]float64, n)
		for i := range relevances {
			relevances[i] = 1.0
		}
		assert.InDelta(t, want, traceConfidence(mkSources(relevances...)), 1e-9, "n=%d", n)
	}
}

func TestTraceConfidenceBounds(t *testing.T) {
	// Single low-relevance source clamps to the floor.
	assert.InDelta(t, 0.3, traceConfidence(mkSources(0.1)), 1e-9)

	// Missing relevance scores fall back to 0.5.
	sources := []dto.NewsSource{{URL: "https://a.example.com"}}
	assert.InDelta(t, 0.5, traceConfidence(sources), 1e-9)

	for n := 1; n <= 15; n++ {
		relevances := make([]float64, n)
		for i := range relevances {
			relevances[i] = 0.9
		}
		c := traceConfidence(mkSources(relevances...))
		assert.GreaterOrEqual(t, c, 0.3)
		assert.LessOrEqual(t, c, 1.0)
	}
}

func TestTraceSummary(t *testing.T) {
	assert.Equal(t, "No sources found for this claim.", traceSummary(nil))

	sources := mkSources(0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3)
	sources[0].Snippet = "Some snippet text."
	summary := traceSummary(sources)

	assert.Contains(t, summary, "Found 7 source(s) for this claim:")
	assert.Contains(t, summary, "1. Article 0")
	assert.Contains(t, summary, "Some snippet text....")
	assert.Contains(t, summary, "5. Article 4")
	assert.NotContains(t, summary, "6. Article 5")
	assert.Contains(t, summary, "... and 2 more sources.")
}
