package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/internal/repository"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/utils"
)

const (
	defaultMaxSources   = 10
	extractionMaxChars  = 5000
	summaryTopSources   = 5
	snippetSummaryChars = 200
)

type TraceService interface {
	Trace(ctx context.Context, req dto.TraceRequest) (*dto.TraceResult, error)
}

type traceService struct {
	cfg   *config.Config
	log   *logger.Logger
	repos *repository.Repositories
}

func NewTraceService(cfg *config.Config, log *logger.Logger, repos *repository.Repositories) TraceService {
	return &traceService{cfg: cfg, log: log, repos: repos}
}

// Trace searches for sources backing a claim, scrapes the top pages, and
// extracts a timeline, causal relations and a knowledge graph from the
// collected evidence. Each extraction step degrades independently: a model
// failure yields an empty section, never a failed trace.
func (s *traceService) Trace(ctx context.Context, req dto.TraceRequest) (*dto.TraceResult, error) {
	maxSources := req.MaxSources
	if maxSources <= 0 {
		maxSources = defaultMaxSources
	}

	searchResults, err := s.repos.Search.Search(ctx, req.Claim, maxSources)
	if err != nil {
		return nil, fmt.Errorf("source search failed: %w", err)
	}

	sources := sourcesFromSearch(searchResults, maxSources)
	evidence := s.collectEvidence(ctx, req.Claim, sources)

	result := &dto.TraceResult{
		OriginalClaim:  req.Claim,
		Sources:        sources,
		Confidence:     traceConfidence(sources),
		Summary:        traceSummary(sources),
		TraceTimestamp: time.Now(),
	}

	if !utils.ShouldContinue(ctx, s.log) {
		return result, nil
	}
	result.Timeline = s.extractTimeline(ctx, evidence, sources)

	if !utils.ShouldContinue(ctx, s.log) {
		return result, nil
	}
	result.CausalRelations = s.extractCausalRelations(ctx, evidence)

	if !utils.ShouldContinue(ctx, s.log) {
		return result, nil
	}
	result.KnowledgeGraph = s.buildKnowledgeGraph(ctx, evidence)

	s.log.InfoContext(ctx, "trace completed",
		logger.IntField("sources", len(sources)),
		logger.IntField("timeline_events", len(result.Timeline)),
		logger.IntField("causal_relations", len(result.CausalRelations)),
		logger.Float64Field("confidence", result.Confidence))
	return result, nil
}

// sourcesFromSearch maps search hits to sources, assigning relevance by
// position: early results score higher, with diminishing penalties.
func sourcesFromSearch(results []dto.SearchResult, maxSources int) []dto.NewsSource {
	seen := make(map[string]bool)
	var sources []dto.NewsSource
	for idx, item := range results {
		if len(sources) >= maxSources {
			break
		}
		if item.Link == "" || seen[item.Link] {
			continue
		}
		seen[item.Link] = true

		position := item.Position
		if position <= 0 {
			position = idx + 1
		}
		var relevance float64
		switch {
		case position <= 3:
			relevance = 0.9 - float64(position-1)*0.02
		case position <= 6:
			relevance = 0.8 - float64(position-4)*0.02
		default:
			penalty := float64(position-7) * 0.01
			if penalty > 0.1 {
				penalty = 0.1
			}
			relevance = 0.7 - penalty
		}

		sources = append(sources, dto.NewsSource{
			URL:            item.Link,
			Title:          item.Title,
			Snippet:        item.Snippet,
			RelevanceScore: utils.ToPointer(relevance),
		})
	}
	return sources
}

// collectEvidence scrapes the top source pages and concatenates the claim,
// snippets and page content into one capped evidence block for the
// extraction prompts. Scrape failures are skipped.
func (s *traceService) collectEvidence(ctx context.Context, claim string, sources []dto.NewsSource) string {
	var blocks []string
	blocks = append(blocks, "Claim: "+claim)
	for _, source := range sources {
		if source.Snippet != "" {
			blocks = append(blocks, fmt.Sprintf("[%s] %s", source.Title, source.Snippet))
		}
	}

	scraped := 0
	for _, source := range sources {
		if scraped >= s.cfg.Scraper.MaxPages {
			break
		}
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}

		page, err := s.repos.Scraper.Scrape(ctx, source.URL)
		if err != nil {
			s.log.WarnContext(ctx, "source scrape failed",
				logger.StringField("url", source.URL),
				logger.ErrorField(err))
			continue
		}
		scraped++
		blocks = append(blocks, fmt.Sprintf("[%s](%s)\n%s", page.Title, page.URL, page.Content))
	}

	evidence := strings.Join(blocks, "\n\n")
	if len(evidence) > extractionMaxChars {
		evidence = evidence[:extractionMaxChars]
	}
	return evidence
}

func (s *traceService) extractTimeline(ctx context.Context, evidence string, sources []dto.NewsSource) []dto.TimelineEvent {
	prompt := fmt.Sprintf(`Based on the following information, extract a chronological timeline of key events.

Information:
%s

Identify the key events with their dates and importance. Respond as JSON: {"events": [{"date": "...", "event": "...", "source_url": "...", "importance": "high|medium|low"}]}. Omit the date when it is unknown.`, evidence)

	var out struct {
		Events []dto.TimelineEvent `json:"events"`
	}
	if err := s.repos.AI.GenerateStructured(ctx, prompt, &out); err != nil {
		s.log.WarnContext(ctx, "timeline extraction failed", logger.ErrorField(err))
		// Fallback: one event per dated source.
		var timeline []dto.TimelineEvent
		for _, source := range sources {
			if source.PublishedDate == "" {
				continue
			}
			timeline = append(timeline, dto.TimelineEvent{
				Date:       source.PublishedDate,
				Event:      source.Title,
				SourceURL:  source.URL,
				Importance: "medium",
			})
		}
		return timeline
	}
	return out.Events
}

func (s *traceService) extractCausalRelations(ctx context.Context, evidence string) []dto.CausalRelation {
	prompt := fmt.Sprintf(`Based on the following information, identify causal relationships between events.

Information:
%s

Respond as JSON: {"relations": [{"cause": "...", "effect": "...", "relationship_type": "direct|indirect|correlation", "confidence": 0.0, "evidence": "..."}]}.`, evidence)

	var out struct {
		Relations []dto.CausalRelation `json:"relations"`
	}
	if err := s.repos.AI.GenerateStructured(ctx, prompt, &out); err != nil {
		s.log.WarnContext(ctx, "causal relation extraction failed", logger.ErrorField(err))
		return nil
	}
	return out.Relations
}

func (s *traceService) buildKnowledgeGraph(ctx context.Context, evidence string) *dto.KnowledgeGraph {
	prompt := fmt.Sprintf(`Based on the following information, build a knowledge graph of entities and their relationships.

Information:
%s

Extract people, organizations, locations, concepts and events as nodes, and the relationships between them as edges. Respond as JSON: {"nodes": [{"id": "...", "label": "...", "type": "person|organization|location|concept|event"}], "edges": [{"source": "...", "target": "...", "relationship": "...", "weight": 0.0}]}.`, evidence)

	var graph dto.KnowledgeGraph
	if err := s.repos.AI.GenerateStructured(ctx, prompt, &graph); err != nil {
		s.log.WarnContext(ctx, "knowledge graph extraction failed", logger.ErrorField(err))
		return nil
	}
	if len(graph.Nodes) == 0 && len(graph.Edges) == 0 {
		return nil
	}
	return &graph
}

// traceConfidence combines a diminishing-returns source-count base (70%)
// with the average source relevance (30%), clamped to [0.3, 1.0]. No
// sources at all means zero confidence.
func traceConfidence(sources []dto.NewsSource) float64 {
	if len(sources) == 0 {
		return 0.0
	}

	var relevanceSum float64
	relevanceCount := 0
	for _, source := range sources {
		if source.RelevanceScore != nil {
			relevanceSum += *source.RelevanceScore
			relevanceCount++
		}
	}
	if relevanceCount == 0 {
		return 0.5
	}
	avgRelevance := relevanceSum / float64(relevanceCount)

	n := len(sources)
	var base float64
	switch {
	case n == 1:
		base = 0.3
	case n <= 3:
		base = 0.3 + float64(n-1)*0.1
	case n <= 5:
		base = 0.5 + float64(n-3)*0.05
	case n <= 8:
		base = 0.6 + float64(n-5)*0.017
	default:
		base = 0.7
	}

	confidence := base*0.7 + avgRelevance*0.3
	if confidence < 0.3 {
		confidence = 0.3
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func traceSummary(sources []dto.NewsSource) string {
	if len(sources) == 0 {
		return "No sources found for this claim."
	}

	parts := []string{fmt.Sprintf("Found %d source(s) for this claim:", len(sources)), ""}
	for i, source := range sources {
		if i >= summaryTopSources {
			break
		}
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, source.Title))
		if source.Snippet != "" {
			snippet := source.Snippet
			if len(snippet) > snippetSummaryChars {
				snippet = snippet[:snippetSummaryChars]
			}
			parts = append(parts, "   "+snippet+"...")
		}
		parts = append(parts, "   URL: "+source.URL, "")
	}
	if len(sources) > summaryTopSources {
		parts = append(parts, fmt.Sprintf("... and %d more sources.", len(sources)-summaryTopSources))
	}
	return strings.Join(parts, "\n")
}
