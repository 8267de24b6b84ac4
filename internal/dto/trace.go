package dto

import "time"

type TraceRequest struct {
	Claim      string `json:"claim" validate:"required"`
	MaxSources int    `json:"max_sources" validate:"omitempty,min=1,max=20"`
}

type NewsSource struct {
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	Snippet        string   `json:"snippet,omitempty"`
	PublishedDate  string   `json:"published_date,omitempty"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

type TimelineEvent struct {
	Date       string `json:"date,omitempty"`
	Event      string `json:"event"`
	SourceURL  string `json:"source_url,omitempty"`
	Importance string `json:"importance,omitempty"`
}

type CausalRelation struct {
	Cause            string  `json:"cause"`
	Effect           string  `json:"effect"`
	RelationshipType string  `json:"relationship_type"`
	Confidence       float64 `json:"confidence"`
	Evidence         string  `json:"evidence,omitempty"`
}

type KnowledgeGraphNode struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
}

type KnowledgeGraphEdge struct {
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	Relationship string   `json:"relationship"`
	Weight       *float64 `json:"weight,omitempty"`
}

type KnowledgeGraph struct {
	Nodes []KnowledgeGraphNode `json:"nodes"`
	Edges []KnowledgeGraphEdge `json:"edges"`
}

type TraceResult struct {
	OriginalClaim   string           `json:"original_claim"`
	Sources         []NewsSource     `json:"sources"`
	Confidence      float64          `json:"confidence"`
	Summary         string           `json:"summary"`
	Timeline        []TimelineEvent  `json:"timeline"`
	CausalRelations []CausalRelation `json:"causal_relations"`
	KnowledgeGraph  *KnowledgeGraph  `json:"knowledge_graph,omitempty"`
	TraceTimestamp  time.Time        `json:"trace_timestamp"`
}

type SearchRequest struct {
	Query      string `json:"query" validate:"required"`
	NumResults int    `json:"num_results" validate:"omitempty,min=1,max=50"`
}

type SearchResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

type ScrapeRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type ScrapedPage struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
