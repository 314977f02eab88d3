package domain

import "time"

// Category buckets one finding from a synthesis run.
type Category string

const (
	CategoryTheme          Category = "theme"
	CategoryBias           Category = "bias"
	CategoryPattern        Category = "pattern"
	CategoryRecommendation Category = "recommendation"
)

// Categories lists the four analysis domains in their canonical order.
var Categories = []Category{CategoryTheme, CategoryBias, CategoryPattern, CategoryRecommendation}

// InsightSession groups the insights of one batch analysis run. It is
// created before the AI call so a mid-pipeline failure still leaves a
// traceable session behind.
type InsightSession struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Dataset   Scope     `json:"dataset"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

// Insight is one categorized, source-attributed finding. Only the title is
// user-mutable after creation.
type Insight struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	OwnerID     string    `json:"ownerId"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"`
	Sources     []string  `json:"sources"`
	CreatedAt   time.Time `json:"createdAt"`
}
