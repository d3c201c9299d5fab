package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority represents how urgent a plan is
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Category represents which part of life a plan belongs to
type Category string

const (
	CategoryWork          Category = "work"
	CategoryPersonal      Category = "personal"
	CategoryResearch      Category = "research"
	CategoryEntertainment Category = "entertainment"
)

// DefaultPriority is applied when a create request omits priority
const DefaultPriority = PriorityMedium

// DefaultCategory is applied when a create request omits category and when
// legacy records without a category are loaded
const DefaultCategory = CategoryPersonal

// Plan represents a single task attributed to a virtual day.
// JSON field names mirror the browser-era persisted blob so exported backups
// round-trip with historical data.
type Plan struct {
	ID                string    `json:"id"`
	Content           string    `json:"content"`
	IsCompleted       bool      `json:"isCompleted"`
	TargetDate        string    `json:"targetDate"` // day key, YYYY-MM-DD
	Priority          Priority  `json:"priority"`
	Category          Category  `json:"category"`
	CreatedAt         int64     `json:"createdAt"` // epoch milliseconds, provenance only
	EstimatedDuration int       `json:"estimatedDuration,omitempty"`
	SuggestedTime     string    `json:"suggestedTime,omitempty"` // "HH:MM" 24h; legacy 12h tolerated
}

// NewPlan creates a plan with a fresh id and creation timestamp.
// Content validation is the store's responsibility.
func NewPlan(content string, priority Priority, category Category, targetDate string, estimatedDuration int) *Plan {
	return &Plan{
		ID:                uuid.New().String(),
		Content:           content,
		IsCompleted:       false,
		TargetDate:        targetDate,
		Priority:          priority,
		Category:          category,
		CreatedAt:         time.Now().UnixMilli(),
		EstimatedDuration: estimatedDuration,
	}
}

// ValidPriority reports whether p is a known priority value
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ValidCategory reports whether c is a known category value
func ValidCategory(c Category) bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryResearch, CategoryEntertainment:
		return true
	default:
		return false
	}
}

// Clone returns a copy of the plan
func (p *Plan) Clone() *Plan {
	cp := *p
	return &cp
}
