package ai

import (
	"context"

	"github.com/tomorrow-architect/planner-api/internal/models"
	"github.com/tomorrow-architect/planner-api/internal/schedule"
)

// EmptyPlanReviewMessage is returned without calling the provider when there
// is nothing to review.
const EmptyPlanReviewMessage = "It looks like you haven't added any plans for tomorrow yet. Start by adding a few key tasks!"

// ReviewFallbackMessage is used when the provider answers with empty content.
const ReviewFallbackMessage = "Keep up the good work!"

// Advisor is the contract with the external planning intelligence. Its
// output is untrusted: callers must structurally validate schedule proposals
// before merging them.
type Advisor interface {
	// Review returns a short natural-language critique of a day's plan
	Review(ctx context.Context, plans []*models.Plan) (string, error)

	// Schedule proposes a start time per plan given a start-time label
	Schedule(ctx context.Context, plans []*models.Plan, startLabel string) ([]schedule.TimeSuggestion, error)
}

// ProviderFactory creates an advisor from provider configuration
type ProviderFactory func(config map[string]string) (Advisor, error)

// ProviderRegistry stores available advisor providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Advisor, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
