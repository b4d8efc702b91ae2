package engine

import (
	"context"

	"trip-context-engine/internal/models"
)

// SuggestionSource supplies optional free-form hint texts from an external
// service, typically an LLM. Implementations must respect ctx: the engine
// calls Suggest under a short deadline and discards the result on timeout.
type SuggestionSource interface {
	Suggest(ctx context.Context, state models.ConversationState, trip models.TripContext) ([]string, error)
}

// NoopSuggestions is the SuggestionSource used when no external service is
// wired. It always returns nothing.
type NoopSuggestions struct{}

// Suggest implements SuggestionSource.
func (NoopSuggestions) Suggest(context.Context, models.ConversationState, models.TripContext) ([]string, error) {
	return nil, nil
}
