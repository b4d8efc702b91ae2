package models

import "time"

// EntityType identifies the kind of travel fact extracted from a message.
type EntityType string

const (
	EntityDestination   EntityType = "destination"
	EntityDate          EntityType = "date"
	EntityTravelerCount EntityType = "traveler_count"
	EntityActivity      EntityType = "activity"
	EntityBudgetTier    EntityType = "budget_tier"
)

// ExtractedEntity is one typed, confidence-scored fact pulled out of a raw
// user message. Entities are produced fresh on every extraction and are
// never persisted; their order is extraction order and carries no meaning.
type ExtractedEntity struct {
	Type       EntityType `json:"type"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
}

// ConversationState is the current stage of the planning conversation.
// It is recomputed from scratch on every turn, never stored as a state
// machine with history.
type ConversationState string

const (
	StateInitial              ConversationState = "INITIAL"
	StateDestinationSelection ConversationState = "DESTINATION_SELECTION"
	StateDateSelection        ConversationState = "DATE_SELECTION"
	StateHotelSearch          ConversationState = "HOTEL_SEARCH"
	StateFlightSearch         ConversationState = "FLIGHT_SEARCH"
	StateActivityPlanning     ConversationState = "ACTIVITY_PLANNING"
	StateBudgetDiscussion     ConversationState = "BUDGET_DISCUSSION"
	StateFinalization         ConversationState = "FINALIZATION"
	StateCompleted            ConversationState = "COMPLETED"
)

// Message is one turn of the conversation as the session manager stores it.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Hint is a short, actionable suggestion surfaced to the end user. Action
// is a stable identifier the caller may use for UI routing; two hints with
// the same Action are duplicates.
type Hint struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Action string `json:"action"`
}
