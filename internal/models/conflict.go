package models

import "time"

// ConflictType categorizes a disagreement between a known fact and a newly
// extracted one for the same field.
type ConflictType string

const (
	DestinationConflict ConflictType = "destination_conflict"
	DateConflict        ConflictType = "date_conflict"
	TravelerConflict    ConflictType = "traveler_conflict"
	BudgetConflict      ConflictType = "budget_conflict"
)

// Severity ranks how damaging an unresolved conflict would be.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ResolutionStrategy is the policy used to decide which value wins when a
// conflict is detected. Strategies are a closed set dispatched through a
// resolver table, not string comparisons scattered through the merge code.
type ResolutionStrategy string

const (
	// StrategyMostRecent lets the newly extracted value overwrite the
	// existing one. This is the default.
	StrategyMostRecent ResolutionStrategy = "MOST_RECENT"
	// StrategyHighestConfidence keeps whichever value carries the higher
	// recorded confidence.
	StrategyHighestConfidence ResolutionStrategy = "HIGHEST_CONFIDENCE"
	// StrategyMerge unions set-valued fields instead of overwriting.
	StrategyMerge ResolutionStrategy = "MERGE"
	// StrategyUserClarification leaves high-severity conflicts unresolved
	// and surfaces them so the caller can ask the user instead of guessing.
	StrategyUserClarification ResolutionStrategy = "USER_CLARIFICATION"
)

// Conflict is a transient disagreement detected during a merge. Resolved
// conflicts become ConflictRecords; flagged ones are returned to the caller
// with RequiresClarification set and the field left untouched.
type Conflict struct {
	Field                 string       `json:"field"`
	Type                  ConflictType `json:"type"`
	Existing              string       `json:"existing"`
	New                   string       `json:"new"`
	Severity              Severity     `json:"severity"`
	RequiresClarification bool         `json:"requiresClarification,omitempty"`
}

// ConflictRecord is the append-only audit entry for one automatically
// resolved conflict.
type ConflictRecord struct {
	ID        string             `json:"id"`
	Field     string             `json:"field"`
	OldValue  string             `json:"oldValue"`
	NewValue  string             `json:"newValue"`
	Strategy  ResolutionStrategy `json:"strategy"`
	Timestamp time.Time          `json:"timestamp"`
}
