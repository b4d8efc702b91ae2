package analyzemessage

import (
	"trip-context-engine/internal/engine/tripcontext"
	"trip-context-engine/internal/models"
)

// InputSchema rejects jobs missing a session ID or message before any
// work is done on them.
const InputSchema = `{
  "type": "object",
  "required": ["sessionId", "message"],
  "properties": {
    "sessionId": {"type": "string", "minLength": 1},
    "message": {"type": "string", "minLength": 1},
    "strategy": {
      "type": "string",
      "enum": ["MOST_RECENT", "HIGHEST_CONFIDENCE", "MERGE", "USER_CLARIFICATION", ""]
    }
  }
}`

type Input struct {
	SessionID string                    `json:"sessionId"`
	Message   string                    `json:"message"`
	Strategy  models.ResolutionStrategy `json:"strategy,omitempty"`
}

type Output struct {
	TurnID             string                       `json:"turnId"`
	SessionID          string                       `json:"sessionId"`
	State              models.ConversationState     `json:"conversationState"`
	Context            models.TripContext           `json:"tripContext"`
	Entities           []models.ExtractedEntity     `json:"entities"`
	Hints              []models.Hint                `json:"hints"`
	Conflicts          []models.Conflict            `json:"conflicts,omitempty"`
	NeedsClarification bool                         `json:"needsClarification"`
	Validation         tripcontext.ValidationResult `json:"validation"`
}
