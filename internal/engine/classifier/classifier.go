// Package classifier maps the recent conversation plus the accumulated
// context onto one stage of the planning conversation. The stage is a pure
// recomputation every turn: there is no stored transition table, so
// identical inputs always classify identically.
package classifier

import (
	"regexp"
	"strings"

	"trip-context-engine/internal/models"
)

// Config holds the keyword tables and the history window. The window is
// how many of the most recent messages are scanned for stage keywords.
type Config struct {
	HistoryWindow    int      `mapstructure:"history_window"`
	HotelKeywords    []string `mapstructure:"hotel_keywords"`
	FlightKeywords   []string `mapstructure:"flight_keywords"`
	ActivityKeywords []string `mapstructure:"activity_keywords"`
	BudgetKeywords   []string `mapstructure:"budget_keywords"`
}

// DefaultConfig returns the built-in keyword tables.
func DefaultConfig() Config {
	return Config{
		HistoryWindow:    3,
		HotelKeywords:    []string{"hotel", "hotels", "accommodation", "lodging", "hostel", "airbnb", "stay", "room"},
		FlightKeywords:   []string{"flight", "flights", "fly", "flying", "airline", "airfare", "plane"},
		ActivityKeywords: []string{"activity", "activities", "museum", "hiking", "beach", "tour", "tours", "sightseeing", "things to do"},
		BudgetKeywords:   []string{"budget", "cost", "costs", "price", "prices", "expensive", "cheap", "afford", "spend"},
	}
}

// input is what every rule predicate sees.
type input struct {
	ctx models.TripContext
	c   *Classifier
	win []models.Message
}

// rule pairs a named predicate with the state it selects. Rules are
// evaluated top to bottom; the first match wins, which makes the
// precedence order auditable and testable rule by rule.
type rule struct {
	name      string
	predicate func(input) bool
	state     models.ConversationState
}

// Classifier evaluates the ordered rule list. It holds only read-only
// state after construction and is safe for concurrent use.
type Classifier struct {
	cfg      Config
	rules    []rule
	hotel    []*regexp.Regexp
	flight   []*regexp.Regexp
	activity []*regexp.Regexp
	budget   []*regexp.Regexp
}

// New compiles the keyword tables and fixes the precedence order.
func New(cfg Config) *Classifier {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 3
	}
	c := &Classifier{
		cfg:      cfg,
		hotel:    compileAll(cfg.HotelKeywords),
		flight:   compileAll(cfg.FlightKeywords),
		activity: compileAll(cfg.ActivityKeywords),
		budget:   compileAll(cfg.BudgetKeywords),
	}

	// The hotel rule deliberately precedes the flight rule: a message
	// mentioning both is treated as a lodging question.
	c.rules = []rule{
		{
			name:  "hotel terms with known destination",
			state: models.StateHotelSearch,
			predicate: func(in input) bool {
				return in.ctx.HasDestination() && anyMatch(in.c.hotel, in.win)
			},
		},
		{
			name:  "flight terms with known destination",
			state: models.StateFlightSearch,
			predicate: func(in input) bool {
				return in.ctx.HasDestination() && anyMatch(in.c.flight, in.win)
			},
		},
		{
			name:  "activity terms",
			state: models.StateActivityPlanning,
			predicate: func(in input) bool {
				return anyMatch(in.c.activity, in.win)
			},
		},
		{
			name:  "budget terms",
			state: models.StateBudgetDiscussion,
			predicate: func(in input) bool {
				return anyMatch(in.c.budget, in.win)
			},
		},
		{
			name:  "destination unknown",
			state: models.StateDestinationSelection,
			predicate: func(in input) bool {
				return !in.ctx.HasDestination()
			},
		},
		{
			name:  "dates unknown",
			state: models.StateDateSelection,
			predicate: func(in input) bool {
				return !in.ctx.HasDates()
			},
		},
		{
			name:  "booking selected, ready to finalize",
			state: models.StateFinalization,
			predicate: func(in input) bool {
				return in.ctx.HasDestination() && in.ctx.HasDates() &&
					(in.ctx.Bookings.HotelSelected || in.ctx.Bookings.FlightSelected)
			},
		},
	}

	return c
}

// Classify returns the conversation stage for the current turn. Only the
// last HistoryWindow messages are scanned for keywords.
func (c *Classifier) Classify(recent []models.Message, ctx models.TripContext) models.ConversationState {
	win := window(recent, c.cfg.HistoryWindow)
	in := input{ctx: ctx, c: c, win: win}

	for _, r := range c.rules {
		if r.predicate(in) {
			return r.state
		}
	}
	return models.StateInitial
}

// Rules returns the names of the precedence chain in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.name
	}
	return names
}

func window(msgs []models.Message, n int) []models.Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

func compileAll(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return out
}

func anyMatch(res []*regexp.Regexp, msgs []models.Message) bool {
	for _, msg := range msgs {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		for _, re := range res {
			if re.MatchString(msg.Content) {
				return true
			}
		}
	}
	return false
}
