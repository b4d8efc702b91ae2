// Package hints produces the next-step suggestions surfaced after every
// turn. Candidates come from three sources in a fixed priority order:
// stage-specific prompts, prompts derived from the entities just
// extracted, and knowledge-base enrichment for the known destination.
package hints

import (
	"fmt"
	"strings"

	"trip-context-engine/internal/engine/knowledge"
	"trip-context-engine/internal/models"
)

// DefaultMaxHints caps how many hints a single turn may surface.
const DefaultMaxHints = 5

// Config tunes the generator.
type Config struct {
	MaxHints int `mapstructure:"max_hints"`
}

// DefaultConfig returns the shipped defaults.
func DefaultConfig() Config {
	return Config{MaxHints: DefaultMaxHints}
}

// Generator builds the hint list for one turn. It holds only read-only
// state after construction and is safe for concurrent use.
type Generator struct {
	cfg Config
	kb  *knowledge.Base
}

// New builds a Generator over the given knowledge base. A nil base
// disables enrichment hints.
func New(cfg Config, kb *knowledge.Base) *Generator {
	if cfg.MaxHints <= 0 {
		cfg.MaxHints = DefaultMaxHints
	}
	return &Generator{cfg: cfg, kb: kb}
}

// Generate returns the deduplicated, capped hint list for one turn.
// Stage hints come first, then entity hints, then enrichment hints;
// Merge drops later duplicates, so the priority order decides survivors.
func (g *Generator) Generate(state models.ConversationState, ctx models.TripContext, entities []models.ExtractedEntity) []models.Hint {
	return Merge(g.cfg.MaxHints,
		g.stageHints(state),
		g.entityHints(entities),
		g.enrichmentHints(state, ctx),
	)
}

// Merge deduplicates hint groups by action, keeping the first occurrence,
// and truncates the result to max entries. A max of zero or less means
// no cap.
func Merge(max int, groups ...[]models.Hint) []models.Hint {
	var out []models.Hint
	seen := map[string]bool{}
	for _, group := range groups {
		for _, h := range group {
			key := strings.ToLower(strings.TrimSpace(h.Action))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, h)
			if max > 0 && len(out) == max {
				return out
			}
		}
	}
	return out
}

func (g *Generator) stageHints(state models.ConversationState) []models.Hint {
	switch state {
	case models.StateInitial:
		return []models.Hint{
			{Type: "prompt", Text: "Where would you like to go?", Action: "ask_destination"},
			{Type: "prompt", Text: "Tell me roughly when you want to travel.", Action: "ask_dates"},
		}
	case models.StateDestinationSelection:
		return []models.Hint{
			{Type: "prompt", Text: "Any region or vibe in mind? Beach, city, mountains?", Action: "ask_destination_style"},
			{Type: "suggestion", Text: "I can suggest destinations for your season and budget.", Action: "suggest_destinations"},
		}
	case models.StateDateSelection:
		return []models.Hint{
			{Type: "prompt", Text: "When do you want to depart?", Action: "ask_start_date"},
			{Type: "prompt", Text: "How long will you stay?", Action: "ask_trip_length"},
		}
	case models.StateHotelSearch:
		return []models.Hint{
			{Type: "action", Text: "Search hotels for your dates.", Action: "search_hotels"},
			{Type: "prompt", Text: "Any must-haves? Pool, breakfast, central location?", Action: "ask_hotel_preferences"},
		}
	case models.StateFlightSearch:
		return []models.Hint{
			{Type: "action", Text: "Search flights for your dates.", Action: "search_flights"},
			{Type: "prompt", Text: "Which city are you flying from?", Action: "ask_departure_city"},
		}
	case models.StateActivityPlanning:
		return []models.Hint{
			{Type: "action", Text: "Build a day-by-day activity plan.", Action: "plan_activities"},
		}
	case models.StateBudgetDiscussion:
		return []models.Hint{
			{Type: "prompt", Text: "What total budget are you working with?", Action: "ask_total_budget"},
			{Type: "suggestion", Text: "I can estimate daily costs for your destination.", Action: "estimate_daily_costs"},
		}
	case models.StateFinalization:
		return []models.Hint{
			{Type: "action", Text: "Review your itinerary before booking.", Action: "review_itinerary"},
			{Type: "action", Text: "Confirm and book the trip.", Action: "confirm_booking"},
		}
	case models.StateCompleted:
		return []models.Hint{
			{Type: "suggestion", Text: "Want a packing list for this trip?", Action: "packing_list"},
		}
	}
	return nil
}

func (g *Generator) entityHints(entities []models.ExtractedEntity) []models.Hint {
	var out []models.Hint
	for _, e := range entities {
		switch e.Type {
		case models.EntityDestination:
			out = append(out, models.Hint{
				Type:   "suggestion",
				Text:   fmt.Sprintf("Want a quick guide to %s?", e.Value),
				Action: "show_guide_" + slug(e.Value),
			})
		case models.EntityActivity:
			out = append(out, models.Hint{
				Type:   "suggestion",
				Text:   fmt.Sprintf("Add %s to your plan?", e.Value),
				Action: "add_activity_" + slug(e.Value),
			})
		case models.EntityBudgetTier:
			out = append(out, models.Hint{
				Type:   "suggestion",
				Text:   fmt.Sprintf("Filter options to %s choices?", e.Value),
				Action: "filter_budget_" + slug(e.Value),
			})
		}
	}
	return out
}

func (g *Generator) enrichmentHints(state models.ConversationState, ctx models.TripContext) []models.Hint {
	if g.kb == nil || !ctx.HasDestination() {
		return nil
	}
	info, ok := g.kb.Lookup(ctx.DestinationCity)
	if !ok {
		return nil
	}

	var out []models.Hint
	if info.BestSeason != "" && !ctx.HasDates() {
		out = append(out, models.Hint{
			Type:   "enrichment",
			Text:   fmt.Sprintf("The best time to visit %s is %s.", ctx.DestinationCity, info.BestSeason),
			Action: "best_season_" + slug(ctx.DestinationCity),
		})
	}
	if ctx.Budget != "" {
		if daily, has := info.DailyBudget[strings.ToLower(ctx.Budget)]; has {
			out = append(out, models.Hint{
				Type:   "enrichment",
				Text:   fmt.Sprintf("Expect around $%.0f per person per day in %s at that level.", daily, ctx.DestinationCity),
				Action: "daily_budget_" + slug(ctx.DestinationCity),
			})
		}
	}
	if state == models.StateHotelSearch && len(info.Neighborhoods) > 0 {
		out = append(out, models.Hint{
			Type:   "enrichment",
			Text:   fmt.Sprintf("Popular areas to stay: %s.", strings.Join(info.Neighborhoods, ", ")),
			Action: "neighborhoods_" + slug(ctx.DestinationCity),
		})
	}
	if len(info.MustSee) > 0 {
		out = append(out, models.Hint{
			Type:   "enrichment",
			Text:   fmt.Sprintf("Don't miss: %s.", strings.Join(info.MustSee, ", ")),
			Action: "must_see_" + slug(ctx.DestinationCity),
		})
	}
	if len(info.Tips) > 0 {
		out = append(out, models.Hint{
			Type:   "enrichment",
			Text:   info.Tips[0],
			Action: "local_tip_" + slug(ctx.DestinationCity),
		})
	}
	return out
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
