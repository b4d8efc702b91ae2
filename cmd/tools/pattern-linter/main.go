// cmd/tools/pattern-linter/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"trip-context-engine/internal/engine/extractor"
	"trip-context-engine/internal/engine/hints"
	"trip-context-engine/internal/engine/knowledge"
	"trip-context-engine/internal/models"
	"trip-context-engine/pkg/registry"
)

var allStates = []models.ConversationState{
	models.StateInitial,
	models.StateDestinationSelection,
	models.StateDateSelection,
	models.StateHotelSearch,
	models.StateFlightSearch,
	models.StateActivityPlanning,
	models.StateBudgetDiscussion,
	models.StateFinalization,
	models.StateCompleted,
}

func main() {
	patternsPath := flag.String("patterns", "configs/patterns.yaml", "Path to the extraction pattern table")
	knowledgePath := flag.String("knowledge", "configs/knowledge.yaml", "Path to the destination knowledge base")
	actionsPath := flag.String("actions", "configs/action-registry.json", "Path to the hint action registry")
	flag.Parse()

	failed := false

	patterns, err := extractor.LoadConfig(*patternsPath)
	if err != nil {
		fmt.Printf("patterns: FAIL: %v\n", err)
		failed = true
	} else {
		fmt.Printf("patterns: OK (%d destinations, %d idioms, %d activity keywords, %d budget tiers)\n",
			len(patterns.Destinations), len(patterns.TravelerIdioms),
			len(patterns.ActivityKeywords), len(patterns.BudgetTiers))
	}

	kb, err := knowledge.Load(*knowledgePath)
	if err != nil {
		fmt.Printf("knowledge: FAIL: %v\n", err)
		failed = true
	} else {
		fmt.Printf("knowledge: OK (%d destinations)\n", len(kb.Destinations()))

		// Destinations the extractor can produce but the knowledge base
		// cannot enrich are worth flagging, not failing.
		for _, d := range patterns.Destinations {
			if _, ok := kb.Lookup(d.Name); !ok {
				fmt.Printf("knowledge: WARN: no entry for extractable destination %q\n", d.Name)
			}
		}
	}

	reg, err := registry.LoadRegistry(*actionsPath)
	if err != nil {
		fmt.Printf("actions: FAIL: %v\n", err)
		failed = true
	} else {
		seen := map[string]bool{}
		for _, a := range reg.Actions {
			if a.ID == "" {
				fmt.Println("actions: FAIL: action with empty id")
				failed = true
				continue
			}
			if seen[a.ID] {
				fmt.Printf("actions: FAIL: duplicate action id %q\n", a.ID)
				failed = true
			}
			seen[a.ID] = true
		}
		fmt.Printf("actions: OK (%d actions, version %s)\n", len(reg.Actions), reg.Version)

		// Every action the hint tables can emit has to resolve in the
		// registry, dynamic prefix entries included. A generous cap keeps
		// the per-turn limit from hiding candidates here.
		gen := hints.New(hints.Config{MaxHints: 50}, kb)
		entities := sampleEntities(patterns)
		ctx := sampleContext(patterns)
		for _, state := range allStates {
			for _, h := range gen.Generate(state, ctx, entities) {
				if _, ok := reg.Lookup(h.Action); !ok {
					fmt.Printf("actions: FAIL: hint action %q (state %s) has no registry entry\n", h.Action, state)
					failed = true
				}
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}

// sampleEntities builds one entity of every hint-relevant type from the
// loaded pattern table, so the generator exercises its dynamic actions.
func sampleEntities(cfg extractor.Config) []models.ExtractedEntity {
	var out []models.ExtractedEntity
	if len(cfg.Destinations) > 0 {
		out = append(out, models.ExtractedEntity{Type: models.EntityDestination, Value: cfg.Destinations[0].Name, Confidence: 1})
	}
	if len(cfg.ActivityKeywords) > 0 {
		out = append(out, models.ExtractedEntity{Type: models.EntityActivity, Value: cfg.ActivityKeywords[0], Confidence: 1})
	}
	if len(cfg.BudgetTiers) > 0 {
		out = append(out, models.ExtractedEntity{Type: models.EntityBudgetTier, Value: cfg.BudgetTiers[0].Tier, Confidence: 1})
	}
	return out
}

// sampleContext fills the fields the enrichment hints key off. Dates stay
// empty so the best-season hint stays eligible.
func sampleContext(cfg extractor.Config) models.TripContext {
	ctx := models.NewTripContext()
	if len(cfg.Destinations) > 0 {
		ctx.DestinationCity = cfg.Destinations[0].Name
	}
	if len(cfg.BudgetTiers) > 0 {
		ctx.Budget = cfg.BudgetTiers[0].Tier
	}
	return ctx
}
