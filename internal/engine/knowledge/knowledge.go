// Package knowledge is the read-only destination knowledge base used to
// enrich hints. A missing entry is not an error; enrichment is simply
// skipped.
package knowledge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// DestinationInfo is the static knowledge held for one destination.
// DailyBudget is keyed by budget tier and holds an average per-person
// daily spend in USD.
type DestinationInfo struct {
	BestSeason    string             `mapstructure:"best_season" json:"bestSeason"`
	DailyBudget   map[string]float64 `mapstructure:"daily_budget" json:"dailyBudget"`
	MustSee       []string           `mapstructure:"must_see" json:"mustSee"`
	Neighborhoods []string           `mapstructure:"neighborhoods" json:"neighborhoods"`
	Tips          []string           `mapstructure:"tips" json:"tips"`
}

// Base is an immutable lookup table keyed by canonical destination name.
// It is initialized once and never mutated, so concurrent lookups need no
// locking.
type Base struct {
	entries map[string]DestinationInfo
}

// New builds a Base from explicit entries. Keys are canonicalized to
// lowercase.
func New(entries map[string]DestinationInfo) *Base {
	canonical := make(map[string]DestinationInfo, len(entries))
	for name, info := range entries {
		canonical[strings.ToLower(strings.TrimSpace(name))] = info
	}
	return &Base{entries: canonical}
}

// Lookup returns the knowledge entry for a destination, if any.
func (b *Base) Lookup(destination string) (DestinationInfo, bool) {
	info, ok := b.entries[strings.ToLower(strings.TrimSpace(destination))]
	return info, ok
}

// Destinations lists the known destinations in sorted order.
func (b *Base) Destinations() []string {
	out := make([]string, 0, len(b.entries))
	for name := range b.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Load reads a knowledge table from a YAML file. An empty path falls back
// to the built-in table.
func Load(path string) (*Base, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read knowledge file %s: %w", path, err)
	}

	var raw struct {
		Destinations map[string]DestinationInfo `mapstructure:"destinations"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal knowledge file: %w", err)
	}
	return New(raw.Destinations), nil
}

// Default returns the built-in knowledge table.
func Default() *Base {
	return New(map[string]DestinationInfo{
		"Paris": {
			BestSeason:    "April to June",
			DailyBudget:   map[string]float64{"budget": 90, "mid-range": 180, "luxury": 450},
			MustSee:       []string{"Eiffel Tower", "Louvre", "Montmartre"},
			Neighborhoods: []string{"Le Marais", "Saint-Germain", "Latin Quarter"},
			Tips:          []string{"Book museum tickets online to skip queues", "Many shops close on Sundays"},
		},
		"London": {
			BestSeason:    "May to September",
			DailyBudget:   map[string]float64{"budget": 100, "mid-range": 200, "luxury": 500},
			MustSee:       []string{"British Museum", "Tower of London", "South Bank"},
			Neighborhoods: []string{"Covent Garden", "Shoreditch", "South Kensington"},
			Tips:          []string{"An Oyster card beats single tickets", "Most major museums are free"},
		},
		"Tokyo": {
			BestSeason:    "March to May",
			DailyBudget:   map[string]float64{"budget": 80, "mid-range": 160, "luxury": 400},
			MustSee:       []string{"Senso-ji", "Shibuya Crossing", "Meiji Shrine"},
			Neighborhoods: []string{"Shinjuku", "Asakusa", "Ginza"},
			Tips:          []string{"Get a Suica card for trains", "Carry cash; small places skip cards"},
		},
		"Rome": {
			BestSeason:    "April to June",
			DailyBudget:   map[string]float64{"budget": 80, "mid-range": 150, "luxury": 380},
			MustSee:       []string{"Colosseum", "Vatican Museums", "Trastevere"},
			Neighborhoods: []string{"Monti", "Trastevere", "Prati"},
			Tips:          []string{"Reserve the Vatican well ahead", "House wine is usually the good value"},
		},
		"Bali": {
			BestSeason:    "May to September",
			DailyBudget:   map[string]float64{"budget": 40, "mid-range": 100, "luxury": 300},
			MustSee:       []string{"Uluwatu Temple", "Tegallalang rice terraces", "Ubud"},
			Neighborhoods: []string{"Ubud", "Canggu", "Seminyak"},
			Tips:          []string{"Rent a scooter with care; traffic is dense", "Negotiate taxi fares up front"},
		},
		"New York": {
			BestSeason:    "September to November",
			DailyBudget:   map[string]float64{"budget": 120, "mid-range": 250, "luxury": 600},
			MustSee:       []string{"Central Park", "The Met", "Brooklyn Bridge"},
			Neighborhoods: []string{"West Village", "Williamsburg", "Upper West Side"},
			Tips:          []string{"The subway runs all night", "Tipping 18-20% is expected"},
		},
	})
}
