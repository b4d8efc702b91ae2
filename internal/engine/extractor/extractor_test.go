package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-context-engine/internal/models"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Check())
	return New(cfg)
}

func findEntity(entities []models.ExtractedEntity, typ models.EntityType) (models.ExtractedEntity, bool) {
	for _, e := range entities {
		if e.Type == typ {
			return e, true
		}
	}
	return models.ExtractedEntity{}, false
}

func TestExtract_Destinations(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{"plain name", "I want to go to Paris", "Paris"},
		{"case insensitive", "what about LONDON?", "London"},
		{"alias maps to canonical", "we're thinking about the big apple", "New York"},
		{"multi word alias", "flights to new york please", "New York"},
		{"nickname alias", "the city of light sounds romantic", "Paris"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := e.Extract(tt.message)
			ent, ok := findEntity(entities, models.EntityDestination)
			require.True(t, ok, "expected a destination entity")
			assert.Equal(t, tt.expected, ent.Value)
			assert.Equal(t, 0.9, ent.Confidence)
		})
	}
}

func TestExtract_NoSubstringFalsePositives(t *testing.T) {
	e := newTestExtractor(t)

	// "comparison" contains "paris" but must not match on a word boundary.
	entities := e.Extract("here is a comparison of two options")
	_, ok := findEntity(entities, models.EntityDestination)
	assert.False(t, ok)
}

func TestExtract_Dates(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{"iso date", "we leave 2026-09-14", "2026-09-14"},
		{"month day", "arriving June 15", "June 15"},
		{"month day year", "arriving June 15, 2026", "June 15, 2026"},
		{"day of month", "back on the 3rd of July", "3rd of July"},
		{"relative phrase", "maybe next weekend?", "next weekend"},
		{"season", "sometime in summer", "summer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := e.Extract(tt.message)
			ent, ok := findEntity(entities, models.EntityDate)
			require.True(t, ok, "expected a date entity")
			assert.Equal(t, tt.expected, ent.Value)
			assert.Equal(t, 0.8, ent.Confidence)
		})
	}
}

func TestExtract_TravelerCounts(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name     string
		message  string
		expected models.Travelers
	}{
		{"explicit adults", "there will be 4 people", models.Travelers{Adults: 4}},
		{"single adult", "just 1 adult", models.Travelers{Adults: 1}},
		{"adults and kids", "2 adults and 2 kids", models.Travelers{Adults: 2, Children: 2}},
		{"singular child", "2 adults and 1 child", models.Travelers{Adults: 2, Children: 1}},
		{"singular kid", "2 adults and 1 kid", models.Travelers{Adults: 2, Children: 1}},
		{"kids only implies adults", "travelling with 3 children", models.Travelers{Adults: 2, Children: 3}},
		{"single child only implies adults", "bringing 1 child along", models.Travelers{Adults: 2, Children: 1}},
		{"solo idiom", "I'm going solo this time", models.Travelers{Adults: 1}},
		{"couple idiom", "me and my wife", models.Travelers{Adults: 2}},
		{"family idiom", "a family trip", models.Travelers{Adults: 2, Children: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := e.Extract(tt.message)
			ent, ok := findEntity(entities, models.EntityTravelerCount)
			require.True(t, ok, "expected a traveler entity")

			party, parsed := ParseParty(ent.Value)
			require.True(t, parsed)
			assert.Equal(t, tt.expected, party)
		})
	}
}

func TestExtract_ExplicitCountBeatsIdiom(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("family trip, 3 adults and 1 kid")
	ent, ok := findEntity(entities, models.EntityTravelerCount)
	require.True(t, ok)

	party, parsed := ParseParty(ent.Value)
	require.True(t, parsed)
	assert.Equal(t, models.Travelers{Adults: 3, Children: 1}, party)
}

func TestExtract_ActivitiesAndBudget(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("we love museums and hiking, keeping it cheap")

	var activities []string
	for _, ent := range entities {
		if ent.Type == models.EntityActivity {
			activities = append(activities, ent.Value)
		}
	}
	assert.ElementsMatch(t, []string{"museums", "hiking"}, activities)

	budget, ok := findEntity(entities, models.EntityBudgetTier)
	require.True(t, ok)
	assert.Equal(t, "budget", budget.Value)
}

func TestExtract_BudgetTiers(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		message  string
		expected string
	}{
		{"nothing too expensive, keep it affordable", "budget"},
		{"something mid-range works", "mid-range"},
		{"we want a five star experience", "luxury"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			entities := e.Extract(tt.message)
			ent, ok := findEntity(entities, models.EntityBudgetTier)
			require.True(t, ok)
			assert.Equal(t, tt.expected, ent.Value)
		})
	}
}

func TestExtract_EmptyAndNoMatch(t *testing.T) {
	e := newTestExtractor(t)

	assert.Nil(t, e.Extract(""))
	assert.Nil(t, e.Extract("   "))
	assert.Empty(t, e.Extract("hello there, how are you"))
}

func TestExtract_Deterministic(t *testing.T) {
	e := newTestExtractor(t)
	msg := "Paris in summer for 2 adults, we like museums, nothing luxury"

	first := e.Extract(msg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Extract(msg))
	}
}

func TestExtract_DedupesRepeatedMentions(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("Paris, yes Paris, definitely paris")
	count := 0
	for _, ent := range entities {
		if ent.Type == models.EntityDestination {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestParseParty(t *testing.T) {
	tests := []struct {
		value    string
		expected models.Travelers
		ok       bool
	}{
		{"1 adult", models.Travelers{Adults: 1}, true},
		{"2 adults", models.Travelers{Adults: 2}, true},
		{"2 adults, 2 children", models.Travelers{Adults: 2, Children: 2}, true},
		{"2 adults, 1 child, 1 infant", models.Travelers{Adults: 2, Children: 1, Infants: 1}, true},
		{"a bus full", models.Travelers{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			party, ok := ParseParty(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, party)
			}
		})
	}
}

func TestConfigCheck(t *testing.T) {
	t.Run("default passes", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Check())
	})

	t.Run("duplicate alias rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Destinations = append(cfg.Destinations, DestinationPattern{
			Name: "Paris 2", Aliases: []string{"paris"},
		})
		assert.Error(t, cfg.Check())
	})

	t.Run("empty party rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TravelerIdioms = append(cfg.TravelerIdioms, TravelerIdiom{
			Phrases: []string{"the whole crew"},
		})
		assert.Error(t, cfg.Check())
	})

	t.Run("confidence out of range rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Confidence.Date = 1.5
		assert.Error(t, cfg.Check())
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty path falls back to defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.False(t, cfg.IsZero())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("structurally invalid table carries the config code", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "patterns.yaml")
		table := "destinations:\n" +
			"  - name: Paris\n" +
			"    aliases: [paris]\n" +
			"  - name: Paris Beach\n" +
			"    aliases: [paris]\n"
		require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PATTERN_CONFIG_INVALID")
	})
}

func BenchmarkExtract(b *testing.B) {
	e := New(DefaultConfig())
	msg := "Flying to Paris with my wife and 2 kids on 2026-06-10, we love museums and food but want to keep it affordable"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Extract(msg)
	}
}
