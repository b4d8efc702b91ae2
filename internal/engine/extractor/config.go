package extractor

import (
	"fmt"

	"github.com/spf13/viper"

	"trip-context-engine/internal/common/errors"
	"trip-context-engine/internal/models"
)

// Config is the immutable pattern table the extractor is built from.
// It is injected at construction so tests can substitute their own tables
// and nothing hides in package-level globals.
type Config struct {
	Destinations     []DestinationPattern `mapstructure:"destinations"`
	TravelerIdioms   []TravelerIdiom      `mapstructure:"traveler_idioms"`
	ActivityKeywords []string             `mapstructure:"activity_keywords"`
	BudgetTiers      []BudgetTier         `mapstructure:"budget_tiers"`
	Dates            DateConfig           `mapstructure:"dates"`
	Confidence       ConfidenceConfig     `mapstructure:"confidence"`
}

// DestinationPattern maps alias phrases to a canonical destination name.
type DestinationPattern struct {
	Name    string   `mapstructure:"name"`
	Region  string   `mapstructure:"region"`
	Aliases []string `mapstructure:"aliases"`
}

// TravelerIdiom maps phrases like "solo" or "family" to a party composition.
type TravelerIdiom struct {
	Phrases []string         `mapstructure:"phrases"`
	Party   models.Travelers `mapstructure:"party"`
}

// BudgetTier maps keywords to a budget tier name.
type BudgetTier struct {
	Tier     string   `mapstructure:"tier"`
	Keywords []string `mapstructure:"keywords"`
}

// DateConfig holds the relative and seasonal date phrase tables. Absolute
// dates are matched by fixed regexes, not configuration.
type DateConfig struct {
	RelativePhrases []string `mapstructure:"relative_phrases"`
	Seasons         []string `mapstructure:"seasons"`
}

// ConfidenceConfig is the static score assigned per pattern class.
// Scores are fixed per class, not learned and not frequency-adjusted.
type ConfidenceConfig struct {
	Destination float64 `mapstructure:"destination"`
	Date        float64 `mapstructure:"date"`
	Traveler    float64 `mapstructure:"traveler"`
	Activity    float64 `mapstructure:"activity"`
	Budget      float64 `mapstructure:"budget"`
}

// DefaultConfig returns the built-in pattern tables. The engine works with
// these when no patterns file is configured.
func DefaultConfig() Config {
	return Config{
		Destinations: []DestinationPattern{
			{Name: "Paris", Region: "Europe", Aliases: []string{"paris", "city of light"}},
			{Name: "London", Region: "Europe", Aliases: []string{"london"}},
			{Name: "Rome", Region: "Europe", Aliases: []string{"rome"}},
			{Name: "Barcelona", Region: "Europe", Aliases: []string{"barcelona"}},
			{Name: "Amsterdam", Region: "Europe", Aliases: []string{"amsterdam"}},
			{Name: "Tokyo", Region: "Asia", Aliases: []string{"tokyo"}},
			{Name: "Bangkok", Region: "Asia", Aliases: []string{"bangkok"}},
			{Name: "Bali", Region: "Asia", Aliases: []string{"bali"}},
			{Name: "Dubai", Region: "Middle East", Aliases: []string{"dubai"}},
			{Name: "New York", Region: "North America", Aliases: []string{"new york", "nyc", "big apple"}},
			{Name: "Sydney", Region: "Oceania", Aliases: []string{"sydney"}},
			{Name: "Cancun", Region: "North America", Aliases: []string{"cancun"}},
		},
		TravelerIdioms: []TravelerIdiom{
			{Phrases: []string{"solo", "by myself", "alone", "just me"}, Party: models.Travelers{Adults: 1}},
			{Phrases: []string{"couple", "my wife", "my husband", "my partner", "the two of us"}, Party: models.Travelers{Adults: 2}},
			{Phrases: []string{"family", "with the kids", "with my kids", "with our children"}, Party: models.Travelers{Adults: 2, Children: 2}},
		},
		ActivityKeywords: []string{
			"museum", "museums", "hiking", "beach", "beaches", "snorkeling",
			"food", "restaurants", "shopping", "nightlife", "culture",
			"sightseeing", "skiing", "surfing", "temples", "art",
		},
		BudgetTiers: []BudgetTier{
			{Tier: "budget", Keywords: []string{"cheap", "budget", "affordable", "low cost", "backpacking"}},
			{Tier: "mid-range", Keywords: []string{"mid-range", "midrange", "moderate", "reasonable"}},
			{Tier: "luxury", Keywords: []string{"luxury", "luxurious", "five star", "5 star", "high end", "splurge"}},
		},
		Dates: DateConfig{
			RelativePhrases: []string{
				"today", "tomorrow", "this weekend", "next weekend",
				"next week", "next month", "in a few weeks", "end of the month",
			},
			Seasons: []string{"spring", "summer", "autumn", "fall", "winter"},
		},
		Confidence: ConfidenceConfig{
			Destination: 0.9,
			Date:        0.8,
			Traveler:    0.85,
			Activity:    0.7,
			Budget:      0.8,
		},
	}
}

// IsZero reports whether the table is completely empty, which callers
// treat as "use the defaults".
func (c Config) IsZero() bool {
	return len(c.Destinations) == 0 && len(c.TravelerIdioms) == 0 &&
		len(c.ActivityKeywords) == 0 && len(c.BudgetTiers) == 0 &&
		len(c.Dates.RelativePhrases) == 0 && len(c.Dates.Seasons) == 0
}

// LoadConfig reads a pattern table from a YAML file. An empty path falls
// back to the built-in defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("failed to read patterns file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.NewPatternConfigInvalidError(fmt.Sprintf("patterns file %s: %v", path, err))
	}

	if err := cfg.Check(); err != nil {
		return Config{}, errors.NewPatternConfigInvalidError(err.Error())
	}
	return cfg, nil
}

// Check reports structural problems in a pattern table: destinations
// without aliases, idioms without a party, tiers without keywords, or
// confidence scores outside [0,1].
func (c Config) Check() error {
	seen := map[string]string{}
	for _, d := range c.Destinations {
		if d.Name == "" {
			return fmt.Errorf("destination with empty canonical name")
		}
		if len(d.Aliases) == 0 {
			return fmt.Errorf("destination %q has no aliases", d.Name)
		}
		for _, a := range d.Aliases {
			if prev, dup := seen[a]; dup {
				return fmt.Errorf("alias %q claimed by both %q and %q", a, prev, d.Name)
			}
			seen[a] = d.Name
		}
	}
	for _, idiom := range c.TravelerIdioms {
		if len(idiom.Phrases) == 0 {
			return fmt.Errorf("traveler idiom with no phrases")
		}
		if idiom.Party.IsZero() {
			return fmt.Errorf("traveler idiom %v maps to an empty party", idiom.Phrases)
		}
	}
	for _, tier := range c.BudgetTiers {
		if tier.Tier == "" || len(tier.Keywords) == 0 {
			return fmt.Errorf("budget tier %q has no keywords", tier.Tier)
		}
	}
	for _, score := range []float64{
		c.Confidence.Destination, c.Confidence.Date, c.Confidence.Traveler,
		c.Confidence.Activity, c.Confidence.Budget,
	} {
		if score < 0 || score > 1 {
			return fmt.Errorf("confidence score %v outside [0,1]", score)
		}
	}
	return nil
}
