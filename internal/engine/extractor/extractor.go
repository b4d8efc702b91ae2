// Package extractor turns a raw user message into typed, confidence-scored
// travel entities. Matching is pattern-table driven and heuristic: it never
// errors, it just returns nothing when nothing matches.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"trip-context-engine/internal/models"
)

var (
	isoDateRe   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	monthDateRe = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`)
	dayMonthRe  = regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?(January|February|March|April|May|June|July|August|September|October|November|December)(?:,?\s+\d{4})?\b`)

	adultCountRe = regexp.MustCompile(`\b(\d{1,2})\s*(?:people|persons?|adults?|travellers?|travelers?|guests?|of us)\b`)
	childCountRe = regexp.MustCompile(`\b(\d{1,2})\s*(?:kids?|child(?:ren)?)\b`)

	moneyRe = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d+)?|\b\d[\d,]*\s?(?:usd|dollars|eur|euros)\b`)

	partyValueRe = regexp.MustCompile(`(\d+)\s+adults?(?:,\s*(\d+)\s+child(?:ren)?)?(?:,\s*(\d+)\s+infants?)?`)
)

// Extractor scans messages against compiled pattern tables. It holds only
// read-only state after construction and is safe for concurrent use.
type Extractor struct {
	cfg Config

	destMatchers     []destMatcher
	idiomMatchers    []idiomMatcher
	activityMatchers []phraseMatcher
	tierMatchers     []tierMatcher
	relativeMatchers []phraseMatcher
	seasonMatchers   []phraseMatcher
}

type destMatcher struct {
	name string
	re   *regexp.Regexp
}

type idiomMatcher struct {
	party models.Travelers
	re    *regexp.Regexp
}

type phraseMatcher struct {
	phrase string
	re     *regexp.Regexp
}

type tierMatcher struct {
	tier string
	re   *regexp.Regexp
}

// New compiles the pattern tables into an Extractor.
func New(cfg Config) *Extractor {
	e := &Extractor{cfg: cfg}

	for _, d := range cfg.Destinations {
		for _, alias := range d.Aliases {
			e.destMatchers = append(e.destMatchers, destMatcher{name: d.Name, re: wordRe(alias)})
		}
	}
	for _, idiom := range cfg.TravelerIdioms {
		for _, phrase := range idiom.Phrases {
			e.idiomMatchers = append(e.idiomMatchers, idiomMatcher{party: idiom.Party, re: wordRe(phrase)})
		}
	}
	for _, kw := range cfg.ActivityKeywords {
		e.activityMatchers = append(e.activityMatchers, phraseMatcher{phrase: kw, re: wordRe(kw)})
	}
	for _, tier := range cfg.BudgetTiers {
		for _, kw := range tier.Keywords {
			e.tierMatchers = append(e.tierMatchers, tierMatcher{tier: tier.Tier, re: wordRe(kw)})
		}
	}
	for _, phrase := range cfg.Dates.RelativePhrases {
		e.relativeMatchers = append(e.relativeMatchers, phraseMatcher{phrase: phrase, re: wordRe(phrase)})
	}
	for _, season := range cfg.Dates.Seasons {
		e.seasonMatchers = append(e.seasonMatchers, phraseMatcher{phrase: season, re: wordRe(season)})
	}

	return e
}

func wordRe(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
}

// Extract scans one message and returns every matching entity in pattern
// order. Repeated calls with the same message return identical results:
// the only state consulted is the compiled table.
func (e *Extractor) Extract(message string) []models.ExtractedEntity {
	if strings.TrimSpace(message) == "" {
		return nil
	}

	var out []models.ExtractedEntity
	seen := map[string]bool{}

	add := func(t models.EntityType, value string, confidence float64) {
		key := string(t) + "|" + strings.ToLower(value)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, models.ExtractedEntity{Type: t, Value: value, Confidence: confidence})
	}

	for _, m := range e.destMatchers {
		if m.re.MatchString(message) {
			add(models.EntityDestination, m.name, e.cfg.Confidence.Destination)
		}
	}

	for _, re := range []*regexp.Regexp{isoDateRe, monthDateRe, dayMonthRe} {
		for _, match := range re.FindAllString(message, -1) {
			add(models.EntityDate, strings.TrimSpace(match), e.cfg.Confidence.Date)
		}
	}
	for _, m := range e.relativeMatchers {
		if m.re.MatchString(message) {
			add(models.EntityDate, m.phrase, e.cfg.Confidence.Date)
		}
	}
	for _, m := range e.seasonMatchers {
		if m.re.MatchString(message) {
			add(models.EntityDate, m.phrase, e.cfg.Confidence.Date)
		}
	}

	if party, ok := e.matchParty(message); ok {
		add(models.EntityTravelerCount, party.String(), e.cfg.Confidence.Traveler)
	}

	for _, m := range e.activityMatchers {
		if m.re.MatchString(message) {
			add(models.EntityActivity, m.phrase, e.cfg.Confidence.Activity)
		}
	}

	for _, m := range e.tierMatchers {
		if m.re.MatchString(message) {
			add(models.EntityBudgetTier, m.tier, e.cfg.Confidence.Budget)
		}
	}
	for _, match := range moneyRe.FindAllString(message, -1) {
		add(models.EntityBudgetTier, strings.TrimSpace(match), e.cfg.Confidence.Budget)
	}

	return out
}

// matchParty resolves the party composition from explicit counts first,
// then idiom phrases. Explicit counts win because "3 adults" is more
// precise than whatever idiom happens to co-occur.
func (e *Extractor) matchParty(message string) (models.Travelers, bool) {
	var party models.Travelers
	matched := false

	if m := adultCountRe.FindStringSubmatch(strings.ToLower(message)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			party.Adults = n
			matched = true
		}
	}
	if m := childCountRe.FindStringSubmatch(strings.ToLower(message)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			party.Children = n
			matched = true
			if party.Adults == 0 {
				// Kids never travel unaccompanied; assume two adults.
				party.Adults = 2
			}
		}
	}
	if matched {
		return party, true
	}

	for _, m := range e.idiomMatchers {
		if m.re.MatchString(message) {
			return m.party, true
		}
	}

	return models.Travelers{}, false
}

// ParseParty parses a canonical party value back into a Travelers struct.
// It accepts only the format FormatParty produces.
func ParseParty(value string) (models.Travelers, bool) {
	m := partyValueRe.FindStringSubmatch(value)
	if m == nil {
		return models.Travelers{}, false
	}
	var party models.Travelers
	party.Adults, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		party.Children, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		party.Infants, _ = strconv.Atoi(m[3])
	}
	return party, !party.IsZero()
}
