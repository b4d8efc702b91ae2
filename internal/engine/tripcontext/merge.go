// Package tripcontext owns the accumulated trip facts: detecting conflicts
// between known facts and newly extracted ones, resolving them under a
// selectable strategy, and validating completeness.
package tripcontext

import (
	"strings"
	"time"

	"trip-context-engine/internal/models"

	"github.com/google/uuid"
)

// Field names shared with the extraction layer and the audit store.
const (
	FieldDepartureCity   = "departure_city"
	FieldDestinationCity = "destination_city"
	FieldStartDate       = "start_date"
	FieldEndDate         = "end_date"
	FieldTravelers       = "travelers"
	FieldBudget          = "budget"
	FieldPreferences     = "preferences"
)

// mergeOrder fixes the field iteration order so merges are deterministic.
var mergeOrder = []string{
	FieldDepartureCity,
	FieldDestinationCity,
	FieldStartDate,
	FieldEndDate,
	FieldTravelers,
	FieldBudget,
	FieldPreferences,
}

// Fact is one newly extracted value with its recorded confidence. Value is
// a string for city/date/budget fields, models.Travelers for travelers and
// []string for preferences.
type Fact struct {
	Value      interface{}
	Confidence float64
}

// Facts maps field names to newly extracted values.
type Facts map[string]Fact

// Config holds the confidence-decay amounts per severity, the floor below
// which automatic resolution never pushes the aggregate confidence, and
// the confidence gap under which two values count as comparable.
type Config struct {
	DecayHigh            float64
	DecayMedium          float64
	DecayLow             float64
	Floor                float64
	ClarificationEpsilon float64
}

// DefaultConfig mirrors the shipped configuration defaults.
func DefaultConfig() Config {
	return Config{
		DecayHigh:            0.15,
		DecayMedium:          0.10,
		DecayLow:             0.05,
		Floor:                models.ConfidenceFloor,
		ClarificationEpsilon: 0.1,
	}
}

// resolution is what a resolver decided for one conflict.
type resolution struct {
	winner  string // stringified winning value
	applied bool   // field was changed or confirmed; decay and record follow
	clarify bool   // field left untouched, caller must ask the user
}

// resolver decides the outcome of one conflict under one strategy.
// prior is the aggregate confidence the context carried into this merge;
// it stands in for the recorded confidence of the existing value.
type resolver func(m *Merger, c models.Conflict, f Fact, prior float64) resolution

// Merger applies new facts to a context snapshot. Strategies dispatch
// through a fixed table so adding one is a type-checked change.
type Merger struct {
	cfg       Config
	now       func() time.Time
	resolvers map[models.ResolutionStrategy]resolver
}

// NewMerger builds a Merger with the given tuning.
func NewMerger(cfg Config) *Merger {
	m := &Merger{cfg: cfg, now: time.Now}
	m.resolvers = map[models.ResolutionStrategy]resolver{
		models.StrategyMostRecent:        resolveMostRecent,
		models.StrategyHighestConfidence: resolveHighestConfidence,
		models.StrategyMerge:             resolveMostRecent, // MERGE binds set fields; scalars fall back
		models.StrategyUserClarification: resolveUserClarification,
	}
	return m
}

// Merge applies new facts to a copy of the context and returns the updated
// copy plus every conflict encountered. The input snapshot is never
// mutated. Unknown strategies fall back to MOST_RECENT.
func (m *Merger) Merge(ctx models.TripContext, facts Facts, strategy models.ResolutionStrategy) (models.TripContext, []models.Conflict) {
	out := ctx.Clone()
	if out.Confidence == 0 {
		out.Confidence = 1.0
	}
	prior := out.Confidence

	resolve, ok := m.resolvers[strategy]
	if !ok {
		resolve = resolveMostRecent
		strategy = models.StrategyMostRecent
	}

	var conflicts []models.Conflict

	for _, field := range mergeOrder {
		fact, present := facts[field]
		if !present {
			continue
		}

		if field == FieldPreferences {
			// Set-valued: always union, never a conflict record.
			mergePreferences(&out, fact)
			continue
		}

		existing := fieldValue(out, field)
		newVal := stringify(fact.Value)
		if existing == "" {
			setField(&out, field, fact)
			continue
		}
		if equalNormalized(existing, newVal) {
			continue
		}

		conflict := models.Conflict{
			Field:    field,
			Type:     conflictTypeFor(field),
			Existing: existing,
			New:      newVal,
			Severity: severityFor(field),
		}

		res := resolve(m, conflict, fact, prior)
		if res.clarify {
			conflict.RequiresClarification = true
			conflicts = append(conflicts, conflict)
			continue
		}
		if res.applied {
			if res.winner == newVal {
				setField(&out, field, fact)
			}
			out.Confidence = m.decay(out.Confidence, conflict.Severity)
			out.ConflictsResolved = append(out.ConflictsResolved, models.ConflictRecord{
				ID:        uuid.NewString(),
				Field:     field,
				OldValue:  existing,
				NewValue:  res.winner,
				Strategy:  strategy,
				Timestamp: m.now().UTC(),
			})
		}
		conflicts = append(conflicts, conflict)
	}

	return out, conflicts
}

func resolveMostRecent(_ *Merger, c models.Conflict, _ Fact, _ float64) resolution {
	return resolution{winner: c.New, applied: true}
}

func resolveHighestConfidence(_ *Merger, c models.Conflict, f Fact, prior float64) resolution {
	if f.Confidence > prior {
		return resolution{winner: c.New, applied: true}
	}
	return resolution{winner: c.Existing, applied: true}
}

// resolveUserClarification refuses to guess on high-severity conflicts
// whose confidences are comparable; everything else falls back to the
// most-recent rule.
func resolveUserClarification(m *Merger, c models.Conflict, f Fact, prior float64) resolution {
	if c.Severity == models.SeverityHigh && abs(f.Confidence-prior) <= m.cfg.ClarificationEpsilon {
		return resolution{clarify: true}
	}
	return resolution{winner: c.New, applied: true}
}

func (m *Merger) decay(confidence float64, severity models.Severity) float64 {
	switch severity {
	case models.SeverityHigh:
		confidence -= m.cfg.DecayHigh
	case models.SeverityMedium:
		confidence -= m.cfg.DecayMedium
	default:
		confidence -= m.cfg.DecayLow
	}
	if confidence < m.cfg.Floor {
		return m.cfg.Floor
	}
	return confidence
}

// ValidationResult reports whether a context has the facts required to
// move toward booking.
type ValidationResult struct {
	IsComplete    bool     `json:"isComplete"`
	MissingFields []string `json:"missingFields"`
}

// Validate checks completeness without mutating anything. A context is
// complete when destination, start date and traveler count are known.
func Validate(ctx models.TripContext) ValidationResult {
	var missing []string
	if !ctx.HasDestination() {
		missing = append(missing, FieldDestinationCity)
	}
	if !ctx.HasDates() {
		missing = append(missing, FieldStartDate)
	}
	if !ctx.HasTravelers() {
		missing = append(missing, FieldTravelers)
	}
	return ValidationResult{
		IsComplete:    len(missing) == 0,
		MissingFields: missing,
	}
}

func conflictTypeFor(field string) models.ConflictType {
	switch field {
	case FieldDepartureCity, FieldDestinationCity:
		return models.DestinationConflict
	case FieldStartDate, FieldEndDate:
		return models.DateConflict
	case FieldTravelers:
		return models.TravelerConflict
	default:
		return models.BudgetConflict
	}
}

func severityFor(field string) models.Severity {
	switch field {
	case FieldDepartureCity, FieldDestinationCity, FieldStartDate, FieldEndDate:
		return models.SeverityHigh
	case FieldTravelers:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func fieldValue(ctx models.TripContext, field string) string {
	switch field {
	case FieldDepartureCity:
		return ctx.DepartureCity
	case FieldDestinationCity:
		return ctx.DestinationCity
	case FieldStartDate:
		return ctx.StartDate
	case FieldEndDate:
		return ctx.EndDate
	case FieldTravelers:
		if ctx.Travelers == nil || ctx.Travelers.IsZero() {
			return ""
		}
		return ctx.Travelers.String()
	case FieldBudget:
		return ctx.Budget
	}
	return ""
}

func setField(ctx *models.TripContext, field string, fact Fact) {
	switch field {
	case FieldDepartureCity:
		ctx.DepartureCity = stringify(fact.Value)
	case FieldDestinationCity:
		ctx.DestinationCity = stringify(fact.Value)
	case FieldStartDate:
		ctx.StartDate = stringify(fact.Value)
	case FieldEndDate:
		ctx.EndDate = stringify(fact.Value)
	case FieldTravelers:
		if t, ok := fact.Value.(models.Travelers); ok {
			party := t
			ctx.Travelers = &party
		}
	case FieldBudget:
		ctx.Budget = stringify(fact.Value)
	}
}

func mergePreferences(ctx *models.TripContext, fact Fact) {
	prefs, ok := fact.Value.([]string)
	if !ok {
		if s, isStr := fact.Value.(string); isStr {
			prefs = []string{s}
		} else {
			return
		}
	}
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" || ctx.HasPreference(p) {
			continue
		}
		ctx.Preferences = append(ctx.Preferences, p)
	}
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case models.Travelers:
		return val.String()
	case *models.Travelers:
		if val == nil {
			return ""
		}
		return val.String()
	}
	return ""
}

func equalNormalized(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
