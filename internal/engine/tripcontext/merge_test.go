package tripcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-context-engine/internal/models"
)

func newTestMerger() *Merger {
	m := NewMerger(DefaultConfig())
	m.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestMerge_FillsEmptyFieldsWithoutConflict(t *testing.T) {
	m := newTestMerger()
	ctx := models.NewTripContext()

	out, conflicts := m.Merge(ctx, Facts{
		FieldDestinationCity: {Value: "Paris", Confidence: 0.9},
		FieldStartDate:       {Value: "2026-06-10", Confidence: 0.8},
		FieldTravelers:       {Value: models.Travelers{Adults: 2}, Confidence: 0.85},
		FieldBudget:          {Value: "mid-range", Confidence: 0.8},
	}, models.StrategyMostRecent)

	assert.Empty(t, conflicts)
	assert.Equal(t, "Paris", out.DestinationCity)
	assert.Equal(t, "2026-06-10", out.StartDate)
	require.NotNil(t, out.Travelers)
	assert.Equal(t, 2, out.Travelers.Adults)
	assert.Equal(t, "mid-range", out.Budget)

	// Filling empty fields never erodes confidence.
	assert.Equal(t, 1.0, out.Confidence)
	assert.Empty(t, out.ConflictsResolved)
}

func TestMerge_SameValueIsNotAConflict(t *testing.T) {
	m := newTestMerger()
	ctx := models.NewTripContext()
	ctx.DestinationCity = "Paris"

	out, conflicts := m.Merge(ctx, Facts{
		FieldDestinationCity: {Value: "paris", Confidence: 0.9},
	}, models.StrategyMostRecent)

	assert.Empty(t, conflicts)
	assert.Equal(t, "Paris", out.DestinationCity)
	assert.Equal(t, 1.0, out.Confidence)
}

func TestMerge_MostRecentResolvesDestinationChange(t *testing.T) {
	m := newTestMerger()
	ctx := models.NewTripContext()
	ctx.DestinationCity = "London"

	out, conflicts := m.Merge(ctx, Facts{
		FieldDestinationCity: {Value: "Paris", Confidence: 0.9},
	}, models.StrategyMostRecent)

	require.Len(t, conflicts, 1)
	assert.Equal(t, FieldDestinationCity, conflicts[0].Field)
	assert.Equal(t, models.DestinationConflict, conflicts[0].Type)
	assert.Equal(t, "London", conflicts[0].Existing)
	assert.Equal(t, "Paris", conflicts[0].New)
	assert.Equal(t, models.SeverityHigh, conflicts[0].Severity)
	assert.False(t, conflicts[0].RequiresClarification)

	assert.Equal(t, "Paris", out.DestinationCity)
	assert.InDelta(t, 0.85, out.Confidence, 1e-9)

	require.Len(t, out.ConflictsResolved, 1)
	rec := out.ConflictsResolved[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "London", rec.OldValue)
	assert.Equal(t, "Paris", rec.NewValue)
	assert.Equal(t, models.StrategyMostRecent, rec.Strategy)
	assert.Equal(t, m.now(), rec.Timestamp)
}

func TestMerge_SeverityDrivesDecay(t *testing.T) {
	m := newTestMerger()

	tests := []struct {
		name       string
		field      string
		existing   func(*models.TripContext)
		fact       Fact
		confidence float64
	}{
		{
			name:       "date conflict is high severity",
			field:      FieldStartDate,
			existing:   func(c *models.TripContext) { c.StartDate = "2026-06-10" },
			fact:       Fact{Value: "2026-07-01", Confidence: 0.8},
			confidence: 0.85,
		},
		{
			name:       "traveler conflict is medium severity",
			field:      FieldTravelers,
			existing:   func(c *models.TripContext) { t := models.Travelers{Adults: 2}; c.Travelers = &t },
			fact:       Fact{Value: models.Travelers{Adults: 4}, Confidence: 0.85},
			confidence: 0.90,
		},
		{
			name:       "budget conflict is low severity",
			field:      FieldBudget,
			existing:   func(c *models.TripContext) { c.Budget = "luxury" },
			fact:       Fact{Value: "budget", Confidence: 0.8},
			confidence: 0.95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := models.NewTripContext()
			tt.existing(&ctx)

			out, conflicts := m.Merge(ctx, Facts{tt.field: tt.fact}, models.StrategyMostRecent)
			require.Len(t, conflicts, 1)
			assert.InDelta(t, tt.confidence, out.Confidence, 1e-9)
		})
	}
}

func TestMerge_ConfidenceNeverBelowFloor(t *testing.T) {
	m := newTestMerger()
	ctx := models.NewTripContext()
	ctx.DestinationCity = "London"

	cities := []string{"Paris", "Rome", "Tokyo", "Bali", "Dubai", "Sydney", "Cancun", "Bangkok"}
	for _, city := range cities {
		ctx, _ = m.Merge(ctx, Facts{
			FieldDestinationCity: {Value: city, Confidence: 0.9},
		}, models.StrategyMostRecent)
	}

	assert.Equal(t, models.ConfidenceFloor, ctx.Confidence)
	assert.Len(t, ctx.ConflictsResolved, len(cities))
}

func TestMerge_HighestConfidence(t *testing.T) {
	m := newTestMerger()

	t.Run("existing wins against a weaker fact", func(t *testing.T) {
		ctx := models.NewTripContext() // confidence 1.0
		ctx.DestinationCity = "London"

		out, conflicts := m.Merge(ctx, Facts{
			FieldDestinationCity: {Value: "Paris", Confidence: 0.9},
		}, models.StrategyHighestConfidence)

		require.Len(t, conflicts, 1)
		assert.Equal(t, "London", out.DestinationCity)
		// The conflict still happened, so confidence still decays.
		assert.InDelta(t, 0.85, out.Confidence, 1e-9)
		require.Len(t, out.ConflictsResolved, 1)
		assert.Equal(t, "London", out.ConflictsResolved[0].NewValue)
	})

	t.Run("stronger fact wins against an eroded context", func(t *testing.T) {
		ctx := models.NewTripContext()
		ctx.DestinationCity = "London"
		ctx.Confidence = 0.5

		out, _ := m.Merge(ctx, Facts{
			FieldDestinationCity: {Value: "Paris", Confidence: 0.9},
		}, models.StrategyHighestConfidence)

		assert.Equal(t, "Paris", out.DestinationCity)
	})
}

func TestMerge_UserClarification(t *testing.T) {
	m := newTestMerger()

	t.Run("comparable high severity conflict is surfaced, not resolved", func(t *testing.T) {
		ctx := models.NewTripContext()
		ctx.DestinationCity = "London"
		ctx.Confidence = 0.9

		out, conflicts := m.Merge(ctx, Facts{
			FieldDestinationCity: {Value: "Paris", Confidence: 0.9},
		}, models.StrategyUserClarification)

		require.Len(t, conflicts, 1)
		assert.True(t, conflicts[0].RequiresClarification)

		// Field untouched, no decay, no audit record.
		assert.Equal(t, "London", out.DestinationCity)
		assert.Equal(t, 0.9, out.Confidence)
		assert.Empty(t, out.ConflictsResolved)
	})

	t.Run("clear confidence gap falls back to most recent", func(t *testing.T) {
		ctx := models.NewTripContext()
		ctx.DestinationCity = "London"
		ctx.Confidence = 0.5

		out, conflicts := m.Merge(ctx, Facts{
			FieldDestinationCity: {Value: "Paris", Confidence: 0.9},
		}, models.StrategyUserClarification)

		require.Len(t, conflicts, 1)
		assert.False(t, conflicts[0].RequiresClarification)
		assert.Equal(t, "Paris", out.DestinationCity)
	})

	t.Run("low severity conflicts never block", func(t *testing.T) {
		ctx := models.NewTripContext()
		ctx.Budget = "luxury"

		out, conflicts := m.Merge(ctx, Facts{
			FieldBudget: {Value: "budget", Confidence: 1.0},
		}, models.StrategyUserClarification)

		require.Len(t, conflicts, 1)
		assert.False(t, conflicts[0].RequiresClarification)
		assert.Equal(t, "budget", out.Budget)
	})
}

func TestMerge_PreferencesUnion(t *testing.T) {
	m := newTestMerger()
	ctx := models.NewTripContext()
	ctx.Preferences = []string{"museums"}

	out, conflicts := m.Merge(ctx, Facts{
		FieldPreferences: {Value: []string{"hiking", "Museums", "food"}, Confidence: 1.0},
	}, models.StrategyMostRecent)

	assert.Empty(t, conflicts)
	assert.Equal(t, []string{"museums", "hiking", "food"}, out.Preferences)
	assert.Equal(t, 1.0, out.Confidence)
}

func TestMerge_UnknownStrategyFallsBackToMostRecent(t *testing.T) {
	m := newTestMerger()
	ctx := models.NewTripContext()
	ctx.DestinationCity = "London"

	out, conflicts := m.Merge(ctx, Facts{
		FieldDestinationCity: {Value: "Paris", Confidence: 0.9},
	}, models.ResolutionStrategy("SOMETHING_ELSE"))

	require.Len(t, conflicts, 1)
	assert.Equal(t, "Paris", out.DestinationCity)
	require.Len(t, out.ConflictsResolved, 1)
	assert.Equal(t, models.StrategyMostRecent, out.ConflictsResolved[0].Strategy)
}

func TestMerge_InputSnapshotNotMutated(t *testing.T) {
	m := newTestMerger()
	ctx := models.NewTripContext()
	ctx.DestinationCity = "London"
	ctx.Preferences = []string{"museums"}

	_, _ = m.Merge(ctx, Facts{
		FieldDestinationCity: {Value: "Paris", Confidence: 0.9},
		FieldPreferences:     {Value: []string{"hiking"}, Confidence: 1.0},
	}, models.StrategyMostRecent)

	assert.Equal(t, "London", ctx.DestinationCity)
	assert.Equal(t, []string{"museums"}, ctx.Preferences)
	assert.Equal(t, 1.0, ctx.Confidence)
	assert.Empty(t, ctx.ConflictsResolved)
}

func TestValidate(t *testing.T) {
	t.Run("empty context lists all required fields", func(t *testing.T) {
		res := Validate(models.NewTripContext())
		assert.False(t, res.IsComplete)
		assert.Equal(t, []string{FieldDestinationCity, FieldStartDate, FieldTravelers}, res.MissingFields)
	})

	t.Run("partial context lists the remainder", func(t *testing.T) {
		ctx := models.NewTripContext()
		ctx.DestinationCity = "Paris"
		res := Validate(ctx)
		assert.False(t, res.IsComplete)
		assert.Equal(t, []string{FieldStartDate, FieldTravelers}, res.MissingFields)
	})

	t.Run("complete context", func(t *testing.T) {
		ctx := models.NewTripContext()
		ctx.DestinationCity = "Paris"
		ctx.StartDate = "2026-06-10"
		party := models.Travelers{Adults: 2}
		ctx.Travelers = &party

		res := Validate(ctx)
		assert.True(t, res.IsComplete)
		assert.Empty(t, res.MissingFields)
	})
}
