// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-context-engine/internal/common/logger"
	"trip-context-engine/internal/engine"
	"trip-context-engine/internal/models"
	"trip-context-engine/internal/session"

	analyzemessage "trip-context-engine/internal/workers/trip-assistant/analyze-message"
)

// recordingAuditor stands in for the Postgres audit store so the pipeline
// runs without external services.
type recordingAuditor struct {
	records []models.ConflictRecord
}

func (a *recordingAuditor) Record(_ context.Context, _ string, records []models.ConflictRecord) error {
	a.records = append(a.records, records...)
	return nil
}

type pipeline struct {
	handler  *analyzemessage.Handler
	sessions *session.Store
	audit    *recordingAuditor
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logger.NewTestLogger(t)
	sessions := session.NewStore(rdb, time.Hour, log)
	audit := &recordingAuditor{}
	eng := engine.New(engine.Options{Logger: log})

	handler := analyzemessage.NewHandler(
		&analyzemessage.Config{Timeout: 30 * time.Second, AuditBestEffort: true},
		eng, sessions, audit, log,
	)

	return &pipeline{handler: handler, sessions: sessions, audit: audit}
}

func (p *pipeline) turn(t *testing.T, sessionID, message string) *analyzemessage.Output {
	t.Helper()

	out, err := p.handler.Execute(context.Background(), &analyzemessage.Input{
		SessionID: sessionID,
		Message:   message,
	})
	require.NoError(t, err)
	return out
}

// TestFullConversation drives a complete planning conversation through the
// worker handler with a real session store behind it, checking that state
// advances and the trip context accumulates across turns.
func TestFullConversation(t *testing.T) {
	p := newPipeline(t)
	const sessionID = "e2e-trip-1"

	// Turn 1: destination only. Classification runs against the context
	// the turn arrived with, so the stage still reads as destination
	// selection here.
	out := p.turn(t, sessionID, "Hi! We're thinking about a trip to Paris")
	assert.Equal(t, "Paris", out.Context.DestinationCity)
	assert.Equal(t, models.StateDestinationSelection, out.State)
	assert.False(t, out.Validation.IsComplete)
	assert.NotEmpty(t, out.Hints)

	// Turn 2: dates and party size.
	out = p.turn(t, sessionID, "2 adults and 1 child, from 2026-06-10 to 2026-06-20")
	assert.Equal(t, "2026-06-10", out.Context.StartDate)
	assert.Equal(t, "2026-06-20", out.Context.EndDate)
	require.NotNil(t, out.Context.Travelers)
	assert.Equal(t, 2, out.Context.Travelers.Adults)
	assert.Equal(t, 1, out.Context.Travelers.Children)
	assert.True(t, out.Validation.IsComplete)

	// Turn 3: hotel search with everything known.
	out = p.turn(t, sessionID, "great, can you find us a hotel?")
	assert.Equal(t, models.StateHotelSearch, out.State)

	// Turn 4: a destination change mid-conversation.
	out = p.turn(t, sessionID, "actually, let's go to Rome instead")
	assert.Equal(t, "Rome", out.Context.DestinationCity)
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, models.SeverityHigh, out.Conflicts[0].Severity)
	assert.InDelta(t, 0.85, out.Context.Confidence, 1e-9)

	// The conflict reached the audit trail.
	require.Len(t, p.audit.records, 1)
	assert.Equal(t, "destination_city", p.audit.records[0].Field)
	assert.Equal(t, "Paris", p.audit.records[0].OldValue)
	assert.Equal(t, "Rome", p.audit.records[0].NewValue)

	// Turn 5: budget talk. The hotel ask from turn 3 is still inside the
	// keyword window, so the stage stays on hotel search while the budget
	// tier lands in the context.
	out = p.turn(t, sessionID, "we'd like to keep it affordable")
	assert.Equal(t, "budget", out.Context.Budget)
	assert.Equal(t, models.StateHotelSearch, out.State)

	// Turn 6: the hotel mention has rolled out of the window by now.
	out = p.turn(t, sessionID, "what would the daily costs look like?")
	assert.Equal(t, models.StateBudgetDiscussion, out.State)

	// Everything above survived in the session store.
	snap, err := p.sessions.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "Rome", snap.Context.DestinationCity)
	assert.Equal(t, "2026-06-10", snap.Context.StartDate)
	assert.Equal(t, "budget", snap.Context.Budget)
	assert.Len(t, snap.History, 6)
	assert.Len(t, snap.Context.ConflictsResolved, 1)
}

// TestConversationIsolation makes sure two sessions never bleed into each
// other through the shared store.
func TestConversationIsolation(t *testing.T) {
	p := newPipeline(t)

	a := p.turn(t, "e2e-a", "planning a Tokyo trip")
	b := p.turn(t, "e2e-b", "thinking about London")

	assert.Equal(t, "Tokyo", a.Context.DestinationCity)
	assert.Equal(t, "London", b.Context.DestinationCity)

	a2 := p.turn(t, "e2e-a", "what about hotels?")
	assert.Equal(t, "Tokyo", a2.Context.DestinationCity)
}

// TestClarificationRoundTrip checks that a comparable-confidence conflict
// under the clarification strategy leaves the stored context untouched
// until the user answers.
func TestClarificationRoundTrip(t *testing.T) {
	p := newPipeline(t)
	const sessionID = "e2e-clarify"

	p.turn(t, sessionID, "let's plan for Barcelona")

	out, err := p.handler.Execute(context.Background(), &analyzemessage.Input{
		SessionID: sessionID,
		Message:   "or maybe Amsterdam?",
		Strategy:  models.StrategyUserClarification,
	})
	require.NoError(t, err)

	assert.True(t, out.NeedsClarification)
	assert.Equal(t, "Barcelona", out.Context.DestinationCity)
	assert.Empty(t, p.audit.records)

	// The user settles it on the next turn with the default strategy.
	out = p.turn(t, sessionID, "ok, Amsterdam it is")
	assert.Equal(t, "Amsterdam", out.Context.DestinationCity)
	require.Len(t, p.audit.records, 1)
}

func BenchmarkProcessTurn(b *testing.B) {
	eng := engine.New(engine.Options{Logger: logger.NewNoOpLogger()})

	ctx := models.NewTripContext()
	ctx.DestinationCity = "Paris"

	in := engine.TurnInput{
		SessionID: "bench",
		Message:   "2 adults looking for a mid-range hotel, we love museums and food",
		Context:   ctx,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.ProcessTurn(context.Background(), in)
	}
}

func BenchmarkHandler_Execute(b *testing.B) {
	mr, err := miniredis.Run()
	if err != nil {
		b.Fatal(err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	log := logger.NewNoOpLogger()
	handler := analyzemessage.NewHandler(
		&analyzemessage.Config{Timeout: 30 * time.Second, AuditBestEffort: true},
		engine.New(engine.Options{Logger: log}),
		session.NewStore(rdb, time.Hour, log),
		&recordingAuditor{}, log,
	)

	input := &analyzemessage.Input{
		SessionID: "bench",
		Message:   "2 adults to Tokyo next month",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := handler.Execute(context.Background(), input); err != nil {
			b.Fatal(err)
		}
	}
}
