// Package engine runs the full conversation-turn pipeline: entity
// extraction, stage classification, context merge with conflict
// resolution, and hint generation. The pipeline is pure with respect to
// the caller's context snapshot; the updated context comes back in the
// result and persisting it is the caller's job.
package engine

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"trip-context-engine/internal/common/config"
	"trip-context-engine/internal/common/errors"
	"trip-context-engine/internal/common/logger"
	"trip-context-engine/internal/common/metrics"
	"trip-context-engine/internal/engine/classifier"
	"trip-context-engine/internal/engine/extractor"
	"trip-context-engine/internal/engine/hints"
	"trip-context-engine/internal/engine/knowledge"
	"trip-context-engine/internal/engine/tripcontext"
	"trip-context-engine/internal/models"
)

// Options assembles an Engine. Zero-value sub-configs fall back to the
// built-in defaults, so engine.New(engine.Options{Logger: log}) yields a
// fully working engine.
type Options struct {
	Patterns    extractor.Config
	Classifier  classifier.Config
	Merger      tripcontext.Config
	Hints       hints.Config
	Knowledge   *knowledge.Base
	Suggestions SuggestionSource

	// SuggestionTimeout bounds one Suggest call. Zero disables the
	// external source entirely.
	SuggestionTimeout time.Duration

	Logger logger.Logger
}

// OptionsFromConfig builds Options from the application configuration,
// loading the pattern and knowledge files it points at.
func OptionsFromConfig(cfg config.EngineConfig, log logger.Logger) (Options, error) {
	patterns, err := extractor.LoadConfig(cfg.PatternsPath)
	if err != nil {
		return Options{}, err
	}
	kb, err := knowledge.Load(cfg.KnowledgePath)
	if err != nil {
		return Options{}, err
	}

	cls := classifier.DefaultConfig()
	cls.HistoryWindow = cfg.HistoryWindow

	return Options{
		Patterns:   patterns,
		Classifier: cls,
		Merger: tripcontext.Config{
			DecayHigh:            cfg.Decay.High,
			DecayMedium:          cfg.Decay.Medium,
			DecayLow:             cfg.Decay.Low,
			Floor:                cfg.ConfidenceFloor,
			ClarificationEpsilon: cfg.ClarificationEpsilon,
		},
		Hints:             hints.Config{MaxHints: cfg.HintCap},
		Knowledge:         kb,
		SuggestionTimeout: time.Duration(cfg.SuggestionTimeout) * time.Millisecond,
		Logger:            log,
	}, nil
}

// TurnInput is one user message plus the session state it arrives with.
type TurnInput struct {
	SessionID string
	Message   string
	Context   models.TripContext
	History   []models.Message

	// Strategy selects conflict resolution for this turn. Empty means
	// MOST_RECENT.
	Strategy models.ResolutionStrategy
}

// TurnResult is everything one pipeline pass produced.
type TurnResult struct {
	TurnID    string
	Context   models.TripContext
	State     models.ConversationState
	Entities  []models.ExtractedEntity
	Hints     []models.Hint
	Conflicts []models.Conflict

	// NeedsClarification is set when at least one conflict was left
	// unresolved for the user to settle.
	NeedsClarification bool
}

// Engine is the assembled pipeline. All components are read-only after
// construction, so one Engine serves concurrent turns.
type Engine struct {
	extractor  *extractor.Extractor
	classifier *classifier.Classifier
	merger     *tripcontext.Merger
	hints      *hints.Generator
	suggest    SuggestionSource
	timeout    time.Duration
	hintCap    int
	log        logger.Logger
}

// New assembles an Engine from Options.
func New(opts Options) *Engine {
	if opts.Patterns.IsZero() {
		opts.Patterns = extractor.DefaultConfig()
	}
	if opts.Classifier.HistoryWindow == 0 && len(opts.Classifier.HotelKeywords) == 0 {
		opts.Classifier = classifier.DefaultConfig()
	}
	if opts.Merger == (tripcontext.Config{}) {
		opts.Merger = tripcontext.DefaultConfig()
	}
	if opts.Hints.MaxHints == 0 {
		opts.Hints = hints.DefaultConfig()
	}
	if opts.Knowledge == nil {
		opts.Knowledge = knowledge.Default()
	}
	if opts.Suggestions == nil {
		opts.Suggestions = NoopSuggestions{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}

	return &Engine{
		extractor:  extractor.New(opts.Patterns),
		classifier: classifier.New(opts.Classifier),
		merger:     tripcontext.NewMerger(opts.Merger),
		hints:      hints.New(opts.Hints, opts.Knowledge),
		suggest:    opts.Suggestions,
		timeout:    opts.SuggestionTimeout,
		hintCap:    opts.Hints.MaxHints,
		log:        opts.Logger,
	}
}

// ProcessTurn runs one message through extract, classify, merge and hint
// generation. The input context snapshot is never mutated.
func (e *Engine) ProcessTurn(ctx context.Context, in TurnInput) TurnResult {
	start := time.Now()

	entities := e.extractor.Extract(in.Message)
	for _, ent := range entities {
		metrics.EntitiesExtracted.WithLabelValues(string(ent.Type)).Inc()
	}

	history := append(append([]models.Message(nil), in.History...), models.Message{
		Role:      "user",
		Content:   in.Message,
		Timestamp: start.UTC(),
	})
	state := e.classifier.Classify(history, in.Context)

	merged, conflicts := e.merger.Merge(in.Context, FactsFromEntities(entities), in.Strategy)

	needsClarification := false
	for _, c := range conflicts {
		metrics.ConflictsDetected.WithLabelValues(string(c.Severity)).Inc()
		if c.RequiresClarification {
			needsClarification = true
			metrics.ClarificationsFlagged.Inc()
		}
	}

	hintList := e.hints.Generate(state, merged, entities)
	hintList = e.appendSuggestions(ctx, state, merged, hintList)
	for _, h := range hintList {
		metrics.HintsEmitted.WithLabelValues(h.Type).Inc()
	}

	metrics.TurnsProcessed.WithLabelValues(string(state)).Inc()
	metrics.TurnDuration.Observe(time.Since(start).Seconds())

	e.log.Info("turn processed", map[string]interface{}{
		"sessionId":          in.SessionID,
		"state":              string(state),
		"entities":           len(entities),
		"conflicts":          len(conflicts),
		"hints":              len(hintList),
		"needsClarification": needsClarification,
		"confidence":         merged.Confidence,
		"durationMs":         time.Since(start).Milliseconds(),
	})

	return TurnResult{
		TurnID:             uuid.NewString(),
		Context:            merged,
		State:              state,
		Entities:           entities,
		Hints:              hintList,
		Conflicts:          conflicts,
		NeedsClarification: needsClarification,
	}
}

// Validate reports whether a context holds enough facts to search and
// book.
func (e *Engine) Validate(ctx models.TripContext) tripcontext.ValidationResult {
	return tripcontext.Validate(ctx)
}

// appendSuggestions asks the external source for extra hint texts under a
// deadline. Failures and timeouts are logged and swallowed; table hints
// always keep priority, and the combined list is re-capped.
func (e *Engine) appendSuggestions(ctx context.Context, state models.ConversationState, trip models.TripContext, base []models.Hint) []models.Hint {
	if e.timeout <= 0 {
		return base
	}
	if _, ok := e.suggest.(NoopSuggestions); ok {
		return base
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	texts, err := e.suggest.Suggest(callCtx, state, trip)
	if err != nil {
		stdErr := suggestionError(err)
		e.log.Warn("suggestion source failed, continuing with table hints", map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": stdErr.Error(),
			"state": string(state),
		})
		return base
	}

	extra := make([]models.Hint, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		extra = append(extra, models.Hint{
			Type:   "suggestion",
			Text:   text,
			Action: "llm_suggestion_" + strconv.Itoa(i),
		})
	}
	return hints.Merge(e.hintCap, base, extra)
}

// suggestionError folds a Suggest failure into the shared error codes.
// Deadline hits become SUGGESTION_TIMEOUT, everything else
// SUGGESTION_FAILED; neither is retryable, the turn degrades to table
// hints either way.
func suggestionError(err error) *errors.StandardError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewSuggestionTimeoutError()
	}
	return errors.NewSuggestionFailedError(err)
}

// FactsFromEntities converts extracted entities into merge facts. The
// first destination becomes the destination city, the first two dates
// become start and end, and activities accumulate as preferences.
func FactsFromEntities(entities []models.ExtractedEntity) tripcontext.Facts {
	facts := tripcontext.Facts{}
	var dates []models.ExtractedEntity
	var prefs []string

	for _, ent := range entities {
		switch ent.Type {
		case models.EntityDestination:
			if _, ok := facts[tripcontext.FieldDestinationCity]; !ok {
				facts[tripcontext.FieldDestinationCity] = tripcontext.Fact{Value: ent.Value, Confidence: ent.Confidence}
			}
		case models.EntityDate:
			dates = append(dates, ent)
		case models.EntityTravelerCount:
			if _, ok := facts[tripcontext.FieldTravelers]; ok {
				continue
			}
			if party, ok := extractor.ParseParty(ent.Value); ok {
				facts[tripcontext.FieldTravelers] = tripcontext.Fact{Value: party, Confidence: ent.Confidence}
			}
		case models.EntityBudgetTier:
			if _, ok := facts[tripcontext.FieldBudget]; !ok {
				facts[tripcontext.FieldBudget] = tripcontext.Fact{Value: ent.Value, Confidence: ent.Confidence}
			}
		case models.EntityActivity:
			prefs = append(prefs, ent.Value)
		}
	}

	if len(dates) > 0 {
		facts[tripcontext.FieldStartDate] = tripcontext.Fact{Value: dates[0].Value, Confidence: dates[0].Confidence}
	}
	if len(dates) > 1 {
		facts[tripcontext.FieldEndDate] = tripcontext.Fact{Value: dates[1].Value, Confidence: dates[1].Confidence}
	}
	if len(prefs) > 0 {
		facts[tripcontext.FieldPreferences] = tripcontext.Fact{Value: prefs, Confidence: 1.0}
	}
	return facts
}
