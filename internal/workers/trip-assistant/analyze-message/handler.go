// Package analyzemessage is the Zeebe worker that runs one conversation
// turn: load the session snapshot, run the engine pipeline, persist the
// updated snapshot and write the conflict audit trail, then complete the
// job with the turn result.
package analyzemessage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"trip-context-engine/internal/common/errors"
	"trip-context-engine/internal/common/logger"
	"trip-context-engine/internal/common/validation"
	"trip-context-engine/internal/engine"
	"trip-context-engine/internal/models"
	"trip-context-engine/internal/session"
)

const (
	TaskType = "analyze-trip-message"

	maxHistory = 20
)

// Auditor is the slice of the audit store the handler needs.
type Auditor interface {
	Record(ctx context.Context, sessionID string, records []models.ConflictRecord) error
}

// Sessions is the slice of the session store the handler needs.
type Sessions interface {
	GetOrNew(ctx context.Context, sessionID string) (session.Snapshot, error)
	Put(ctx context.Context, snap session.Snapshot) error
}

type Handler struct {
	config   *Config
	engine   *engine.Engine
	sessions Sessions
	audit    Auditor
	logger   logger.Logger
}

func NewHandler(config *Config, eng *engine.Engine, sessions Sessions, audit Auditor, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		engine:   eng,
		sessions: sessions,
		audit:    audit,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	raw := []byte(job.Variables)
	check, err := validation.ValidateJSON(raw, InputSchema)
	if err != nil {
		h.failJob(client, job, errors.NewPayloadValidationFailedError(err.Error()))
		return err
	}
	if !check.Valid {
		valErr := errors.NewPayloadValidationFailedError(check.ErrorSummary())
		h.failJob(client, job, valErr)
		return valErr
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		decErr := errors.NewPayloadValidationFailedError(err.Error())
		h.failJob(client, job, decErr)
		return decErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return err
	}

	h.completeJob(client, job, output)
	return nil
}

// execute runs one turn against the session snapshot. The audit write is
// best effort by default: a turn's result is still returned when only the
// audit insert failed.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	snap, err := h.sessions.GetOrNew(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	priorRecords := len(snap.Context.ConflictsResolved)

	result := h.engine.ProcessTurn(ctx, engine.TurnInput{
		SessionID: input.SessionID,
		Message:   input.Message,
		Context:   snap.Context,
		History:   snap.History,
		Strategy:  input.Strategy,
	})

	snap.Context = result.Context
	snap.State = result.State
	snap.History = append(snap.History, models.Message{
		Role:      "user",
		Content:   input.Message,
		Timestamp: time.Now().UTC(),
	})
	// Snapshots carry only the recent tail; the classifier never looks
	// further back than its window.
	if len(snap.History) > maxHistory {
		snap.History = snap.History[len(snap.History)-maxHistory:]
	}
	if err := h.sessions.Put(ctx, snap); err != nil {
		return nil, err
	}

	newRecords := result.Context.ConflictsResolved[priorRecords:]
	if len(newRecords) > 0 && h.audit != nil {
		if err := h.audit.Record(ctx, input.SessionID, newRecords); err != nil {
			if !h.config.AuditBestEffort {
				return nil, err
			}
			h.logger.Warn("audit write failed, continuing", map[string]interface{}{
				"sessionId": input.SessionID,
				"error":     err.Error(),
			})
		}
	}

	h.logger.Info("turn analyzed", map[string]interface{}{
		"sessionId":          input.SessionID,
		"state":              string(result.State),
		"entityCount":        len(result.Entities),
		"conflictCount":      len(result.Conflicts),
		"hintCount":          len(result.Hints),
		"needsClarification": result.NeedsClarification,
	})

	return &Output{
		TurnID:             result.TurnID,
		SessionID:          input.SessionID,
		State:              result.State,
		Context:            result.Context,
		Entities:           result.Entities,
		Hints:              result.Hints,
		Conflicts:          result.Conflicts,
		NeedsClarification: result.NeedsClarification,
		Validation:         h.engine.Validate(result.Context),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	var stdErr *errors.StandardError
	if !stderrors.As(err, &stdErr) {
		stdErr = errors.NewPayloadValidationFailedError(err.Error())
	}
	bpmnErr := errors.ConvertToBPMNError(stdErr)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": bpmnErr.Code,
		"retries":   bpmnErr.Retries,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(bpmnErr.Retries)).
		ErrorMessage(fmt.Sprintf("%s: %s", bpmnErr.Code, bpmnErr.Message)).
		Send(context.Background())
}

// Execute exposes the turn pipeline for direct invocation in tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
