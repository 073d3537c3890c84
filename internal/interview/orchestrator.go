package interview

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lgarza/tiendita/internal/ai"
	"github.com/lgarza/tiendita/internal/errors"
)

var (
	// ErrEmptyAnswer rejects turns submitted without answer text.
	ErrEmptyAnswer = errors.NewSentinel("answer text is required")
	// ErrComplete rejects turns submitted after the last question was answered.
	ErrComplete = errors.NewSentinel("interview is already complete")
)

// Dispatcher executes the business action bound to a question slot. The
// returned message, when non-empty, replaces the generic acknowledgment.
// Implementations absorb their own failures.
type Dispatcher interface {
	Dispatch(ctx context.Context, questionIndex int, answer string) string
}

// Interview is the state machine driving one scripted interview. All state
// mutation is serialized behind a single lock: the design assumes one interview
// in flight per process, and a turn runs to completion before the next starts.
type Interview struct {
	mu         sync.Mutex
	id         uuid.UUID
	index      int
	answers    [TotalQuestions]string
	transcript []ai.Message

	validator  validator
	followUp   followUpGenerator
	dispatcher Dispatcher
	logger     *slog.Logger
}

func New(completer ai.Completer, dispatcher Dispatcher, logger *slog.Logger) *Interview {
	return &Interview{ //nolint:exhaustruct // state fields start zeroed.
		id:         uuid.New(),
		validator:  validator{completer: completer, logger: logger},
		followUp:   followUpGenerator{completer: completer, logger: logger},
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// StartResult is the opening of a fresh interview.
type StartResult struct {
	SessionID      string
	Message        string
	Question       string
	QuestionIndex  int
	TotalQuestions int
}

// TurnResult is the outcome of processing one answer.
type TurnResult struct {
	// Response is the assistant's reply: an acknowledgment, the inventory
	// reconciliation message, or a clarifying follow-up.
	Response string
	// NextQuestion is the question now awaiting an answer. Empty once the
	// interview is done; unchanged when a follow-up is required.
	NextQuestion     string
	QuestionIndex    int
	TotalQuestions   int
	RequiresFollowUp bool
	IsNewQuestion    bool
	Done             bool
	Verdict          Verdict
}

// Start resets the interview and returns the intro and the first question.
func (iv *Interview) Start() StartResult {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	iv.reset()
	return StartResult{
		SessionID:      iv.id.String(),
		Message:        introMessage,
		Question:       Questions[0],
		QuestionIndex:  0,
		TotalQuestions: TotalQuestions,
	}
}

// Reset returns the interview to its initial state and mints a new session id.
// Idempotent: resetting an already fresh interview is harmless.
func (iv *Interview) Reset() string {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	iv.reset()
	return iv.id.String()
}

// reset must be called with the lock held.
func (iv *Interview) reset() {
	iv.id = uuid.New()
	iv.index = 0
	iv.answers = [TotalQuestions]string{}
	iv.transcript = nil
}

// ID returns the current session identifier.
func (iv *Interview) ID() string {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.id.String()
}

// Transcript returns a copy of the conversation so far.
func (iv *Interview) Transcript() []ai.Message {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	transcript := make([]ai.Message, len(iv.transcript))
	copy(transcript, iv.transcript)
	return transcript
}

// Answers returns a copy of the per-question answer store.
func (iv *Interview) Answers() [TotalQuestions]string {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.answers
}

// Answer processes one turn for the active question. The answer is recorded and
// validated; an accepted answer triggers the slot's business action and
// advances the interview, anything else produces a clarifying follow-up and
// leaves the pointer where it is. The lock is held for the whole turn so that
// concurrent submissions cannot interleave on the shared state.
func (iv *Interview) Answer(ctx context.Context, text string) (TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return TurnResult{}, ErrEmptyAnswer //nolint:exhaustruct // zero result on error.
	}

	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.index >= TotalQuestions {
		return TurnResult{}, ErrComplete //nolint:exhaustruct // zero result on error.
	}

	question := Questions[iv.index]
	iv.answers[iv.index] = text
	iv.transcript = append(iv.transcript, ai.Message{Role: ai.RoleUser, Content: text})

	verdict := iv.validator.validate(ctx, question, text)
	iv.logger.LogAttrs(ctx, slog.LevelInfo, "answer validated",
		slog.Int("questionIndex", iv.index),
		slog.Bool("accepted", verdict.Accepted),
		slog.Float64("confidence", verdict.Confidence))

	if verdict.Accepted && verdict.Confidence > acceptThreshold {
		return iv.advance(ctx, text, verdict), nil
	}
	return iv.requestFollowUp(ctx, question, text, verdict), nil
}

// advance runs the slot's business action, acknowledges the answer and moves
// the question pointer. Must be called with the lock held.
func (iv *Interview) advance(ctx context.Context, answer string, verdict Verdict) TurnResult {
	response := iv.dispatcher.Dispatch(ctx, iv.index, answer)
	if response == "" {
		response = acknowledgment
	}
	iv.transcript = append(iv.transcript, ai.Message{Role: ai.RoleAssistant, Content: response})

	iv.index++
	result := TurnResult{ //nolint:exhaustruct // follow-up fields stay false.
		Response:       response,
		QuestionIndex:  iv.index,
		TotalQuestions: TotalQuestions,
		IsNewQuestion:  true,
		Verdict:        verdict,
	}
	if iv.index < TotalQuestions {
		result.NextQuestion = Questions[iv.index]
	} else {
		result.Done = true
		// Keep the reported index at the last question once complete.
		result.QuestionIndex = TotalQuestions - 1
		iv.logger.LogAttrs(ctx, slog.LevelInfo, "interview complete")
	}
	return result
}

// requestFollowUp appends a clarifying question and keeps the pointer
// unchanged. Must be called with the lock held.
func (iv *Interview) requestFollowUp(ctx context.Context, question, answer string, verdict Verdict) TurnResult {
	followUp := iv.followUp.generate(ctx, question, answer)
	iv.transcript = append(iv.transcript, ai.Message{Role: ai.RoleAssistant, Content: followUp})

	return TurnResult{ //nolint:exhaustruct // done fields stay false.
		Response:         followUp,
		NextQuestion:     question,
		QuestionIndex:    iv.index,
		TotalQuestions:   TotalQuestions,
		RequiresFollowUp: true,
		Verdict:          verdict,
	}
}
