package main

import (
	"net/http"

	"github.com/lgarza/tiendita/internal/ai"
	"github.com/lgarza/tiendita/internal/errors"
	"github.com/lgarza/tiendita/internal/interview"
)

// startInterview resets the interview and returns the intro and first question.
func (app *application) startInterview(w http.ResponseWriter, r *http.Request) {
	start := app.interview.Start()

	app.writeJSON(w, r, http.StatusOK, envelope{
		"sessionId":      start.SessionID,
		"message":        start.Message,
		"question":       start.Question,
		"questionIndex":  start.QuestionIndex,
		"totalQuestions": start.TotalQuestions,
	})
}

// chat processes one answer for the active question and returns either the next
// question or a clarifying follow-up.
func (app *application) chat(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Message string `json:"message"`
	}
	if err := app.readJSON(r, &input); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "message is required")
		return
	}

	result, err := app.interview.Answer(r.Context(), input.Message)
	switch {
	case errors.Is(err, interview.ErrEmptyAnswer):
		app.clientError(w, r, http.StatusBadRequest, "message is required")
		return
	case errors.Is(err, interview.ErrComplete):
		app.clientError(w, r, http.StatusConflict, "interview is already complete")
		return
	case err != nil:
		app.serverError(w, r, err)
		return
	}

	response := envelope{
		"response":         result.Response,
		"questionIndex":    result.QuestionIndex,
		"totalQuestions":   result.TotalQuestions,
		"requiresFollowUp": result.RequiresFollowUp,
		"isNewQuestion":    result.IsNewQuestion,
		"done":             result.Done,
		"validation": envelope{
			"isAnswered": result.Verdict.Accepted,
			"confidence": result.Verdict.Confidence,
			"reason":     result.Verdict.Reason,
		},
	}
	if result.Done {
		response["nextQuestion"] = nil
	} else {
		response["nextQuestion"] = result.NextQuestion
	}
	app.writeJSON(w, r, http.StatusOK, response)
}

// conversationHistory returns the transcript of the current interview.
func (app *application) conversationHistory(w http.ResponseWriter, r *http.Request) {
	history := app.interview.Transcript()
	if history == nil {
		history = []ai.Message{}
	}
	app.writeJSON(w, r, http.StatusOK, envelope{"history": history})
}

// resetInterview clears the interview state and transcript.
func (app *application) resetInterview(w http.ResponseWriter, r *http.Request) {
	sessionID := app.interview.Reset()
	app.writeJSON(w, r, http.StatusOK, envelope{
		"message":   "Conversation reset",
		"sessionId": sessionID,
	})
}
