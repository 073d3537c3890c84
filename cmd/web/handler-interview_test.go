package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/lgarza/tiendita/internal/interview"
	"github.com/stretchr/testify/require"
)

func Test_application_interviewFlow(t *testing.T) {
	aiServer := scriptedAI(t)
	backoffice := &fakeBackoffice{} //nolint:exhaustruct
	ts := startTestServer(t, io.Discard, testLookupEnv(aiServer.URL, backoffice.server(t).URL))

	// Starting the interview presents the first scripted question.
	start := ts.GetJSON(t, "/api/start-interview", http.StatusOK)
	require.Equal(t, interview.Questions[0], start["question"])
	require.InDelta(t, 0, start["questionIndex"], 0.001)
	require.InDelta(t, float64(interview.TotalQuestions), start["totalQuestions"], 0.001)
	require.NotEmpty(t, start["sessionId"])

	// A sufficient sales answer is accepted, recorded in the ledger and the
	// interview advances.
	turn := ts.PostJSON(t, "/api/chat", map[string]string{"message": "Vendí 3 panes"}, http.StatusOK)
	require.Equal(t, false, turn["requiresFollowUp"])
	require.Equal(t, true, turn["isNewQuestion"])
	require.Equal(t, interview.Questions[1], turn["nextQuestion"])
	validation, ok := turn["validation"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, validation["isAnswered"])
	require.Len(t, backoffice.sales, 1)
	require.InDelta(t, 6.0, backoffice.sales[0]["total"], 0.001)

	// A vague answer triggers a follow-up and keeps the main question.
	followUp := ts.PostJSON(t, "/api/chat", map[string]string{"message": "no sé"}, http.StatusOK)
	require.Equal(t, true, followUp["requiresFollowUp"])
	require.Equal(t, interview.Questions[1], followUp["nextQuestion"])
	// The generated follow-up is trimmed to a single question.
	require.Equal(t, "¿Cuántas unidades vendiste?", followUp["response"])

	// Retrying with a sufficient answer records the purchase and advances.
	turn = ts.PostJSON(t, "/api/chat", map[string]string{"message": "Recibí 3 panes"}, http.StatusOK)
	require.Equal(t, interview.Questions[2], turn["nextQuestion"])
	require.Len(t, backoffice.purchases, 1)

	// The inventory slot's reconciliation message replaces the acknowledgment.
	turn = ts.PostJSON(t, "/api/chat", map[string]string{"message": "Tengo 10 panes"}, http.StatusOK)
	require.Equal(t, "Tu conteo coincide con el stock del sistema.", turn["response"])
	require.Equal(t, interview.Questions[3], turn["nextQuestion"])

	// The remaining questions have no side effects and finish the interview.
	turn = ts.PostJSON(t, "/api/chat", map[string]string{"message": "Sí, pagué a todos"}, http.StatusOK)
	require.Equal(t, interview.Questions[4], turn["nextQuestion"])
	turn = ts.PostJSON(t, "/api/chat", map[string]string{"message": "Sí, pagué la luz"}, http.StatusOK)
	require.Equal(t, true, turn["done"])
	require.Nil(t, turn["nextQuestion"])

	// Once complete, further answers are rejected.
	ts.PostJSON(t, "/api/chat", map[string]string{"message": "algo más"}, http.StatusConflict)

	// The transcript holds one user and one assistant turn per exchange.
	history := ts.GetJSON(t, "/api/conversation-history", http.StatusOK)
	turns, ok := history["history"].([]any)
	require.True(t, ok)
	require.Len(t, turns, 12)

	// The summary is generated from the transcript.
	summary := ts.PostJSON(t, "/api/summarize", nil, http.StatusOK)
	require.Equal(t, "Resumen: vendiste 3 panes.", summary["summary"])

	// Reset clears everything and mints a new session.
	reset := ts.PostJSON(t, "/api/reset", nil, http.StatusOK)
	require.Equal(t, "Conversation reset", reset["message"])
	require.NotEqual(t, start["sessionId"], reset["sessionId"])
	history = ts.GetJSON(t, "/api/conversation-history", http.StatusOK)
	require.Empty(t, history["history"])
}

func Test_application_chatValidation(t *testing.T) {
	aiServer := scriptedAI(t)
	backoffice := &fakeBackoffice{} //nolint:exhaustruct
	ts := startTestServer(t, io.Discard, testLookupEnv(aiServer.URL, backoffice.server(t).URL))

	ts.GetJSON(t, "/api/start-interview", http.StatusOK)

	response := ts.PostJSON(t, "/api/chat", map[string]string{"message": ""}, http.StatusBadRequest)
	require.Equal(t, "message is required", response["error"])

	response = ts.PostJSON(t, "/api/chat", map[string]string{}, http.StatusBadRequest)
	require.Equal(t, "message is required", response["error"])
}

func Test_application_summarizeEmptyTranscript(t *testing.T) {
	aiServer := scriptedAI(t)
	backoffice := &fakeBackoffice{} //nolint:exhaustruct
	ts := startTestServer(t, io.Discard, testLookupEnv(aiServer.URL, backoffice.server(t).URL))

	response := ts.PostJSON(t, "/api/summarize", nil, http.StatusBadRequest)
	require.Equal(t, "no conversation to summarize", response["error"])
}
