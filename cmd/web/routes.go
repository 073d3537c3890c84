package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.HandleFunc("GET /api/start-interview", app.startInterview)
	mux.HandleFunc("POST /api/chat", app.chat)
	mux.HandleFunc("GET /api/conversation-history", app.conversationHistory)
	mux.HandleFunc("POST /api/reset", app.resetInterview)
	mux.HandleFunc("POST /api/summarize", app.summarize)
	mux.HandleFunc("GET /api/inventory-recommendations", app.inventoryRecommendations)

	base := alice.New(app.recoverPanic, app.logRequest, secureHeaders)

	return base.Then(mux)
}
