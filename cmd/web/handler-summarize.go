package main

import (
	"net/http"

	"github.com/lgarza/tiendita/internal/errors"
	"github.com/lgarza/tiendita/internal/interview"
)

// summarize folds the interview transcript into a narrative business summary.
func (app *application) summarize(w http.ResponseWriter, r *http.Request) {
	summary, err := interview.Summarize(r.Context(), app.completer, app.interview.Transcript())
	switch {
	case errors.Is(err, interview.ErrEmptyTranscript):
		app.clientError(w, r, http.StatusBadRequest, "no conversation to summarize")
		return
	case err != nil:
		app.serverError(w, r, errors.Wrap(err, "summarize conversation"))
		return
	}

	app.writeJSON(w, r, http.StatusOK, envelope{"summary": summary})
}
