package main

import (
	"net/http"

	"github.com/lgarza/tiendita/internal/business"
	"github.com/lgarza/tiendita/internal/errors"
)

// inventoryRecommendations builds next week's purchase recommendations from the
// stock projection. Unlike the interview loop, failures surface as request
// failures here.
func (app *application) inventoryRecommendations(w http.ResponseWriter, r *http.Request) {
	report, err := business.Recommendations(r.Context(), app.backoffice, app.completer)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "generate inventory recommendations"))
		return
	}

	if report.Message != "" {
		app.writeJSON(w, r, http.StatusOK, envelope{
			"recommendations": []business.Recommendation{},
			"message":         report.Message,
		})
		return
	}

	app.writeJSON(w, r, http.StatusOK, envelope{
		"success":         true,
		"periodo":         report.Period,
		"recommendations": report.Recommendations,
		"raw_data":        report.Raw,
	})
}
