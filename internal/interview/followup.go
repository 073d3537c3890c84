package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lgarza/tiendita/internal/ai"
	"github.com/lgarza/tiendita/internal/errors"
)

// fallbackFollowUp is the safe clarifying question used whenever the generator
// fails or produces something that is not a single well-formed question.
const fallbackFollowUp = "¿Puedes dar más detalles sobre tu respuesta anterior?"

const followUpSystemPrompt = "Eres un asistente de entrevista que genera preguntas de seguimiento claras y naturales."

const followUpPromptTemplate = `Eres un asistente que genera preguntas de seguimiento claras y naturales en español.

Pregunta actual: "%s"

Respuesta del usuario (incompleta o confusa): "%s"

Genera UNA sola pregunta de seguimiento en español, corta y directa, que solicite la información necesaria para clarificar la respuesta. No avances a la siguiente pregunta.`

type followUpGenerator struct {
	completer ai.Completer
	logger    *slog.Logger
}

// generate asks for a clarifying question about an insufficient answer. The
// result always ends with exactly one question, whatever the model returned.
func (g *followUpGenerator) generate(ctx context.Context, question, answer string) string {
	prompt := fmt.Sprintf(followUpPromptTemplate, question, answer)

	out, err := g.completer.Complete(ctx, followUpSystemPrompt, nil, prompt, ai.Options{ //nolint:exhaustruct
		Temperature: 0.6, //nolint:mnd // some variety keeps follow-ups natural.
	})
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "follow-up completion failed", errors.SlogError(err))
		return fallbackFollowUp
	}
	return sanitizeFollowUp(out)
}

// sanitizeFollowUp trims the generated text to a single interrogative sentence.
// Text after the first question mark is dropped, and output without a trailing
// question mark is replaced wholesale by the fixed fallback.
func sanitizeFollowUp(text string) string {
	followUp := strings.TrimSpace(text)
	if idx := strings.Index(followUp, "?"); idx != -1 {
		followUp = strings.TrimSpace(followUp[:idx+1])
	}
	if !strings.HasSuffix(followUp, "?") {
		return fallbackFollowUp
	}
	return followUp
}
